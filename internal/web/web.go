// Package web embeds the dashboard page. The page only renders what the JSON
// API returns; it holds no filtering or validation logic of its own.
package web

import (
	"embed"
	"net/http"
)

//go:embed index.html static
var content embed.FS

// Handler serves index.html at / and the assets under /static/.
func Handler() http.Handler {
	return http.FileServer(http.FS(content))
}
