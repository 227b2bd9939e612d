//go:build integration

package integration

import (
	"io"
	"net/http"
	"testing"
)

func TestListSnapshots(t *testing.T) {
	resp := env.GET(t, "/api/v1/snapshots")
	requireStatus(t, resp, http.StatusOK)

	result := decodeJSON[struct {
		Snapshots []map[string]any `json:"snapshots"`
	}](t, resp)

	t.Logf("snapshots count: %d", len(result.Snapshots))
}

func takeSnapshot(t *testing.T, source string) (id, url string, ok bool) {
	t.Helper()
	resp := env.POST(t, "/api/v1/snapshots", map[string]any{
		"series": env.Series,
		"source": source,
		"width":  800,
		"height": 450,
	})
	if source == "browser" && resp.StatusCode == http.StatusBadGateway {
		resp.Body.Close()
		return "", "", false
	}
	requireStatus(t, resp, http.StatusOK)
	created := decodeJSON[struct {
		Snapshot struct {
			ID string `json:"id"`
		} `json:"snapshot"`
		URL string `json:"url"`
	}](t, resp)
	if created.Snapshot.ID == "" {
		t.Fatal("expected snapshot ID after creation")
	}
	t.Cleanup(func() {
		r := env.DELETE(t, "/api/v1/snapshots/"+created.Snapshot.ID)
		r.Body.Close()
	})
	return created.Snapshot.ID, created.URL, true
}

func requirePNG(t *testing.T, url string) {
	t.Helper()
	resp := env.GET(t, url)
	requireStatus(t, resp, http.StatusOK)
	defer resp.Body.Close()
	requireField(t, resp.Header.Get("Content-Type"), "image/png", "content-type")
	head := make([]byte, 4)
	if _, err := io.ReadFull(resp.Body, head); err != nil {
		t.Fatalf("read image: %v", err)
	}
	requireField(t, string(head), "\x89PNG", "png signature")
}

func TestRenderSnapshotLifecycle(t *testing.T) {
	id, url, _ := takeSnapshot(t, "render")
	requirePNG(t, url)

	resp := env.GET(t, "/api/v1/snapshots/"+id+"/metadata")
	requireStatus(t, resp, http.StatusOK)
	meta := decodeJSON[struct {
		Series string `json:"series"`
		Source string `json:"source"`
		Width  int    `json:"width"`
	}](t, resp)
	requireField(t, meta.Series, env.Series, "series")
	requireField(t, meta.Source, "render", "source")
	requireField(t, meta.Width, 800, "width")
}

func TestBrowserSnapshot(t *testing.T) {
	_, url, ok := takeSnapshot(t, "browser")
	if !ok {
		t.Skip("browser capture disabled on this server")
	}
	requirePNG(t, url)
}

func TestMissingSnapshot(t *testing.T) {
	resp := env.GET(t, "/api/v1/snapshots/00000000-0000-4000-8000-000000000000/metadata")
	requireStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}
