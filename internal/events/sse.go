package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dgnsrekt/indexdash/internal/types"
)

// SSEHandler returns an http.HandlerFunc that streams events as SSE.
// Clients may filter event types via ?types=chart.created,chart.destroyed.
func SSEHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		filter := parseTypeFilter(r.URL.Query().Get("types"))

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if !filter.allows(evt) {
					continue
				}
				data, err := json.Marshal(evt)
				if err != nil {
					slog.Warn("event encode failed", "type", evt.Type, "error", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
				flusher.Flush()
			}
		}
	}
}

type typeFilter map[string]bool

// parseTypeFilter returns nil (accept all) for an empty list.
func parseTypeFilter(q string) typeFilter {
	if q == "" {
		return nil
	}
	f := make(typeFilter)
	for _, t := range strings.Split(q, ",") {
		if t = strings.TrimSpace(t); t != "" {
			f[t] = true
		}
	}
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f typeFilter) allows(evt types.Event) bool {
	return f == nil || f[evt.Type]
}
