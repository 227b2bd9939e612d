//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	resp := env.GET(t, "/health")
	requireStatus(t, resp, http.StatusOK)
	h := decodeJSON[struct {
		Status string `json:"status"`
		Loaded bool   `json:"loaded"`
	}](t, resp)
	requireField(t, h.Status, "ok", "status")
	requireField(t, h.Loaded, true, "loaded")
}

func TestSelectRangeAndReset(t *testing.T) {
	resp := env.POST(t, "/api/v1/view/select", map[string]any{"series": env.Series})
	requireStatus(t, resp, http.StatusOK)
	v := decodeJSON[viewBody](t, resp)
	requireField(t, v.Title, "Index Data for "+env.Series, "title")
	if v.Chart == nil || v.Chart.Points == 0 {
		t.Fatalf("expected an active chart, got %+v", v)
	}
	if !strings.HasPrefix(v.AvailableRange, "Data available from:") {
		t.Fatalf("available_range = %q", v.AvailableRange)
	}
	first := v.Chart.ID

	resp = env.POST(t, "/api/v1/view/range", map[string]any{"start": "01-01-1990", "end": "31-12-1990"})
	requireStatus(t, resp, http.StatusOK)
	v = decodeJSON[viewBody](t, resp)
	if v.Chart != nil {
		t.Fatalf("expected no chart for an empty range, got %+v", v.Chart)
	}
	if !strings.HasSuffix(v.Message, "within the selected date range.") {
		t.Fatalf("message = %q", v.Message)
	}

	resp = env.DELETE(t, "/api/v1/view/range")
	requireStatus(t, resp, http.StatusOK)
	v = decodeJSON[viewBody](t, resp)
	if v.Chart == nil || v.Chart.ID == first {
		t.Fatalf("expected a new chart after clearing the range, got %+v", v.Chart)
	}

	resp = env.POST(t, "/api/v1/chart/reset-zoom", nil)
	requireStatus(t, resp, http.StatusOK)
	r := decodeJSON[struct {
		Reset   bool   `json:"reset"`
		ChartID string `json:"chart_id"`
	}](t, resp)
	requireField(t, r.Reset, true, "reset")
	requireField(t, r.ChartID, v.Chart.ID, "chart_id")
}

func TestInvalidRangeDate(t *testing.T) {
	resp := env.POST(t, "/api/v1/view/range", map[string]any{"start": "31-02-2023"})
	requireStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestChartPage(t *testing.T) {
	resp := env.GET(t, "/api/v1/series/"+env.Series+"/chart.html")
	requireStatus(t, resp, http.StatusOK)
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
}
