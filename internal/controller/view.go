package controller

import (
	"time"

	"github.com/dgnsrekt/indexdash/internal/chart"
	"github.com/dgnsrekt/indexdash/internal/dataset"
	"github.com/dgnsrekt/indexdash/internal/listview"
	"github.com/dgnsrekt/indexdash/internal/series"
)

// Page titles.
const (
	TitleSelect    = "Select an Index to View Chart"
	TitleLoadError = "Error Loading Data"
)

// MetricOption is one entry of the metric selector.
type MetricOption struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Kind  chart.Kind `json:"kind"`
}

// MetricsInfo lists the selectable metrics.
type MetricsInfo struct {
	Default string         `json:"default"`
	Options []MetricOption `json:"options"`
}

// Selection is the user's current choice. Dates are YYYY-MM-DD or empty.
type Selection struct {
	Series string `json:"series,omitempty"`
	Metric string `json:"metric"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Query  string `json:"query,omitempty"`
}

// ActiveChart is the single live chart instance.
type ActiveChart struct {
	ID         string       `json:"chart_id"`
	Series     string       `json:"series"`
	Metric     string       `json:"metric"`
	Start      string       `json:"start,omitempty"`
	End        string       `json:"end,omitempty"`
	Points     int          `json:"points"`
	Config     chart.Config `json:"config"`
	CreatedAt  time.Time    `json:"created_at"`
	ResetCount int          `json:"reset_count"`
}

// View is a read-only copy of the page state.
type View struct {
	Loaded         bool             `json:"loaded"`
	Title          string           `json:"title"`
	Message        string           `json:"message,omitempty"`
	AvailableRange string           `json:"available_range"`
	Selection      Selection        `json:"selection"`
	Entries        []listview.Entry `json:"entries"`
	TotalEntries   int              `json:"total_entries"`
	Chart          *ActiveChart     `json:"chart,omitempty"`
}

// ResetResult reports whether a zoom reset reached a chart.
type ResetResult struct {
	Reset      bool   `json:"reset"`
	ChartID    string `json:"chart_id,omitempty"`
	ResetCount int    `json:"reset_count"`
}

// DatasetStatus summarizes the loaded dataset.
type DatasetStatus struct {
	Loaded    bool               `json:"loaded"`
	Source    string             `json:"source,omitempty"`
	Header    []string           `json:"header,omitempty"`
	Rows      int                `json:"rows"`
	Series    int                `json:"series"`
	RowErrors []dataset.RowError `json:"row_errors,omitempty"`
	LoadedAt  *time.Time         `json:"loaded_at,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// SeriesQuery asks for a series without touching page state.
type SeriesQuery struct {
	Series string
	Metric string
	Start  string
	End    string
}

// SeriesData is a transformed series plus its chart definition.
type SeriesData struct {
	Series         string        `json:"series"`
	Metric         string        `json:"metric"`
	Labels         []string      `json:"labels"`
	Values         []float64     `json:"values"`
	Available      *series.Range `json:"available,omitempty"`
	AvailableRange string        `json:"available_range"`
	Config         chart.Config  `json:"config"`
}

// SnapshotRequest selects what to snapshot. An empty Series uses the active chart.
type SnapshotRequest struct {
	Series string
	Metric string
	Start  string
	End    string
	Source string
	Width  int
	Height int
	Notes  string
}
