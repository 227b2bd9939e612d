package types

import "time"

// Event types published by the dashboard controller.
const (
	EventDatasetLoaded    = "dataset.loaded"
	EventDatasetError     = "dataset.error"
	EventSelectionChanged = "selection.changed"
	EventChartCreated     = "chart.created"
	EventChartDestroyed   = "chart.destroyed"
	EventChartNoData      = "chart.no_data"
	EventChartZoomReset   = "chart.zoom_reset"
	EventSnapshotCreated  = "snapshot.created"
)

// Event is a dashboard state transition fanned out to page subscribers.
type Event struct {
	Type    string         `json:"type"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}
