// Package chart maps metrics to rendering styles and builds the chart
// configurations and images for a transformed series.
package chart

import "fmt"

// Kind is the rendering mode of a metric.
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k == KindLine || k == KindBar }

// Style is the fixed presentation of one metric.
type Style struct {
	Kind            Kind   `json:"kind"`
	AxisTitle       string `json:"axis_title"`
	DatasetLabel    string `json:"dataset_label,omitempty"`
	BeginAtZero     bool   `json:"begin_at_zero"`
	BorderColor     string `json:"border_color"`
	BackgroundColor string `json:"background_color"`
}

// DefaultStyle is used for metrics with no configured style.
var DefaultStyle = Style{
	Kind:            KindLine,
	AxisTitle:       "Value",
	BorderColor:     "rgba(0, 123, 255, 1)",
	BackgroundColor: "rgba(0, 123, 255, 0.1)",
}

// LegendLabel returns the dataset label for seriesName.
func (s Style) LegendLabel(seriesName string) string {
	if s.DatasetLabel == "" {
		return seriesName
	}
	return fmt.Sprintf("%s (%s)", s.DatasetLabel, seriesName)
}

// Styles is a static metric key to Style lookup.
type Styles map[string]Style

// Lookup returns the style for metric, or DefaultStyle when unknown.
func (s Styles) Lookup(metric string) Style {
	if st, ok := s[metric]; ok {
		return st
	}
	return DefaultStyle
}

// DefaultStyles mirrors the built-in index dump metrics.
func DefaultStyles() Styles {
	return Styles{
		"closing_index_value": {
			Kind:            KindLine,
			AxisTitle:       "Closing Index Value",
			DatasetLabel:    "Closing Value",
			BorderColor:     "rgba(0, 123, 255, 1)",
			BackgroundColor: "rgba(0, 123, 255, 0.1)",
		},
		"volume": {
			Kind:            KindBar,
			AxisTitle:       "Volume",
			DatasetLabel:    "Volume",
			BeginAtZero:     true,
			BorderColor:     "rgba(40, 167, 69, 1)",
			BackgroundColor: "rgba(40, 167, 69, 0.5)",
		},
	}
}
