package chart

import "github.com/dgnsrekt/indexdash/internal/series"

// Config is the chart definition handed to the page renderer. Its JSON shape
// is what Chart.js with the zoom plugin accepts directly.
type Config struct {
	Type    Kind    `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Data holds the x labels and the plotted datasets.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one plotted series with its colors.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	Tension         *float64  `json:"tension,omitempty"`
	Fill            *bool     `json:"fill,omitempty"`
	BorderWidth     int       `json:"borderWidth"`
}

// Options mirrors the Chart.js options block.
type Options struct {
	Responsive          bool    `json:"responsive"`
	MaintainAspectRatio bool    `json:"maintainAspectRatio"`
	Scales              Scales  `json:"scales"`
	Plugins             Plugins `json:"plugins"`
}

// Scales configures the x and y axes.
type Scales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// Axis is one chart axis.
type Axis struct {
	Title       AxisTitle `json:"title"`
	BeginAtZero *bool     `json:"beginAtZero,omitempty"`
}

// AxisTitle is the caption drawn beside an axis.
type AxisTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Plugins configures the legend, tooltip and zoom plugins.
type Plugins struct {
	Legend  Legend  `json:"legend"`
	Tooltip Tooltip `json:"tooltip"`
	Zoom    Zoom    `json:"zoom"`
}

type Legend struct {
	Position string `json:"position"`
}

type Tooltip struct {
	Mode      string `json:"mode"`
	Intersect bool   `json:"intersect"`
}

// Zoom is the chartjs-plugin-zoom configuration. Wheel and pinch zoom and
// panning act on the x axis only, and never beyond the original data.
type Zoom struct {
	Zoom   ZoomGestures `json:"zoom"`
	Pan    Pan          `json:"pan"`
	Limits Limits       `json:"limits"`
}

// ZoomGestures enables the zoom inputs.
type ZoomGestures struct {
	Wheel Toggle `json:"wheel"`
	Pinch Toggle `json:"pinch"`
	Mode  string `json:"mode"`
}

type Toggle struct {
	Enabled bool `json:"enabled"`
}

type Pan struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"`
}

// Limits bounds zoom and pan per axis.
type Limits struct {
	X Bounds `json:"x"`
}

// Bounds are axis limits; "original" pins them to the data extent.
type Bounds struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// Build assembles the chart definition for a non-empty transform result.
func Build(seriesName string, style Style, res series.Result, xTitle string) Config {
	if !style.Kind.Valid() {
		style.Kind = KindLine
	}
	if xTitle == "" {
		xTitle = "Index Date"
	}

	ds := Dataset{
		Label:           style.LegendLabel(seriesName),
		Data:            append([]float64(nil), res.Values...),
		BorderColor:     style.BorderColor,
		BackgroundColor: style.BackgroundColor,
		BorderWidth:     1,
	}
	if style.Kind == KindLine {
		tension, fill := 0.1, true
		ds.Tension = &tension
		ds.Fill = &fill
	}
	beginAtZero := style.BeginAtZero

	return Config{
		Type: style.Kind,
		Data: Data{
			Labels:   append([]string(nil), res.Labels...),
			Datasets: []Dataset{ds},
		},
		Options: Options{
			Responsive:          true,
			MaintainAspectRatio: false,
			Scales: Scales{
				X: Axis{Title: AxisTitle{Display: true, Text: xTitle}},
				Y: Axis{Title: AxisTitle{Display: true, Text: style.AxisTitle}, BeginAtZero: &beginAtZero},
			},
			Plugins: Plugins{
				Legend:  Legend{Position: "top"},
				Tooltip: Tooltip{Mode: "index", Intersect: false},
				Zoom: Zoom{
					Zoom: ZoomGestures{Wheel: Toggle{Enabled: true}, Pinch: Toggle{Enabled: true}, Mode: "x"},
					Pan:  Pan{Enabled: true, Mode: "x"},
					Limits: Limits{
						X: Bounds{Min: "original", Max: "original"},
					},
				},
			},
		},
	}
}

// Title returns the dataset label, or "" for an empty config.
func (c Config) Title() string {
	if len(c.Data.Datasets) == 0 {
		return ""
	}
	return c.Data.Datasets[0].Label
}

// Values returns the first dataset's values.
func (c Config) Values() []float64 {
	if len(c.Data.Datasets) == 0 {
		return nil
	}
	return c.Data.Datasets[0].Data
}
