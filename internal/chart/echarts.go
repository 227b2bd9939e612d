package chart

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ReadyMarkerID is the element appended to a rendered page once echarts has
// finished drawing. Headless captures wait for it.
const ReadyMarkerID = "chart-ready"

const pageChartID = "indexdash_chart"

// readyScript runs after setOption and adds the marker on the first
// "finished" event, when the series and any animation are fully drawn.
var readyScript = `goecharts_` + pageChartID + `.on("finished", function () {
  if (document.getElementById("` + ReadyMarkerID + `")) { return; }
  var m = document.createElement("div");
  m.id = "` + ReadyMarkerID + `";
  m.style.display = "none";
  document.body.appendChild(m);
});`

func logger() *slog.Logger {
	return slog.Default().With(slog.String("module", "chart"))
}

// RenderHTML writes a standalone interactive page for cfg. The page zooms
// and pans on the x axis through inside and slider data zoom controls.
func RenderHTML(w io.Writer, cfg Config) error {
	if len(cfg.Data.Datasets) == 0 {
		return fmt.Errorf("chart: render html: empty config")
	}
	ds := cfg.Data.Datasets[0]
	title := cfg.Title()
	beginAtZero := cfg.Options.Scales.Y.BeginAtZero != nil && *cfg.Options.Scales.Y.BeginAtZero

	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			ChartID:   pageChartID,
			Width:     "100%",
			Height:    "560px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Left: "center"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: cfg.Options.Scales.X.Title.Text}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  cfg.Options.Scales.Y.Title.Text,
			Scale: opts.Bool(!beginAtZero),
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", Start: 0, End: 100, XAxisIndex: []int{0}},
			opts.DataZoom{Type: "slider", Start: 0, End: 100, XAxisIndex: []int{0}},
		),
	}

	var buf bytes.Buffer
	switch cfg.Type {
	case KindBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		values := cfg.Values()
		data := make([]opts.BarData, len(values))
		for i, v := range values {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddJSFuncs(readyScript)
		bar.SetXAxis(cfg.Data.Labels).
			AddSeries(ds.Label, data,
				charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.BackgroundColor, BorderColor: ds.BorderColor}),
			)
		if err := bar.Render(&buf); err != nil {
			return fmt.Errorf("chart: render html: %w", err)
		}
	default:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		values := cfg.Values()
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddJSFuncs(readyScript)
		line.SetXAxis(cfg.Data.Labels).
			AddSeries(ds.Label, data,
				charts.WithLineStyleOpts(opts.LineStyle{Color: ds.BorderColor}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.BorderColor}),
				charts.WithAreaStyleOpts(opts.AreaStyle{Color: ds.BackgroundColor}),
			).
			SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		if err := line.Render(&buf); err != nil {
			return fmt.Errorf("chart: render html: %w", err)
		}
	}

	page := buf.Bytes()
	logger().Debug("rendered chart page", "type", cfg.Type, "points", len(ds.Data), "bytes", len(page))
	_, err := w.Write(page)
	return err
}
