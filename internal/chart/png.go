package chart

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/dgnsrekt/indexdash/internal/dates"
)

// Default image size for rendered snapshots.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

var rgbaRe = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9.]+)\s*)?\)$`)

// RenderPNG draws cfg as a PNG image. A single observation is widened to two
// points one day apart so the x range is never empty.
func RenderPNG(w io.Writer, cfg Config, width, height int) error {
	if len(cfg.Data.Datasets) == 0 || len(cfg.Data.Labels) == 0 {
		return fmt.Errorf("chart: render png: empty config")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	ds := cfg.Data.Datasets[0]
	values := cfg.Values()
	if len(values) != len(cfg.Data.Labels) {
		return fmt.Errorf("chart: render png: %d labels for %d values", len(cfg.Data.Labels), len(values))
	}

	xs := make([]time.Time, len(cfg.Data.Labels))
	for i, l := range cfg.Data.Labels {
		d, ok := dates.Parse(l)
		if !ok {
			return fmt.Errorf("chart: render png: bad label %q", l)
		}
		xs[i] = d.Time()
	}
	ys := append([]float64(nil), values...)
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	stroke := parseColor(ds.BorderColor, drawing.ColorFromHex("007bff"))
	style := gochart.Style{StrokeColor: stroke, StrokeWidth: 2}
	if cfg.Type == KindBar || (ds.Fill != nil && *ds.Fill) {
		style.FillColor = parseColor(ds.BackgroundColor, stroke.WithAlpha(40))
	}
	if cfg.Type == KindBar {
		style.StrokeWidth = 1
	}

	beginAtZero := cfg.Options.Scales.Y.BeginAtZero != nil && *cfg.Options.Scales.Y.BeginAtZero
	lo, hi := valueRange(ys, beginAtZero)

	ch := gochart.Chart{
		Title:      cfg.Title(),
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           cfg.Options.Scales.X.Title.Text,
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		YAxis: gochart.YAxis{
			Name:  cfg.Options.Scales.Y.Title.Text,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{Name: ds.Label, XValues: xs, YValues: ys, Style: style},
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("chart: render png: %w", err)
	}
	logger().Debug("rendered chart png", "type", cfg.Type, "points", len(ds.Data), "width", width, "height", height)
	return nil
}

func valueRange(ys []float64, beginAtZero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if beginAtZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.05, 1)
		lo -= pad
		hi += pad
	}
	return lo, hi
}

// parseColor accepts rgb(), rgba() and #rrggbb forms.
func parseColor(s string, fallback drawing.Color) drawing.Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") && (len(s) == 7 || len(s) == 4) {
		return drawing.ColorFromHex(s[1:])
	}
	m := rgbaRe.FindStringSubmatch(s)
	if m == nil {
		return fallback
	}
	c := drawing.Color{A: 255}
	for i, dst := range []*uint8{&c.R, &c.G, &c.B} {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v > 255 {
			return fallback
		}
		*dst = uint8(v)
	}
	if m[4] != "" {
		a, err := strconv.ParseFloat(m[4], 64)
		if err != nil || a < 0 || a > 1 {
			return fallback
		}
		c.A = uint8(math.Round(a * 255))
	}
	return c
}
