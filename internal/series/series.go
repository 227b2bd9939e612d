// Package series turns raw dataset rows into a validated, date-bounded,
// chronologically sorted series ready for plotting.
package series

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgnsrekt/indexdash/internal/dataset"
	"github.com/dgnsrekt/indexdash/internal/dates"
)

// Query selects one series and metric with optional inclusive date bounds.
type Query struct {
	Series string
	Metric string
	Start  *dates.Date
	End    *dates.Date
}

// HasBounds reports whether either bound is set.
func (q Query) HasBounds() bool { return q.Start != nil || q.End != nil }

// Range is the earliest and latest day of the unbounded series. First and
// Last keep the raw date strings of those rows.
type Range struct {
	Min   dates.Date `json:"min"`
	Max   dates.Date `json:"max"`
	First string     `json:"first"`
	Last  string     `json:"last"`
}

// Point is one plotted observation.
type Point struct {
	Date  dates.Date
	Value float64
}

// Result holds the parallel label/value arrays in ascending date order.
type Result struct {
	Labels    []string
	Values    []float64
	Available *Range
	points    []Point
}

// Points returns the sorted observations.
func (r Result) Points() []Point { return r.points }

// Len returns the number of observations.
func (r Result) Len() int { return len(r.Labels) }

// NoDataError is returned when nothing survives the filters.
type NoDataError struct {
	Series    string
	Metric    string
	InRange   bool
	Available *Range
	Message   string
}

func (e *NoDataError) Error() string { return e.Message }

// AvailableRangeText renders the "available range" line shown above the chart.
func AvailableRangeText(r *Range) string {
	if r == nil {
		return "No data available for this index."
	}
	return fmt.Sprintf("Data available from: %s to %s", r.First, r.Last)
}

// MetricLabel turns a column key into display text.
func MetricLabel(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

type candidate struct {
	raw   string
	date  dates.Date
	value float64
}

// Transform filters rows to q.Series with a finite q.Metric value and a
// parseable date, applies the bounds and sorts by date. The sort is stable, so
// rows sharing a date keep their file order.
func Transform(rows []dataset.Row, q Query) (Result, error) {
	kept := make([]candidate, 0, 128)
	for _, r := range rows {
		if r.Name() != q.Series {
			continue
		}
		v, ok := r.Field(q.Metric)
		if !ok {
			continue
		}
		f, ok := v.Float()
		if !ok {
			continue
		}
		d, ok := dates.Parse(r.Date())
		if !ok {
			continue
		}
		kept = append(kept, candidate{raw: r.Date(), date: d, value: f})
	}

	avail := availableRange(kept)

	bounded := kept
	if q.HasBounds() {
		bounded = make([]candidate, 0, len(kept))
		for _, c := range kept {
			if q.Start != nil && c.date.Before(*q.Start) {
				continue
			}
			// End is inclusive through the last millisecond of the day, which at
			// day granularity is the same as "not after".
			if q.End != nil && c.date.After(*q.End) {
				continue
			}
			bounded = append(bounded, c)
		}
	}

	if len(bounded) == 0 {
		inRange := q.HasBounds() && len(kept) > 0
		msg := fmt.Sprintf("No valid '%s' data available for %s", MetricLabel(q.Metric), q.Series)
		if inRange {
			msg += " within the selected date range."
		}
		return Result{Available: avail}, &NoDataError{
			Series:    q.Series,
			Metric:    q.Metric,
			InRange:   inRange,
			Available: avail,
			Message:   msg,
		}
	}

	sort.SliceStable(bounded, func(i, j int) bool {
		return bounded[i].date.Before(bounded[j].date)
	})

	res := Result{
		Labels:    make([]string, len(bounded)),
		Values:    make([]float64, len(bounded)),
		Available: avail,
		points:    make([]Point, len(bounded)),
	}
	for i, c := range bounded {
		res.Labels[i] = c.date.String()
		res.Values[i] = c.value
		res.points[i] = Point{Date: c.date, Value: c.value}
	}
	return res, nil
}

func availableRange(cs []candidate) *Range {
	if len(cs) == 0 {
		return nil
	}
	lo, hi := cs[0], cs[0]
	for _, c := range cs[1:] {
		if c.date.Before(lo.date) {
			lo = c
		}
		if c.date.After(hi.date) {
			hi = c
		}
	}
	return &Range{Min: lo.date, Max: hi.date, First: lo.raw, Last: hi.raw}
}
