package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/indexdash/internal/chart"
	"github.com/dgnsrekt/indexdash/internal/dataset"
	"github.com/dgnsrekt/indexdash/internal/dates"
	"github.com/dgnsrekt/indexdash/internal/listview"
	"github.com/dgnsrekt/indexdash/internal/series"
	"github.com/dgnsrekt/indexdash/internal/snapshot"
	"github.com/dgnsrekt/indexdash/internal/types"
)

// DatasetLoader fetches and parses the dataset.
type DatasetLoader interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// Publisher receives state transitions.
type Publisher interface {
	Publish(evt types.Event)
}

// Capturer screenshots a URL.
type Capturer interface {
	Capture(ctx context.Context, url string, width, height int) ([]byte, error)
}

// Config wires the service to its collaborators.
type Config struct {
	Metrics       []MetricOption
	DefaultMetric string
	Styles        chart.Styles
	XAxisTitle    string

	Snapshots *snapshot.Store
	Events    Publisher
	Capturer  Capturer
	// BaseURL is how the capturer reaches this server.
	BaseURL string
}

// state is everything the page shows. It is only touched with Service.mu held.
type state struct {
	ds        *dataset.Dataset
	loadErr   error
	entries   []listview.Entry
	sel       Selection
	start     *dates.Date
	end       *dates.Date
	title     string
	message   string
	available *series.Range
	chart     *ActiveChart
}

// Service owns the dashboard state and runs every user action to completion
// before the next one starts.
type Service struct {
	loader DatasetLoader
	cfg    Config

	mu sync.Mutex
	st state
}

// NewService creates a Service. Nothing is loaded until Load is called.
func NewService(loader DatasetLoader, cfg Config) *Service {
	if cfg.Styles == nil {
		cfg.Styles = chart.DefaultStyles()
	}
	if cfg.DefaultMetric == "" {
		cfg.DefaultMetric = "closing_index_value"
	}
	if cfg.XAxisTitle == "" {
		cfg.XAxisTitle = "Index Date"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Service{
		loader: loader,
		cfg:    cfg,
		st: state{
			entries: listview.Build(nil),
			sel:     Selection{Metric: cfg.DefaultMetric},
			title:   TitleSelect,
		},
	}
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return types.NewError(types.CodeValidation, fieldName+" is required", nil)
	}
	return nil
}

func (s *Service) requireLoaded() error {
	if s.st.ds != nil {
		return nil
	}
	if s.st.loadErr != nil {
		return types.NewError(types.CodeNotLoaded, "dataset not loaded: "+s.st.loadErr.Error(), s.st.loadErr)
	}
	return types.NewError(types.CodeNotLoaded, "dataset not loaded", nil)
}

func (s *Service) publish(typ string, payload map[string]any) {
	if s.cfg.Events == nil {
		return
	}
	s.cfg.Events.Publish(types.Event{Type: typ, At: time.Now().UTC(), Payload: payload})
}

// Load fetches the dataset and repopulates the list. Any chart is destroyed.
// The selected series name survives a reload but is not re-rendered.
func (s *Service) Load(ctx context.Context) (View, error) {
	ds, err := s.loader.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyChartLocked("reload")
	s.st.available = nil

	if err != nil {
		msg := displayMessage(err)
		s.st.ds = nil
		s.st.loadErr = err
		s.st.entries = listview.ErrorList(msg)
		s.st.title = TitleLoadError
		s.st.message = msg
		slog.Error("dataset load failed", "code", types.CodeOf(err), "error", err)
		s.publish(types.EventDatasetError, map[string]any{"code": types.CodeOf(err), "message": msg})
		return s.viewLocked(), err
	}

	s.st.ds = ds
	s.st.loadErr = nil
	s.st.entries = listview.Build(ds)
	s.st.title = TitleSelect
	s.st.message = ""
	slog.Info("dataset loaded", "source", ds.Source, "rows", len(ds.Rows), "series", len(ds.Names()), "row_errors", len(ds.RowErrors))
	s.publish(types.EventDatasetLoaded, map[string]any{
		"source":     ds.Source,
		"rows":       len(ds.Rows),
		"series":     len(ds.Names()),
		"row_errors": len(ds.RowErrors),
	})
	return s.viewLocked(), nil
}

// Select makes name the current series and renders it.
func (s *Service) Select(ctx context.Context, name string) (View, error) {
	if err := s.requireNonEmpty(name, "series"); err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireLoaded(); err != nil {
		return View{}, err
	}

	s.st.sel.Series = name
	s.publish(types.EventSelectionChanged, s.selectionPayloadLocked())
	s.renderLocked()
	return s.viewLocked(), nil
}

// SetMetric changes the metric and re-renders when a series is selected.
func (s *Service) SetMetric(ctx context.Context, key string) (View, error) {
	if err := s.requireNonEmpty(key, "metric"); err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.sel.Metric = strings.TrimSpace(key)
	s.publish(types.EventSelectionChanged, s.selectionPayloadLocked())
	if s.st.sel.Series != "" && s.st.ds != nil {
		s.renderLocked()
	}
	return s.viewLocked(), nil
}

// ApplyRange stores the date bounds and re-renders the selected series.
func (s *Service) ApplyRange(ctx context.Context, start, end string) (View, error) {
	startD, err := parseBound(start, "start")
	if err != nil {
		return View{}, err
	}
	endD, err := parseBound(end, "end")
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.sel.Series == "" {
		return View{}, types.NewError(types.CodeValidation, "Please select an index first.", nil)
	}
	if err := s.requireLoaded(); err != nil {
		return View{}, err
	}

	s.setBoundsLocked(startD, endD)
	s.publish(types.EventSelectionChanged, s.selectionPayloadLocked())
	s.renderLocked()
	return s.viewLocked(), nil
}

// ClearRange drops the date bounds and re-renders when a series is selected.
func (s *Service) ClearRange(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setBoundsLocked(nil, nil)
	s.publish(types.EventSelectionChanged, s.selectionPayloadLocked())
	if s.st.sel.Series != "" && s.st.ds != nil {
		s.renderLocked()
	}
	return s.viewLocked(), nil
}

// ResetZoom asks the active chart to return to its original range. It is a
// no-op when no chart is active.
func (s *Service) ResetZoom(ctx context.Context) (ResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.st.chart
	if c == nil {
		slog.Debug("reset zoom ignored, no active chart")
		return ResetResult{}, nil
	}
	c.ResetCount++
	s.publish(types.EventChartZoomReset, map[string]any{"chart_id": c.ID, "reset_count": c.ResetCount})
	return ResetResult{Reset: true, ChartID: c.ID, ResetCount: c.ResetCount}, nil
}

// Search stores the list filter and returns the visible entries.
func (s *Service) Search(ctx context.Context, query string) ([]listview.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.sel.Query = query
	return listview.Filter(s.st.entries, query), nil
}

// View returns the current page state.
func (s *Service) View(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(), nil
}

// ActiveChart returns the live chart or NO_CHART.
func (s *Service) ActiveChart(ctx context.Context) (ActiveChart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.chart == nil {
		return ActiveChart{}, types.NewError(types.CodeNoChart, "no active chart", nil)
	}
	return *s.st.chart, nil
}

// Metrics returns the metric selector options.
func (s *Service) Metrics(ctx context.Context) (MetricsInfo, error) {
	opts := make([]MetricOption, len(s.cfg.Metrics))
	copy(opts, s.cfg.Metrics)
	return MetricsInfo{Default: s.cfg.DefaultMetric, Options: opts}, nil
}

// Status reports what is loaded.
func (s *Service) Status(ctx context.Context) (DatasetStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.ds == nil {
		st := DatasetStatus{}
		if s.st.loadErr != nil {
			st.Error = s.st.loadErr.Error()
		}
		return st, nil
	}
	ds := s.st.ds
	loadedAt := ds.LoadedAt
	return DatasetStatus{
		Loaded:    true,
		Source:    ds.Source,
		Header:    append([]string(nil), ds.Header...),
		Rows:      len(ds.Rows),
		Series:    len(ds.Names()),
		RowErrors: append([]dataset.RowError(nil), ds.RowErrors...),
		LoadedAt:  &loadedAt,
	}, nil
}

// SeriesNames returns the list entries filtered by query without changing
// the stored search.
func (s *Service) SeriesNames(ctx context.Context, query string) ([]listview.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listview.Filter(s.st.entries, query), nil
}

// SeriesData transforms a series without touching page state.
func (s *Service) SeriesData(ctx context.Context, q SeriesQuery) (SeriesData, error) {
	if err := s.requireNonEmpty(q.Series, "series"); err != nil {
		return SeriesData{}, err
	}
	startD, err := parseBound(q.Start, "start")
	if err != nil {
		return SeriesData{}, err
	}
	endD, err := parseBound(q.End, "end")
	if err != nil {
		return SeriesData{}, err
	}
	metric := strings.TrimSpace(q.Metric)
	if metric == "" {
		metric = s.cfg.DefaultMetric
	}

	s.mu.Lock()
	if err := s.requireLoaded(); err != nil {
		s.mu.Unlock()
		return SeriesData{}, err
	}
	ds := s.st.ds
	s.mu.Unlock()

	return s.transform(ds, series.Query{Series: q.Series, Metric: metric, Start: startD, End: endD})
}

// transform runs outside the lock; rows are never mutated after load.
func (s *Service) transform(ds *dataset.Dataset, q series.Query) (SeriesData, error) {
	res, err := series.Transform(ds.Rows, q)
	if err != nil {
		var nd *series.NoDataError
		if errors.As(err, &nd) {
			return SeriesData{}, types.NewError(types.CodeNoData, nd.Message, nd)
		}
		return SeriesData{}, err
	}
	cfg := chart.Build(q.Series, s.cfg.Styles.Lookup(q.Metric), res, s.cfg.XAxisTitle)
	return SeriesData{
		Series:         q.Series,
		Metric:         q.Metric,
		Labels:         res.Labels,
		Values:         res.Values,
		Available:      res.Available,
		AvailableRange: series.AvailableRangeText(res.Available),
		Config:         cfg,
	}, nil
}

func (s *Service) setBoundsLocked(start, end *dates.Date) {
	s.st.start, s.st.end = start, end
	s.st.sel.Start, s.st.sel.End = "", ""
	if start != nil {
		s.st.sel.Start = start.String()
	}
	if end != nil {
		s.st.sel.End = end.String()
	}
}

// renderLocked runs the transform for the current selection. The previous
// chart is always destroyed first, so at most one chart is ever live.
func (s *Service) renderLocked() {
	sel := s.st.sel
	s.st.title = "Index Data for " + sel.Series
	s.destroyChartLocked("replaced")

	q := series.Query{Series: sel.Series, Metric: sel.Metric, Start: s.st.start, End: s.st.end}
	res, err := series.Transform(s.st.ds.Rows, q)
	s.st.available = res.Available
	if err != nil {
		var nd *series.NoDataError
		if errors.As(err, &nd) {
			s.st.message = nd.Message
		} else {
			s.st.message = err.Error()
		}
		slog.Warn("no chart data", "series", sel.Series, "metric", sel.Metric, "in_range", nd != nil && nd.InRange)
		s.publish(types.EventChartNoData, map[string]any{"series": sel.Series, "metric": sel.Metric, "message": s.st.message})
		return
	}

	s.st.message = ""
	s.st.chart = &ActiveChart{
		ID:        uuid.New().String(),
		Series:    sel.Series,
		Metric:    sel.Metric,
		Start:     sel.Start,
		End:       sel.End,
		Points:    res.Len(),
		Config:    chart.Build(sel.Series, s.cfg.Styles.Lookup(sel.Metric), res, s.cfg.XAxisTitle),
		CreatedAt: time.Now().UTC(),
	}
	slog.Info("chart created", "chart_id", s.st.chart.ID, "series", sel.Series, "metric", sel.Metric, "points", res.Len())
	s.publish(types.EventChartCreated, map[string]any{
		"chart_id": s.st.chart.ID,
		"series":   sel.Series,
		"metric":   sel.Metric,
		"points":   res.Len(),
	})
}

func (s *Service) destroyChartLocked(reason string) {
	if s.st.chart == nil {
		return
	}
	id := s.st.chart.ID
	s.st.chart = nil
	slog.Debug("chart destroyed", "chart_id", id, "reason", reason)
	s.publish(types.EventChartDestroyed, map[string]any{"chart_id": id, "reason": reason})
}

func (s *Service) selectionPayloadLocked() map[string]any {
	return map[string]any{
		"series": s.st.sel.Series,
		"metric": s.st.sel.Metric,
		"start":  s.st.sel.Start,
		"end":    s.st.sel.End,
	}
}

func (s *Service) viewLocked() View {
	v := View{
		Loaded:       s.st.ds != nil,
		Title:        s.st.title,
		Message:      s.st.message,
		Selection:    s.st.sel,
		Entries:      listview.Filter(s.st.entries, s.st.sel.Query),
		TotalEntries: len(s.st.entries),
	}
	if s.st.sel.Series != "" && s.st.ds != nil && (s.st.chart != nil || s.st.message != "") {
		v.AvailableRange = series.AvailableRangeText(s.st.available)
	}
	if s.st.chart != nil {
		c := *s.st.chart
		v.Chart = &c
	}
	return v
}

// displayMessage drops the code prefix so the page shows what the user can act on.
func displayMessage(err error) string {
	var coded *types.CodedError
	if errors.As(err, &coded) {
		return coded.Message
	}
	return err.Error()
}

func parseBound(raw, field string) (*dates.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, ok := dates.Parse(raw)
	if !ok {
		return nil, types.NewError(types.CodeValidation, fmt.Sprintf("invalid %s date %q", field, raw), nil)
	}
	return &d, nil
}
