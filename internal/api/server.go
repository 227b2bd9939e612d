package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/indexdash/internal/controller"
	"github.com/dgnsrekt/indexdash/internal/events"
	"github.com/dgnsrekt/indexdash/internal/listview"
	"github.com/dgnsrekt/indexdash/internal/snapshot"
	"github.com/dgnsrekt/indexdash/internal/types"
)

type Service interface {
	Load(ctx context.Context) (controller.View, error)
	Status(ctx context.Context) (controller.DatasetStatus, error)
	Metrics(ctx context.Context) (controller.MetricsInfo, error)
	SeriesNames(ctx context.Context, query string) ([]listview.Entry, error)
	SeriesData(ctx context.Context, q controller.SeriesQuery) (controller.SeriesData, error)
	View(ctx context.Context) (controller.View, error)
	Select(ctx context.Context, name string) (controller.View, error)
	SetMetric(ctx context.Context, key string) (controller.View, error)
	ApplyRange(ctx context.Context, start, end string) (controller.View, error)
	ClearRange(ctx context.Context) (controller.View, error)
	Search(ctx context.Context, query string) ([]listview.Entry, error)
	ActiveChart(ctx context.Context) (controller.ActiveChart, error)
	ResetZoom(ctx context.Context) (controller.ResetResult, error)
	TakeSnapshot(ctx context.Context, req controller.SnapshotRequest) (snapshot.SnapshotMeta, error)
	ListSnapshots(ctx context.Context) ([]snapshot.SnapshotMeta, error)
	GetSnapshot(ctx context.Context, id string) (snapshot.SnapshotMeta, error)
	ReadSnapshotImage(ctx context.Context, id string) ([]byte, string, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

// Option configures optional routes on the server.
type Option func(*options)

type options struct {
	broker *events.Broker
	web    http.Handler
}

// WithEvents mounts the SSE and WebSocket event streams for b.
func WithEvents(b *events.Broker) Option {
	return func(o *options) { o.broker = b }
}

// WithWeb serves the dashboard page and its static assets from h.
func WithWeb(h http.Handler) Option {
	return func(o *options) { o.web = h }
}

func NewServer(svc Service, opts ...Option) http.Handler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Index Dashboard API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	if o.web != nil {
		router.Handle("/", o.web)
		router.Handle("/static/*", o.web)
	}
	if o.broker != nil {
		router.Get("/api/v1/events", events.SSEHandler(o.broker))
		router.Get("/api/v1/events/ws", events.WSHandler(o.broker))
	}

	registerDatasetHandlers(api, svc)
	registerSeriesHandlers(api, svc)
	registerViewHandlers(api, svc)
	registerSnapshotHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *types.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case types.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case types.CodeNoData, types.CodeNoChart, types.CodeSnapshotNotFound:
			return huma.Error404NotFound(coded.Message)
		case types.CodeNotLoaded, types.CodeEmptyDataset, types.CodeFetchFailed, types.CodeParseFailed:
			return huma.Error503ServiceUnavailable(coded.Message)
		case types.CodeCaptureUnavailable:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
