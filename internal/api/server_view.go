package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/indexdash/internal/controller"
	"github.com/dgnsrekt/indexdash/internal/listview"
)

type viewOutput struct {
	Body controller.View
}

func newViewOutput(v controller.View) *viewOutput {
	if v.Entries == nil {
		v.Entries = []listview.Entry{}
	}
	return &viewOutput{Body: v}
}

func registerViewHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "get-view", Method: http.MethodGet, Path: "/api/v1/view", Summary: "Current dashboard view", Tags: []string{"View"}},
		func(ctx context.Context, input *struct{}) (*viewOutput, error) {
			v, err := svc.View(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return newViewOutput(v), nil
		})

	huma.Register(api, huma.Operation{OperationID: "select-series", Method: http.MethodPost, Path: "/api/v1/view/select", Summary: "Select a series", Description: "Stores the series and renders it with the current metric and date range.", Tags: []string{"View"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Series string `json:"series" required:"true" doc:"Series name from the list"`
			}
		}) (*viewOutput, error) {
			v, err := svc.Select(ctx, input.Body.Series)
			if err != nil {
				return nil, mapErr(err)
			}
			return newViewOutput(v), nil
		})

	huma.Register(api, huma.Operation{OperationID: "set-metric", Method: http.MethodPost, Path: "/api/v1/view/metric", Summary: "Change the metric", Description: "Re-renders when a series is selected.", Tags: []string{"View"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Metric string `json:"metric" required:"true" doc:"Metric key, e.g. closing_index_value or volume"`
			}
		}) (*viewOutput, error) {
			v, err := svc.SetMetric(ctx, input.Body.Metric)
			if err != nil {
				return nil, mapErr(err)
			}
			return newViewOutput(v), nil
		})

	huma.Register(api, huma.Operation{OperationID: "apply-range", Method: http.MethodPost, Path: "/api/v1/view/range", Summary: "Apply a date range", Description: "Both bounds are optional and inclusive. Requires a selected series.", Tags: []string{"View"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Start string `json:"start,omitempty" doc:"Start date (DD-MM-YYYY or YYYY-MM-DD)"`
				End   string `json:"end,omitempty" doc:"End date (DD-MM-YYYY or YYYY-MM-DD)"`
			}
		}) (*viewOutput, error) {
			v, err := svc.ApplyRange(ctx, input.Body.Start, input.Body.End)
			if err != nil {
				return nil, mapErr(err)
			}
			return newViewOutput(v), nil
		})

	huma.Register(api, huma.Operation{OperationID: "clear-range", Method: http.MethodDelete, Path: "/api/v1/view/range", Summary: "Clear the date range", Tags: []string{"View"}},
		func(ctx context.Context, input *struct{}) (*viewOutput, error) {
			v, err := svc.ClearRange(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return newViewOutput(v), nil
		})

	type searchOutput struct {
		Body struct {
			Query   string           `json:"query"`
			Entries []listview.Entry `json:"entries"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "search-series", Method: http.MethodPost, Path: "/api/v1/view/search", Summary: "Filter the series list", Tags: []string{"View"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Query string `json:"query" doc:"Case-insensitive substring; empty shows every entry"`
			}
		}) (*searchOutput, error) {
			entries, err := svc.Search(ctx, input.Body.Query)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &searchOutput{}
			out.Body.Query = input.Body.Query
			out.Body.Entries = entries
			if out.Body.Entries == nil {
				out.Body.Entries = []listview.Entry{}
			}
			return out, nil
		})

	type activeChartOutput struct {
		Body controller.ActiveChart
	}
	huma.Register(api, huma.Operation{OperationID: "get-active-chart", Method: http.MethodGet, Path: "/api/v1/chart", Summary: "Get the active chart", Tags: []string{"Chart"}},
		func(ctx context.Context, input *struct{}) (*activeChartOutput, error) {
			c, err := svc.ActiveChart(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &activeChartOutput{}
			out.Body = c
			return out, nil
		})

	type resetOutput struct {
		Body controller.ResetResult
	}
	huma.Register(api, huma.Operation{OperationID: "reset-zoom", Method: http.MethodPost, Path: "/api/v1/chart/reset-zoom", Summary: "Reset chart zoom", Description: "No-op when no chart is active; reset is false in that case.", Tags: []string{"Chart"}},
		func(ctx context.Context, input *struct{}) (*resetOutput, error) {
			res, err := svc.ResetZoom(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &resetOutput{}
			out.Body = res
			return out, nil
		})
}
