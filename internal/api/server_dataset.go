package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/indexdash/internal/controller"
)

func registerDatasetHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
			Loaded bool   `json:"loaded"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			st, err := svc.Status(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &healthOutput{}
			out.Body.Status = "ok"
			out.Body.Loaded = st.Loaded
			return out, nil
		})

	type statusOutput struct {
		Body controller.DatasetStatus
	}
	huma.Register(api, huma.Operation{OperationID: "get-dataset", Method: http.MethodGet, Path: "/api/v1/dataset", Summary: "Dataset status", Description: "Source, header, row and series counts, and any irregular rows seen while parsing.", Tags: []string{"Dataset"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			st, err := svc.Status(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body = st
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "reload-dataset", Method: http.MethodPost, Path: "/api/v1/dataset/reload", Summary: "Reload the dataset", Description: "Fetches and parses the data source again. Any active chart is destroyed. On failure the view shows the error and the call returns 503.", Tags: []string{"Dataset"}},
		func(ctx context.Context, input *struct{}) (*viewOutput, error) {
			v, err := svc.Load(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return newViewOutput(v), nil
		})

	type metricsOutput struct {
		Body controller.MetricsInfo
	}
	huma.Register(api, huma.Operation{OperationID: "list-metrics", Method: http.MethodGet, Path: "/api/v1/metrics", Summary: "List selectable metrics", Tags: []string{"Dataset"}},
		func(ctx context.Context, input *struct{}) (*metricsOutput, error) {
			m, err := svc.Metrics(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &metricsOutput{}
			out.Body = m
			if out.Body.Options == nil {
				out.Body.Options = []controller.MetricOption{}
			}
			return out, nil
		})
}
