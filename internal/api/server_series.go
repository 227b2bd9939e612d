package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/indexdash/internal/chart"
	"github.com/dgnsrekt/indexdash/internal/controller"
	"github.com/dgnsrekt/indexdash/internal/listview"
)

type seriesInput struct {
	Name   string `path:"name" doc:"Series name, e.g. ISX60"`
	Metric string `query:"metric" doc:"Metric column; defaults to the configured default metric"`
	Start  string `query:"start" doc:"Inclusive start date (DD-MM-YYYY or YYYY-MM-DD)"`
	End    string `query:"end" doc:"Inclusive end date (DD-MM-YYYY or YYYY-MM-DD)"`
}

func (in *seriesInput) query() controller.SeriesQuery {
	return controller.SeriesQuery{Series: in.Name, Metric: in.Metric, Start: in.Start, End: in.End}
}

type seriesImageInput struct {
	Name   string `path:"name"`
	Metric string `query:"metric"`
	Start  string `query:"start"`
	End    string `query:"end"`
	Width  int    `query:"width" minimum:"0" maximum:"4096" doc:"Image width in pixels (default 1280)"`
	Height int    `query:"height" minimum:"0" maximum:"4096" doc:"Image height in pixels (default 720)"`
}

type rawOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func binaryResponse(desc, mediaType string) map[string]*huma.Response {
	return map[string]*huma.Response{
		"200": {
			Description: desc,
			Content: map[string]*huma.MediaType{
				mediaType: {
					Schema: &huma.Schema{Type: "string", Format: "binary"},
				},
			},
		},
	}
}

func registerSeriesHandlers(api huma.API, svc Service) {
	type listSeriesOutput struct {
		Body struct {
			Entries []listview.Entry `json:"entries"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-series", Method: http.MethodGet, Path: "/api/v1/series", Summary: "List series names", Tags: []string{"Series"}},
		func(ctx context.Context, input *struct {
			Q string `query:"q" doc:"Case-insensitive substring filter"`
		}) (*listSeriesOutput, error) {
			entries, err := svc.SeriesNames(ctx, input.Q)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listSeriesOutput{}
			out.Body.Entries = entries
			if out.Body.Entries == nil {
				out.Body.Entries = []listview.Entry{}
			}
			return out, nil
		})

	type seriesDataOutput struct {
		Body controller.SeriesData
	}
	huma.Register(api, huma.Operation{OperationID: "get-series", Method: http.MethodGet, Path: "/api/v1/series/{name}", Summary: "Get a transformed series", Description: "Filters, bounds and sorts one series without changing the dashboard view.", Tags: []string{"Series"}},
		func(ctx context.Context, input *seriesInput) (*seriesDataOutput, error) {
			data, err := svc.SeriesData(ctx, input.query())
			if err != nil {
				return nil, mapErr(err)
			}
			out := &seriesDataOutput{}
			out.Body = data
			return out, nil
		})

	huma.Register(api, huma.Operation{
		OperationID: "get-series-chart-page",
		Method:      http.MethodGet,
		Path:        "/api/v1/series/{name}/chart.html",
		Summary:     "Standalone interactive chart page",
		Tags:        []string{"Series"},
		Responses:   binaryResponse("Chart page", "text/html"),
	}, func(ctx context.Context, input *seriesInput) (*rawOutput, error) {
		data, err := svc.SeriesData(ctx, input.query())
		if err != nil {
			return nil, mapErr(err)
		}
		var buf bytes.Buffer
		if err := chart.RenderHTML(&buf, data.Config); err != nil {
			return nil, huma.Error500InternalServerError("render chart page", err)
		}
		return &rawOutput{ContentType: "text/html; charset=utf-8", Body: buf.Bytes()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-series-chart-image",
		Method:      http.MethodGet,
		Path:        "/api/v1/series/{name}/chart.png",
		Summary:     "Render a series as PNG",
		Tags:        []string{"Series"},
		Responses:   binaryResponse("Chart image", "image/png"),
	}, func(ctx context.Context, input *seriesImageInput) (*rawOutput, error) {
		q := controller.SeriesQuery{Series: input.Name, Metric: input.Metric, Start: input.Start, End: input.End}
		data, err := svc.SeriesData(ctx, q)
		if err != nil {
			return nil, mapErr(err)
		}
		var buf bytes.Buffer
		if err := chart.RenderPNG(&buf, data.Config, input.Width, input.Height); err != nil {
			return nil, huma.Error500InternalServerError("render chart image", err)
		}
		return &rawOutput{ContentType: "image/png", Body: buf.Bytes()}, nil
	})
}
