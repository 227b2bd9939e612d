package controller

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/indexdash/internal/chart"
	"github.com/dgnsrekt/indexdash/internal/snapshot"
	"github.com/dgnsrekt/indexdash/internal/types"
)

// TakeSnapshot stores a PNG of the active chart, or of the series named in
// req. The "render" source draws server side; "browser" screenshots the
// interactive chart page.
func (s *Service) TakeSnapshot(ctx context.Context, req SnapshotRequest) (snapshot.SnapshotMeta, error) {
	if s.cfg.Snapshots == nil {
		return snapshot.SnapshotMeta{}, types.NewError(types.CodeRenderFailed, "snapshot store not configured", nil)
	}
	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		source = snapshot.SourceRender
	}
	if source != snapshot.SourceRender && source != snapshot.SourceBrowser {
		return snapshot.SnapshotMeta{}, types.NewError(types.CodeValidation, `source must be "render" or "browser"`, nil)
	}
	if req.Width < 0 || req.Height < 0 || req.Width > 4096 || req.Height > 4096 {
		return snapshot.SnapshotMeta{}, types.NewError(types.CodeValidation, "width and height must be between 0 and 4096", nil)
	}
	width, height := req.Width, req.Height
	if width == 0 {
		width = chart.DefaultWidth
	}
	if height == 0 {
		height = chart.DefaultHeight
	}

	q := SeriesQuery{Series: req.Series, Metric: req.Metric, Start: req.Start, End: req.End}
	chartID := ""
	if strings.TrimSpace(q.Series) == "" {
		active, err := s.ActiveChart(ctx)
		if err != nil {
			return snapshot.SnapshotMeta{}, err
		}
		chartID = active.ID
		q = SeriesQuery{Series: active.Series, Metric: active.Metric, Start: active.Start, End: active.End}
	}

	data, err := s.SeriesData(ctx, q)
	if err != nil {
		return snapshot.SnapshotMeta{}, err
	}

	var img []byte
	switch source {
	case snapshot.SourceBrowser:
		if s.cfg.Capturer == nil {
			return snapshot.SnapshotMeta{}, types.NewError(types.CodeCaptureUnavailable, "browser capture is disabled", nil)
		}
		img, err = s.cfg.Capturer.Capture(ctx, s.chartPageURL(data), width, height)
		if err != nil {
			return snapshot.SnapshotMeta{}, types.NewError(types.CodeCaptureUnavailable, fmt.Sprintf("browser capture: %v", err), err)
		}
	default:
		var buf bytes.Buffer
		if err := chart.RenderPNG(&buf, data.Config, width, height); err != nil {
			return snapshot.SnapshotMeta{}, types.NewError(types.CodeRenderFailed, err.Error(), err)
		}
		img = buf.Bytes()
	}

	startLabel, endLabel := boundLabel(q.Start), boundLabel(q.End)
	meta := snapshot.SnapshotMeta{
		ID:        uuid.New().String(),
		ChartID:   chartID,
		Series:    data.Series,
		Metric:    data.Metric,
		Start:     startLabel,
		End:       endLabel,
		Source:    source,
		Format:    "png",
		Width:     width,
		Height:    height,
		SizeBytes: len(img),
		Points:    len(data.Values),
		CreatedAt: time.Now().UTC(),
		Notes:     strings.TrimSpace(req.Notes),
	}
	if err := s.cfg.Snapshots.Save(meta, img); err != nil {
		return snapshot.SnapshotMeta{}, types.NewError(types.CodeRenderFailed, fmt.Sprintf("save snapshot: %v", err), err)
	}

	slog.Info("snapshot saved", "id", meta.ID, "series", meta.Series, "metric", meta.Metric, "source", source, "bytes", meta.SizeBytes)
	s.publish(types.EventSnapshotCreated, map[string]any{"snapshot_id": meta.ID, "series": meta.Series, "source": source})
	return meta, nil
}

func (s *Service) ListSnapshots(ctx context.Context) ([]snapshot.SnapshotMeta, error) {
	if s.cfg.Snapshots == nil {
		return []snapshot.SnapshotMeta{}, nil
	}
	return s.cfg.Snapshots.List()
}

func (s *Service) GetSnapshot(ctx context.Context, id string) (snapshot.SnapshotMeta, error) {
	if err := s.requireNonEmpty(id, "snapshot_id"); err != nil {
		return snapshot.SnapshotMeta{}, err
	}
	if s.cfg.Snapshots == nil {
		return snapshot.SnapshotMeta{}, types.NewError(types.CodeSnapshotNotFound, "snapshot not found: "+id, nil)
	}
	return s.cfg.Snapshots.Get(strings.TrimSpace(id))
}

func (s *Service) ReadSnapshotImage(ctx context.Context, id string) ([]byte, string, error) {
	if err := s.requireNonEmpty(id, "snapshot_id"); err != nil {
		return nil, "", err
	}
	if s.cfg.Snapshots == nil {
		return nil, "", types.NewError(types.CodeSnapshotNotFound, "snapshot not found: "+id, nil)
	}
	return s.cfg.Snapshots.ReadImage(strings.TrimSpace(id))
}

func (s *Service) DeleteSnapshot(ctx context.Context, id string) error {
	if err := s.requireNonEmpty(id, "snapshot_id"); err != nil {
		return err
	}
	if s.cfg.Snapshots == nil {
		return types.NewError(types.CodeSnapshotNotFound, "snapshot not found: "+id, nil)
	}
	return s.cfg.Snapshots.Delete(strings.TrimSpace(id))
}

// chartPageURL points at the standalone chart page for data.
func (s *Service) chartPageURL(data SeriesData) string {
	v := url.Values{}
	v.Set("metric", data.Metric)
	if len(data.Labels) > 0 {
		v.Set("start", data.Labels[0])
		v.Set("end", data.Labels[len(data.Labels)-1])
	}
	return fmt.Sprintf("%s/api/v1/series/%s/chart.html?%s", s.cfg.BaseURL, url.PathEscape(data.Series), v.Encode())
}

func boundLabel(raw string) string {
	d, err := parseBound(raw, "date")
	if err != nil || d == nil {
		return ""
	}
	return d.String()
}
