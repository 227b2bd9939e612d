package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/indexdash/internal/chart"
	"github.com/dgnsrekt/indexdash/internal/config"
)

func TestMetricOptionsFromColumns(t *testing.T) {
	opts := metricOptions(config.DefaultColumns())
	if len(opts) != 2 {
		t.Fatalf("len = %d; want 2", len(opts))
	}
	if opts[0].Key != "closing_index_value" || opts[0].Kind != chart.KindLine {
		t.Fatalf("opts[0] = %+v", opts[0])
	}
	if opts[1].Key != "volume" || opts[1].Label != "Volume" || opts[1].Kind != chart.KindBar {
		t.Fatalf("opts[1] = %+v", opts[1])
	}
}

func TestSetupLoggerCreatesLogDir(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	file := filepath.Join(t.TempDir(), "nested", "indexdash.log")
	if err := setupLogger("debug", file); err != nil {
		t.Fatalf("setupLogger() error = %v", err)
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug level not enabled")
	}
}
