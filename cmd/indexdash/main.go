package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/indexdash/internal/api"
	"github.com/dgnsrekt/indexdash/internal/browser"
	"github.com/dgnsrekt/indexdash/internal/chart"
	"github.com/dgnsrekt/indexdash/internal/config"
	"github.com/dgnsrekt/indexdash/internal/controller"
	"github.com/dgnsrekt/indexdash/internal/dataset"
	"github.com/dgnsrekt/indexdash/internal/events"
	"github.com/dgnsrekt/indexdash/internal/netutil"
	"github.com/dgnsrekt/indexdash/internal/snapshot"
	"github.com/dgnsrekt/indexdash/internal/storage"
	"github.com/dgnsrekt/indexdash/internal/web"
)

func main() {
	cfg, err := config.LoadDashboard()
	if err != nil {
		slog.Error("failed to load dashboard config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("indexdash config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"data_source", cfg.DataSource,
		"fetch_timeout_ms", cfg.FetchTimeoutMS,
		"columns_config", cfg.ColumnsConfig,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
		"snapshot_dir", cfg.SnapshotDir,
		"browser_capture", cfg.BrowserCapture,
		"journal_dir", cfg.JournalDir,
	)

	cols, err := config.LoadColumns(cfg.ColumnsConfig)
	if err != nil {
		slog.Error("failed to load columns config", "path", cfg.ColumnsConfig, "error", err)
		os.Exit(1)
	}

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	snapStore, err := snapshot.NewStore(cfg.SnapshotDir)
	if err != nil {
		slog.Error("failed to create snapshot store", "dir", cfg.SnapshotDir, "error", err)
		os.Exit(1)
	}

	broker := events.NewBroker()
	if cfg.JournalDir != "" {
		journal := storage.NewJournal(cfg.JournalDir, 25)
		journal.Follow(broker)
		defer func() {
			if err := journal.Close(); err != nil {
				slog.Debug("journal close failed", "error", err)
			}
		}()
	}
	loader := dataset.NewLoader(cfg.DataSource, cols.Columns(), cfg.FetchTimeout(), nil)

	svcCfg := controller.Config{
		Metrics:       metricOptions(cols),
		DefaultMetric: cols.DefaultMetric,
		Styles:        cols.Styles(),
		XAxisTitle:    cols.XAxisTitle,
		Snapshots:     snapStore,
		Events:        broker,
		BaseURL:       cfg.BaseURL(bindAddr),
	}
	if cfg.BrowserCapture {
		capturer := browser.NewCapturer(browser.Config{RemoteURL: cfg.CDPURL})
		defer capturer.Close()
		svcCfg.Capturer = capturer
	}

	svc := controller.NewService(loader, svcCfg)

	// The list is populated, or the error view set, before the first request.
	if _, err := svc.Load(context.Background()); err != nil {
		slog.Warn("initial dataset load failed; serving error view", "error", err)
	}

	slog.Info("snapshot store ready", "dir", snapStore.Dir())

	h := api.NewServer(svc, api.WithWeb(web.Handler()), api.WithEvents(broker))
	srv := &http.Server{Addr: bindAddr, Handler: h}

	go func() {
		slog.Info("indexdash listening", "addr", bindAddr, "dashboard", "http://"+bindAddr+"/", "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("indexdash server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("indexdash shutdown failed", "error", err)
	}
	published, dropped := broker.Stats()
	slog.Info("indexdash stopped", "events_published", published, "events_dropped", dropped)
}

func metricOptions(cols *config.ColumnsConfig) []controller.MetricOption {
	opts := make([]controller.MetricOption, 0, len(cols.Metrics))
	for _, m := range cols.Metrics {
		opts = append(opts, controller.MetricOption{Key: m.Key, Label: m.Label, Kind: chart.Kind(m.Kind)})
	}
	return opts
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
