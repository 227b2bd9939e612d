package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgnsrekt/indexdash/internal/netutil"
)

// Config holds all configuration for the dashboard server.
type Config struct {
	// Listener settings
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool
	PublicURL        string

	// Dataset settings
	DataSource     string
	FetchTimeoutMS int
	ColumnsConfig  string

	// Logging
	LogLevel string
	LogFile  string

	// Snapshots and headless capture
	SnapshotDir    string
	BrowserCapture bool
	CDPURL         string

	// Event journal; empty disables it
	JournalDir string
}

// LoadDashboard reads configuration from environment variables and optional .env file.
func LoadDashboard() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		BindAddr:         getEnvOrDefault("DASHBOARD_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:   getEnvListOrDefault("DASHBOARD_PORT_CANDIDATES", []string{"127.0.0.1:8191", "127.0.0.1:8192"}),
		PortAutoFallback: getEnvBoolOrDefault("DASHBOARD_PORT_AUTO_FALLBACK", true),
		PublicURL:        strings.TrimRight(getEnvOrDefault("DASHBOARD_PUBLIC_URL", ""), "/"),
		DataSource:       getEnvOrDefault("DASHBOARD_DATA_SOURCE", "./data/dump.csv"),
		FetchTimeoutMS:   getEnvIntOrDefault("DASHBOARD_FETCH_TIMEOUT_MS", 10000),
		ColumnsConfig:    getEnvOrDefault("DASHBOARD_COLUMNS_CONFIG", "./config/columns.yaml"),
		LogLevel:         strings.ToLower(getEnvOrDefault("DASHBOARD_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("DASHBOARD_LOG_FILE", "logs/indexdash.log"),
		SnapshotDir:      getEnvOrDefault("SNAPSHOT_DIR", "./snapshots"),
		BrowserCapture:   getEnvBoolOrDefault("DASHBOARD_BROWSER_CAPTURE", false),
		CDPURL:           getEnvOrDefault("DASHBOARD_CDP_URL", ""),
		JournalDir:       getEnvOrDefault("DASHBOARD_EVENT_JOURNAL_DIR", ""),
	}
	if cfg.FetchTimeoutMS < 1000 {
		cfg.FetchTimeoutMS = 1000
	}
	return cfg, nil
}

// FetchTimeout returns the dataset load timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// BaseURL returns the URL the headless capturer uses to reach this server.
func (c *Config) BaseURL(boundAddr string) string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	return "http://" + boundAddr
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		return netutil.ParseCandidates(val)
	}
	return defaultVal
}
