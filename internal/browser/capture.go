// Package browser drives a headless Chrome to capture the interactive chart page.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Config holds capture settings.
type Config struct {
	// RemoteURL is a DevTools endpoint such as http://127.0.0.1:9222. Empty
	// launches a local headless browser.
	RemoteURL string
	Timeout   time.Duration
	// ReadySelector is waited on before the screenshot is taken.
	ReadySelector string
}

// Capturer takes PNG screenshots of pages.
type Capturer struct {
	cfg         Config
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewCapturer creates the allocator. No browser starts until the first capture.
func NewCapturer(cfg Config) *Capturer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ReadySelector == "" {
		cfg.ReadySelector = "#chart-ready"
	}

	c := &Capturer{cfg: cfg}
	if cfg.RemoteURL != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		slog.Info("browser capture using remote allocator", "url", cfg.RemoteURL)
		return c
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
	)
	c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	slog.Info("browser capture using headless exec allocator")
	return c
}

// Capture navigates a fresh tab to url at the given viewport and returns a
// PNG of the full page once the ready selector is visible.
func (c *Capturer) Capture(ctx context.Context, url string, width, height int) ([]byte, error) {
	if c == nil || c.allocCtx == nil {
		return nil, errors.New("browser: capturer closed")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("browser: capture: unsupported url %q", url)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("browser: capture: invalid viewport %dx%d", width, height)
	}

	tabCtx, tabCancel := chromedp.NewContext(c.allocCtx)
	defer tabCancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, c.cfg.Timeout)
	defer timeoutCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	start := time.Now()
	var buf []byte
	err := chromedp.Run(tabCtx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
		chromedp.Navigate(url),
		chromedp.WaitReady(c.cfg.ReadySelector, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			if err != nil {
				return err
			}
			buf = data
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser: capture %s: %w", url, err)
	}
	slog.Debug("browser capture complete", "url", url, "bytes", len(buf), "duration_ms", time.Since(start).Milliseconds())
	return buf, nil
}

// Close releases the allocator and any browser it started.
func (c *Capturer) Close() {
	if c == nil || c.allocCancel == nil {
		return
	}
	c.allocCancel()
	c.allocCtx = nil
	c.allocCancel = nil
}
