package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dgnsrekt/indexdash/internal/types"
)

// Loader fetches and parses the dataset from a file path or an http(s) URL.
type Loader struct {
	Source  string
	Columns Columns
	Timeout time.Duration
	Client  *http.Client
}

// NewLoader creates a Loader. A nil client means http.DefaultClient.
func NewLoader(source string, cols Columns, timeout time.Duration, client *http.Client) *Loader {
	return &Loader{Source: source, Columns: cols, Timeout: timeout, Client: client}
}

// Load fetches the source and parses it. Failures come back as
// *types.CodedError with FETCH_FAILED, PARSE_FAILED or EMPTY_DATASET.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if strings.TrimSpace(l.Source) == "" {
		return nil, types.NewError(types.CodeFetchFailed, "Could not load company data: no data source configured", nil)
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	slog.Info("fetching CSV data", "source", l.Source)
	body, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := body.Close(); err != nil {
			slog.Debug("dataset source close failed", "error", err)
		}
	}()

	ds, err := Parse(body, l.Columns)
	if err != nil {
		return nil, err
	}
	ds.Source = l.Source
	slog.Info("CSV data parsed",
		"source", l.Source,
		"rows", len(ds.Rows),
		"row_errors", len(ds.RowErrors),
		"series", len(ds.Names()),
	)
	return ds, nil
}

func (l *Loader) open(ctx context.Context) (io.ReadCloser, error) {
	if isRemote(l.Source) {
		return l.fetch(ctx)
	}
	f, err := os.Open(l.Source)
	if err != nil {
		return nil, types.NewError(types.CodeFetchFailed, fmt.Sprintf("Could not load company data: %v", err), err)
	}
	return f, nil
}

func (l *Loader) fetch(ctx context.Context) (io.ReadCloser, error) {
	c := l.Client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Source, nil)
	if err != nil {
		return nil, types.NewError(types.CodeFetchFailed, fmt.Sprintf("Could not load company data: %v", err), err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := c.Do(req)
	if err != nil {
		msg := fmt.Sprintf("Could not load company data: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "Could not load company data: request timed out"
		}
		return nil, types.NewError(types.CodeFetchFailed, msg, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return nil, types.NewError(types.CodeFetchFailed,
			fmt.Sprintf("Could not load company data: HTTP error! status: %d", resp.StatusCode), nil)
	}
	return resp.Body, nil
}

func isRemote(source string) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
