package dataset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dgnsrekt/indexdash/internal/types"
)

const sampleCSV = `index_name,index_date,closing_index_value,volume
ISX60,01-01-2023,150,1000
ISX15,01-01-2023,80,300

ISX60,02-01-2023,151,1200
ISX15,02-01-2023,n/a,
ISX60,03-01-2023,152,900
`

func TestInfer(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		num  float64
	}{
		{"150", KindNumber, 150},
		{" 1.5 ", KindNumber, 1.5},
		{"-2e3", KindNumber, -2000},
		{".5", KindNumber, 0.5},
		{"7.", KindNumber, 7},
		{"", KindEmpty, 0},
		{"   ", KindEmpty, 0},
		{"TRUE", KindBool, 0},
		{"false", KindBool, 0},
		{"n/a", KindString, 0},
		{"150abc", KindString, 0},
		{"Infinity", KindString, 0},
		{"NaN", KindString, 0},
		{"0x10", KindString, 0},
		{"1e400", KindString, 0},
		{"1,000", KindString, 0},
	}
	for _, tt := range tests {
		v := Infer(tt.raw)
		if v.Kind != tt.kind {
			t.Fatalf("Infer(%q).Kind = %s; want %s", tt.raw, v.Kind, tt.kind)
		}
		f, ok := v.Float()
		if ok != (tt.kind == KindNumber) {
			t.Fatalf("Infer(%q).Float() ok = %v", tt.raw, ok)
		}
		if ok && f != tt.num {
			t.Fatalf("Infer(%q).Float() = %v; want %v", tt.raw, f, tt.num)
		}
	}
	if k := Infer("True").Kind; k != KindBool {
		t.Fatalf("Infer(True).Kind = %v; want bool", k)
	}
}

func TestParseSample(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleCSV), DefaultColumns)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := len(ds.Rows), 5; got != want {
		t.Fatalf("len(Rows) = %d; want %d", got, want)
	}
	if len(ds.RowErrors) != 0 {
		t.Fatalf("RowErrors = %+v; want none", ds.RowErrors)
	}
	r := ds.Rows[0]
	if r.Name() != "ISX60" || r.Date() != "01-01-2023" {
		t.Fatalf("row 0 = %q/%q", r.Name(), r.Date())
	}
	v, ok := r.Field("closing_index_value")
	if !ok {
		t.Fatal("closing_index_value missing")
	}
	if f, ok := v.Float(); !ok || f != 150 {
		t.Fatalf("closing_index_value = %v, %v", f, ok)
	}
	if _, ok := r.Field("no_such_column"); ok {
		t.Fatal("Field(no_such_column) ok = true")
	}
	if got, want := ds.Names(), []string{"ISX60", "ISX15"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v; want %v", got, want)
	}
}

func TestParseStripsBOM(t *testing.T) {
	ds, err := Parse(strings.NewReader("\ufeff"+sampleCSV), DefaultColumns)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if ds.Header[0] != "index_name" {
		t.Fatalf("Header[0] = %q; want index_name", ds.Header[0])
	}
	if ds.Rows[0].Name() != "ISX60" {
		t.Fatalf("Rows[0].Name() = %q", ds.Rows[0].Name())
	}
}

func TestParseRaggedRowsAreReportedNotFatal(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(old) })

	in := "index_name,index_date,closing_index_value\nA,01-01-2023\nB,01-01-2023,5,extra\nC,01-01-2023,6\n"
	ds, err := Parse(strings.NewReader(in), DefaultColumns)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ds.Rows) != 3 {
		t.Fatalf("len(Rows) = %d; want 3", len(ds.Rows))
	}
	if len(ds.RowErrors) != 2 {
		t.Fatalf("RowErrors = %+v; want 2", ds.RowErrors)
	}
	if ds.RowErrors[0].Code != RowTooFewFields || ds.RowErrors[0].Line != 2 {
		t.Fatalf("RowErrors[0] = %+v", ds.RowErrors[0])
	}
	if ds.RowErrors[1].Code != RowTooManyFields || ds.RowErrors[1].Line != 3 {
		t.Fatalf("RowErrors[1] = %+v", ds.RowErrors[1])
	}
	if _, ok := ds.Rows[0].Field("closing_index_value"); ok {
		t.Fatal("short row should not carry closing_index_value")
	}
	if !strings.Contains(buf.String(), "csv row irregular") {
		t.Fatalf("expected row warning log, got %q", buf.String())
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "index_name,index_date\n", "index_name,index_date\n\n\n"} {
		_, err := Parse(strings.NewReader(in), DefaultColumns)
		if got := types.CodeOf(err); got != types.CodeEmptyDataset {
			t.Fatalf("Parse(%q) code = %q; want %q", in, got, types.CodeEmptyDataset)
		}
	}
}

func TestNamesSkipsBlankAndKeepsFirstSeenOrder(t *testing.T) {
	in := "index_name,index_date,v\nB,1,1\n ,1,1\nA,1,1\nB,1,1\n,1,1\nC,1,1\nA,1,1\n"
	ds, err := Parse(strings.NewReader(in), DefaultColumns)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := ds.Names(), []string{"B", "A", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v; want %v", got, want)
	}
	var nilDS *Dataset
	if nilDS.Names() != nil {
		t.Fatal("nil Dataset Names() should be nil")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestLoaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	ds, err := NewLoader(path, DefaultColumns, 0, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.Source != path {
		t.Fatalf("Source = %q; want %q", ds.Source, path)
	}
	if len(ds.Rows) != 5 {
		t.Fatalf("len(Rows) = %d; want 5", len(ds.Rows))
	}
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "missing.csv"), DefaultColumns, 0, nil).Load(context.Background())
	if got := types.CodeOf(err); got != types.CodeFetchFailed {
		t.Fatalf("code = %q; want %q", got, types.CodeFetchFailed)
	}
}

func TestLoaderHTTP(t *testing.T) {
	var gotPath string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(sampleCSV)),
			Header:     make(http.Header),
		}, nil
	})}

	ds, err := NewLoader("http://example.com/dump.csv", DefaultColumns, 0, client).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if gotPath != "/dump.csv" {
		t.Fatalf("path = %q; want /dump.csv", gotPath)
	}
	if len(ds.Names()) != 2 {
		t.Fatalf("Names() = %v", ds.Names())
	}
}

func TestLoaderHTTPStatusError(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("missing")),
			Header:     make(http.Header),
		}, nil
	})}

	_, err := NewLoader("https://example.com/dump.csv", DefaultColumns, 0, client).Load(context.Background())
	var coded *types.CodedError
	if !errors.As(err, &coded) {
		t.Fatalf("error = %T; want *types.CodedError", err)
	}
	if coded.Code != types.CodeFetchFailed {
		t.Fatalf("code = %q; want %q", coded.Code, types.CodeFetchFailed)
	}
	if !strings.Contains(coded.Message, "status: 404") {
		t.Fatalf("message = %q; want status 404", coded.Message)
	}
}

func TestLoaderHTTPTransportError(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	_, err := NewLoader("http://example.com/dump.csv", DefaultColumns, 0, client).Load(context.Background())
	if got := types.CodeOf(err); got != types.CodeFetchFailed {
		t.Fatalf("code = %q; want %q", got, types.CodeFetchFailed)
	}
}

func TestLoaderNoSource(t *testing.T) {
	_, err := NewLoader("  ", DefaultColumns, 0, nil).Load(context.Background())
	if got := types.CodeOf(err); got != types.CodeFetchFailed {
		t.Fatalf("code = %q; want %q", got, types.CodeFetchFailed)
	}
}
