// Package dataset parses the bundled index dump into immutable rows.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dgnsrekt/indexdash/internal/types"
)

// Columns names the header fields that carry the series name and the date.
type Columns struct {
	Series string
	Date   string
}

// DefaultColumns matches the index dump layout.
var DefaultColumns = Columns{Series: "index_name", Date: "index_date"}

// Row error codes, reported per line without aborting the load.
const (
	RowTooFewFields  = "TooFewFields"
	RowTooManyFields = "TooManyFields"
	RowMalformed     = "Malformed"
)

// RowError describes a malformed input line.
type RowError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Row is one parsed record. Rows are never mutated after parsing.
type Row struct {
	name   string
	date   string
	fields map[string]Value
}

// NewRow builds a Row from header-keyed raw cells.
func NewRow(cols Columns, cells map[string]string) Row {
	r := Row{fields: make(map[string]Value, len(cells))}
	for k, raw := range cells {
		r.fields[k] = Infer(raw)
	}
	r.name = cells[cols.Series]
	r.date = cells[cols.Date]
	return r
}

// Name returns the series name exactly as it appeared in the file.
func (r Row) Name() string { return r.name }

// Date returns the raw date string.
func (r Row) Date() string { return r.date }

// Field returns the cell for key. ok is false when the row has no such column.
func (r Row) Field(key string) (Value, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Dataset is the full row set held for the lifetime of the page session.
type Dataset struct {
	Source    string
	Header    []string
	Rows      []Row
	RowErrors []RowError
	LoadedAt  time.Time
}

// Names returns the non-blank series names in first-seen order without duplicates.
func (d *Dataset) Names() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{}, 64)
	out := make([]string, 0, 64)
	for _, r := range d.Rows {
		name := r.Name()
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Parse reads a header row followed by data rows. Ragged lines are kept and
// reported in RowErrors; lines the CSV reader cannot decode are skipped.
func Parse(r io.Reader, cols Columns) (*Dataset, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, types.NewError(types.CodeEmptyDataset, "No data found in CSV or CSV is empty after parsing.", nil)
	}
	if err != nil {
		return nil, types.NewError(types.CodeParseFailed, "Error parsing CSV data: header", err)
	}

	ds := &Dataset{Header: header, LoadedAt: time.Now().UTC()}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, types.NewError(types.CodeParseFailed, "Error parsing CSV data", err)
			}
			ds.RowErrors = append(ds.RowErrors, RowError{Line: pe.Line, Code: RowMalformed, Message: pe.Err.Error()})
			slog.Warn("csv row skipped", "line", pe.Line, "error", pe.Err)
			continue
		}
		if isBlank(rec) {
			continue
		}

		line, _ := cr.FieldPos(0)
		switch {
		case len(rec) < len(header):
			ds.RowErrors = append(ds.RowErrors, RowError{
				Line: line, Code: RowTooFewFields,
				Message: fmt.Sprintf("too few fields: expected %d fields but parsed %d", len(header), len(rec)),
			})
		case len(rec) > len(header):
			ds.RowErrors = append(ds.RowErrors, RowError{
				Line: line, Code: RowTooManyFields,
				Message: fmt.Sprintf("too many fields: expected %d fields but parsed %d", len(header), len(rec)),
			})
		}

		cells := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				cells[h] = rec[i]
			}
		}
		for i := len(header); i < len(rec); i++ {
			cells[fmt.Sprintf("__parsed_extra_%d", i-len(header))] = rec[i]
		}
		ds.Rows = append(ds.Rows, NewRow(cols, cells))
	}

	for _, re := range ds.RowErrors {
		if re.Code != RowMalformed {
			slog.Warn("csv row irregular", "line", re.Line, "code", re.Code, "message", re.Message)
		}
	}

	if len(ds.Rows) == 0 {
		return nil, types.NewError(types.CodeEmptyDataset, "No data found in CSV or CSV is empty after parsing.", nil)
	}
	return ds, nil
}

func isBlank(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}
