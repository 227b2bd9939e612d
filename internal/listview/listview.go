// Package listview derives the sidebar entries from a dataset and filters them.
package listview

import (
	"strings"

	"github.com/dgnsrekt/indexdash/internal/dataset"
)

// EntryKind separates selectable entries from informational ones.
type EntryKind string

const (
	KindSeries      EntryKind = "series"
	KindPlaceholder EntryKind = "placeholder"
	KindError       EntryKind = "error"
)

const (
	MsgNoData  = "No data to display."
	MsgNoNames = "No unique index names found."
)

// Entry is one sidebar line.
type Entry struct {
	Name string    `json:"name"`
	Kind EntryKind `json:"kind"`
}

// Selectable reports whether clicking the entry selects a series.
func (e Entry) Selectable() bool { return e.Kind == KindSeries }

// Build returns one entry per unique series name in first-seen order, or a
// single placeholder when there is nothing to list.
func Build(ds *dataset.Dataset) []Entry {
	if ds == nil || len(ds.Rows) == 0 {
		return []Entry{{Name: MsgNoData, Kind: KindPlaceholder}}
	}
	names := ds.Names()
	if len(names) == 0 {
		return []Entry{{Name: MsgNoNames, Kind: KindPlaceholder}}
	}
	out := make([]Entry, len(names))
	for i, n := range names {
		out[i] = Entry{Name: n, Kind: KindSeries}
	}
	return out
}

// ErrorList is the list shown when loading failed.
func ErrorList(msg string) []Entry {
	return []Entry{{Name: msg, Kind: KindError}}
}

// Filter keeps series entries whose name contains query, ignoring case.
// Placeholder and error entries only show while the query is blank.
func Filter(entries []Entry, query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if q == "" {
			out = append(out, e)
			continue
		}
		if !e.Selectable() {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
