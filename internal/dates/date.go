// Package dates parses the loosely formatted date strings found in index
// dumps into calendar days.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Format is the normalized label format.
const Format = "2006-01-02"

var dmyRe = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)

// fallbackLayouts are tried in order once the DD-MM-YYYY shape did not match.
var fallbackLayouts = []string{
	Format,
	"2006-1-2",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	"Mon, 02 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// Date is a calendar day with no time-of-day component.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date, so New(2020, 2, 30) is 2020-03-01.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// FromTime returns the UTC calendar day of t.
func FromTime(t time.Time) Date {
	return New(t.UTC().Date())
}

// Year returns the calendar year.
func (d Date) Year() int { return d.y }

// Month returns the calendar month.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Before reports whether d falls on an earlier day than x.
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }

// After reports whether d falls on a later day than x.
func (d Date) After(x Date) bool { return d.Compare(x) > 0 }

// Equal reports whether d and x are the same day.
func (d Date) Equal(x Date) bool { return d == x }

// Compare returns -1, 0 or +1.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmpInt(d.y, x.y)
	case d.m != x.m:
		return cmpInt(int(d.m), int(x.m))
	default:
		return cmpInt(d.d, x.d)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string { return d.Time().Format(Format) }

// MarshalText encodes d as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText accepts any layout Parse does.
func (d *Date) UnmarshalText(b []byte) error {
	v, ok := Parse(string(b))
	if !ok {
		return &ParseError{Input: string(b)}
	}
	*d = v
	return nil
}

// ParseError reports an unparseable date string.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string { return "unparseable date " + strconv.Quote(e.Input) }

// Parse interprets s as DD-MM-YYYY first, then as one of the common textual
// layouts. A DD-MM-YYYY shaped string that is not a real calendar day is
// rejected outright.
func Parse(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}

	if m := dmyRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return Date{}, false
		}
		d := New(year, time.Month(month), day)
		if d.y != year || int(d.m) != month || d.d != day {
			return Date{}, false
		}
		return d, true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), true
		}
	}
	return Date{}, false
}
