package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the inferred type of a CSV cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

var floatRe = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)

// Value is one cell: the raw text plus its inferred type.
type Value struct {
	Raw  string
	Kind Kind
	num  float64
}

// Infer types a raw cell the way the dashboard page expects: plain decimal
// numbers become numbers, true/false become booleans, everything else stays text.
func Infer(raw string) Value {
	v := Value{Raw: raw}
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		v.Kind = KindEmpty
	case floatRe.MatchString(raw):
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			v.Kind = KindString
			break
		}
		v.Kind = KindNumber
		v.num = f
	case strings.EqualFold(trimmed, "true"):
		v.Kind = KindBool
	case strings.EqualFold(trimmed, "false"):
		v.Kind = KindBool
	default:
		v.Kind = KindString
	}
	return v
}

// Float returns the numeric value when the cell holds a finite number.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) String() string { return v.Raw }
