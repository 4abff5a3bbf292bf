package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical text form of a Date value.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Normalize converts a driver-provided value into the Go type used for kind.
// nil stays nil. Values that cannot be represented in kind produce an error so
// that type drift surfaces at read time rather than as a bad write later.
func Normalize(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch kind {
	case Int:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int16:
			return int64(n), nil
		case int8:
			return int64(n), nil
		case uint8:
			return int64(n), nil
		case uint16:
			return int64(n), nil
		case uint32:
			return int64(n), nil
		case uint64:
			return int64(n), nil
		case float64:
			return wholeInt(n)
		case float32:
			return wholeInt(float64(n))
		case bool:
			if n {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("table: %q is not an int", n)
			}
			return i, nil
		}

	case Float:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int32:
			return float64(n), nil
		case int16:
			return float64(n), nil
		case int8:
			return float64(n), nil
		case uint8:
			return float64(n), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, fmt.Errorf("table: %q is not a float", n)
			}
			return f, nil
		}

	case Bool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		case string:
			p, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return nil, fmt.Errorf("table: %q is not a bool", b)
			}
			return p, nil
		}

	case Date:
		switch d := v.(type) {
		case time.Time:
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
		case string:
			t, err := parseTime(d)
			if err != nil {
				return nil, err
			}
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}

	case Timestamp:
		switch d := v.(type) {
		case time.Time:
			return d, nil
		case string:
			return parseTime(d)
		}

	case String:
		switch s := v.(type) {
		case string:
			return s, nil
		case time.Time:
			return s.Format(time.RFC3339Nano), nil
		default:
			return fmt.Sprint(s), nil
		}
	}

	return nil, fmt.Errorf("table: cannot use %T as %s", v, kind)
}

// wholeInt rejects fractional values; an INTEGER column under SQLite affinity
// can still hold 2.5.
func wholeInt(f float64) (any, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("table: %v is not an int", f)
	}
	return int64(f), nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("table: %q is not a date/time", s)
}

// KindOf reports the Kind a normalised Go value belongs to. It is used when a
// driver does not expose a column type.
func KindOf(v any) (Kind, bool) {
	switch v.(type) {
	case int64, int, int32, int16, int8:
		return Int, true
	case float64, float32:
		return Float, true
	case bool:
		return Bool, true
	case time.Time:
		return Timestamp, true
	case string, []byte:
		return String, true
	default:
		return String, false
	}
}
