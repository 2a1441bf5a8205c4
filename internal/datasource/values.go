package datasource

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// missing cell markers, compared lower-cased
var naValues = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"-":    true,
}

// IsMissing reports whether a cell holds no value
func IsMissing(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return naValues[strings.ToLower(strings.TrimSpace(val))]
	case []byte:
		return naValues[strings.ToLower(strings.TrimSpace(string(val)))]
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	default:
		return false
	}
}

// ToFloat64 converts a cell to float64.
// Supports Go numeric types and numeric strings; booleans are not numbers.
func ToFloat64(v interface{}) (float64, bool) {
	if IsMissing(v) {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case []byte:
		return parseFloatString(string(val))
	case string:
		return parseFloatString(val)
	default:
		return 0, false
	}
}

func parseFloatString(s string) (float64, bool) {
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToTime converts a cell to a timestamp. Strings without a zone are read in loc.
// Plain numbers are rejected so that numeric columns never look like dates.
func ToTime(v interface{}, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if IsMissing(v) {
		return time.Time{}, fmt.Errorf("missing date")
	}

	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, fmt.Errorf("zero date")
		}
		return val, nil
	case []byte:
		return parseTimeString(string(val), loc)
	case string:
		return parseTimeString(val, loc)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value of type %T", v)
	}
}

func parseTimeString(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if _, isNumber := parseFloatString(s); isNumber {
		return time.Time{}, fmt.Errorf("numeric value %q is not a date", s)
	}
	t, err := cast.ToTimeInDefaultLocationE(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
