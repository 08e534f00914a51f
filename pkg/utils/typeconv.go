package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 03:04:05 PM",
	"01/02/2006",
}

// ConvertDateTime converts a cell value to a timestamp. Strings are parsed
// with the known layouts, integers are nanoseconds since the Unix epoch.
// nil stays nil.
func ConvertDateTime(val any) (any, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return v, nil
	case string:
		return ParseTimestamp(v)
	case []byte:
		return ParseTimestamp(string(v))
	case int64:
		return time.Unix(0, v).UTC(), nil
	case int:
		return time.Unix(0, int64(v)).UTC(), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to timestamp", val)
	}
}

// ParseTimestamp parses s using the first matching layout. Values without
// a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse datetime: %q", s)
}

// ConvertToInt parses an integer cell.
func ConvertToInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v, err == nil
}

// ConvertToFloat parses a numeric cell.
func ConvertToFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

// ConvertToBool accepts true/false in any case.
func ConvertToBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
