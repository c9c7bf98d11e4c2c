package utils

import (
	"strings"
	"time"
)

// timeLayouts are the textual timestamp formats found in rows written by
// SQLite's CURRENT_TIMESTAMP, the go-sqlite3 driver and JSON clients.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToTime converts a raw column value into a UTC time.
// The boolean is false when the value is missing or cannot be parsed.
// Naive textual timestamps are interpreted as UTC.
func ToTime(val any) (time.Time, bool) {
	switch v := val.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.UTC(), true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return ToTime(*v)
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	case int64:
		return fromUnix(v), true
	case float64:
		return fromUnix(int64(v)), true
	default:
		return time.Time{}, false
	}
}

// millisThreshold separates epoch seconds from epoch milliseconds: 1e12 seconds
// is past year 33000, while 1e12 milliseconds is September 2001.
const millisThreshold = 1_000_000_000_000

// fromUnix reads an epoch number stored by a legacy client, in seconds or in
// milliseconds (JavaScript Date.now()).
func fromUnix(v int64) time.Time {
	if v >= millisThreshold || v <= -millisThreshold {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
