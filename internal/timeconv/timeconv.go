// Package timeconv converts exchange epoch-millisecond timestamps into
// absolute times and renders them for display.
package timeconv

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxEpochMs bounds the representable calendar window (±100,000,000 days).
const maxEpochMs = 8.64e15

// ISOLayout is the canonical millisecond UTC layout, e.g.
// 2025-01-15T05:30:00.000Z.
const ISOLayout = "2006-01-02T15:04:05.000Z"

var jst = time.FixedZone("JST", 9*60*60)

// ToAbsoluteTime converts an epoch-millisecond value of loosely typed
// origin into a UTC time. The bool is false when the value is absent, not
// numeric, not finite or outside the calendar window; callers treat that
// as an unknown time.
func ToAbsoluteTime(raw any) (time.Time, bool) {
	ms, ok := toMillis(raw)
	if !ok || math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMs {
		return time.Time{}, false
	}
	ms = math.Trunc(ms)
	return time.UnixMilli(int64(ms)).UTC(), true
}

func toMillis(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case *int64:
		if v == nil {
			return 0, false
		}
		return float64(*v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case json.RawMessage:
		return fromRaw(v)
	case []byte:
		return fromRaw(v)
	case string:
		return parseString(v)
	default:
		return 0, false
	}
}

func fromRaw(b json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return 0, false
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	return parseString(s)
}

func parseString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// ISO renders t in ISOLayout.
func ISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ISOPtr converts raw and renders it, returning nil for an unknown time.
func ISOPtr(raw any) *string {
	t, ok := ToAbsoluteTime(raw)
	if !ok {
		return nil
	}
	s := ISO(t)
	return &s
}

// DisplayTime renders t as "2025/01/15 14:30:00 JST". A nil loc means
// Asia/Tokyo; time.UTC renders with a UTC suffix.
func DisplayTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = jst
	}
	suffix := "JST"
	if loc == time.UTC {
		suffix = "UTC"
	}
	return t.In(loc).Format("2006/01/02 15:04:05") + " " + suffix
}
