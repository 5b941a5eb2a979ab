package series

import (
	"fmt"
	"strings"
	"time"
)

// LiveCap is the number of readings shown by a live chart.
const LiveCap = 10

// LastN returns the k most recent readings of s keeping their order.
func LastN(s Series, k int) Series {
	if k < 0 {
		k = 0
	}
	start := max(len(s)-k, 0)
	return append(Series(nil), s[start:]...)
}

// Selection picks between the live window and a single minute bucket.
type Selection struct {
	Live   bool
	Minute string // HH:MM, used when Live is false
}

// SelectWindow returns the last LiveCap readings in live mode, or every
// reading whose timestamp falls inside the requested minute.
func SelectWindow(s Series, sel Selection) Series {
	if sel.Live {
		return LastN(s, LiveCap)
	}
	out := Series{}
	for _, r := range s {
		if MinuteOf(r.Timestamp) == sel.Minute {
			out = append(out, r)
		}
	}
	return out
}

// timestampLayouts are the formats readings arrive in: the API's display
// format, the storage format and ISO 8601.
var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// ParseTimestamp parses a reading timestamp in any of the accepted layouts.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// MinuteOf returns the HH:MM bucket of a timestamp, or "" when it does not parse.
func MinuteOf(ts string) string {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return ""
	}
	return t.Format("15:04")
}

// ParseMinute validates a minute filter. It accepts HH:MM or a full
// datetime-local value (YYYY-MM-DDTHH:MM) and returns HH:MM.
func ParseMinute(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04"), nil
	}
	if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return t.Format("15:04"), nil
	}
	return "", fmt.Errorf("invalid minute %q (expected HH:MM)", s)
}
