package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultDateLayout renders dates the way an en-US browser's
// toLocaleDateString does, e.g. "2/27/2026".
const DefaultDateLayout = "1/2/2006"

// PadTime left-pads a one-digit hour or minute with a zero ("9" -> "09").
func PadTime(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		return v
	}
	return strings.Repeat("0", 2-len(v)) + v
}

// FormatClock joins an hour and a minute into a zero-padded "HH:MM".
func FormatClock(hour, minute string) string {
	return PadTime(hour) + ":" + PadTime(minute)
}

// ParseClock validates an "H:MM" or "HH:MM" 24h time and returns it zero
// padded. Hours 0-23 and minutes 0-59 are accepted.
func ParseClock(s string) (string, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return "", fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || len(m) != 2 {
		return "", fmt.Errorf("invalid minute in %q", s)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// SplitClock returns the hour and minute parts of an "HH:MM" string. Missing
// parts come back as "00".
func SplitClock(s string) (string, string) {
	h, m, _ := strings.Cut(s, ":")
	if h == "" {
		h = "00"
	}
	if m == "" {
		m = "00"
	}
	return PadTime(h), PadTime(m)
}

// FormatDate formats the calendar date of t with layout, falling back to
// DefaultDateLayout when layout is empty.
func FormatDate(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return t.Format(layout)
}
