package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

var slotPattern = regexp.MustCompile(`^\s*(\d{1,2})\s*[:hH]\s*(\d{2})\s*$`)

// NormalizeSlot turns "19h30", "7:30" or "19:30" into the canonical "HH:MM".
func NormalizeSlot(raw string) (string, error) {
	m := slotPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("invalid time slot %q", raw)
	}
	h, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if h > 23 || minute > 59 {
		return "", fmt.Errorf("invalid time slot %q", raw)
	}
	return fmt.Sprintf("%02d:%02d", h, minute), nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return d, nil
}

// DateOnly drops the clock part of t, keeping its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
