package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock parses an "HH:MM" string into minutes since midnight.
// The hour is not range-checked so windows may run past 24:00.
func ParseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hours*60 + minutes, nil
}

// TimeToMinutes converts "HH:MM" to a minute offset. Inputs are validated at
// the request boundary; malformed values count as 0.
func TimeToMinutes(value string) int {
	minutes, err := ParseClock(value)
	if err != nil {
		return 0
	}
	return minutes
}

// AddHours increments the hour of an "HH:MM" string and keeps the minutes.
// There is no day rollover.
func AddHours(value string, hours int) string {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m := 0
	if len(parts) == 2 {
		m, _ = strconv.Atoi(parts[1])
	}
	return fmt.Sprintf("%02d:%02d", h+hours, m)
}

// TimeOverlaps reports whether [start1, end1) and [start2, end2) intersect.
// Intervals that only touch at an endpoint do not overlap.
func TimeOverlaps(start1, end1, start2, end2 string) bool {
	s1, e1 := TimeToMinutes(start1), TimeToMinutes(end1)
	s2, e2 := TimeToMinutes(start2), TimeToMinutes(end2)
	return s1 < e2 && s2 < e1
}
