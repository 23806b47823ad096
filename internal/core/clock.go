package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// parseClock reads HH:MM (an optional :SS is ignored) into minutes since
// midnight.
func parseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return 0, false
		}
		vals[i] = v
	}
	if vals[0] > 23 || vals[1] > 59 || (len(vals) == 3 && vals[2] > 59) {
		return 0, false
	}
	return vals[0]*60 + vals[1], true
}

// To12Hour renders a 24-hour HH:MM time as "H:MM AM/PM". Blank input gives
// "" and anything unparsable is returned unchanged.
func To12Hour(t string) string {
	if strings.TrimSpace(t) == "" {
		return ""
	}
	mins, ok := parseClock(t)
	if !ok {
		return t
	}
	h, m := mins/60, mins%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

// SleepDuration returns the hours slept between sleep and rise, to one
// decimal. A rise at or before the sleep time falls on the next day, so
// equal times are a full 24 hours. Missing or malformed times give 0.
func SleepDuration(sleep, rise string) float64 {
	if strings.TrimSpace(sleep) == "" || strings.TrimSpace(rise) == "" {
		return 0
	}
	s, ok := parseClock(sleep)
	if !ok {
		return 0
	}
	r, ok := parseClock(rise)
	if !ok {
		return 0
	}
	if r <= s {
		r += minutesPerDay
	}
	return round1(float64(r-s) / 60)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
