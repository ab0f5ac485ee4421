package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of the wall clock in minutes.
const MinutesPerDay = 24 * 60

// TimeRange is an inclusive wall-clock window "HH:MM"-"HH:MM".
// Start > End means the window wraps through midnight.
type TimeRange struct {
	Start string
	End   string
}

// Minutes returns the window bounds in minutes since midnight.
func (r TimeRange) Minutes() (start, end int, err error) {
	start, err = TimeToMinutes(r.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("time range start: %w", err)
	}
	end, err = TimeToMinutes(r.End)
	if err != nil {
		return 0, 0, fmt.Errorf("time range end: %w", err)
	}
	return start, end, nil
}

// TimeToMinutes parses "HH:MM" into minutes since 00:00.
// Hours above 23 are accepted so that formatted values round-trip.
func TimeToMinutes(t string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(t), ":")
	if !ok {
		return 0, fmt.Errorf("parse time %q: expected HH:MM", t)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 {
		return 0, fmt.Errorf("parse time %q: invalid hour", t)
	}

	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse time %q: invalid minute", t)
	}

	return h*60 + m, nil
}

// MinutesToTime formats minutes as zero-padded "HH:MM".
// The hour is not reduced modulo 24.
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ClockMinutes reduces m to minutes since midnight on the 24h clock.
func ClockMinutes(m int) int {
	return ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
}

// ClockTime formats minutes on the 24h clock, wrapping values past midnight.
func ClockTime(m int) string {
	return MinutesToTime(ClockMinutes(m))
}

func AddMinutes(t string, d int) (string, error) {
	m, err := TimeToMinutes(t)
	if err != nil {
		return "", err
	}
	return MinutesToTime(m + d), nil
}

// InRange reports whether t lies in the closed interval r, honoring midnight wrap.
func InRange(t string, r TimeRange) (bool, error) {
	tm, err := TimeToMinutes(t)
	if err != nil {
		return false, err
	}
	start, end, err := r.Minutes()
	if err != nil {
		return false, err
	}

	if start > end {
		return tm >= start || tm <= end, nil
	}
	return tm >= start && tm <= end, nil
}
