package utils

import (
	"time"

	"go-musician-booking/core/constants"
)

// DateOnly truncates t to its calendar day at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(constants.DateLayout)
}

// ClockMinutes parses "HH:MM" into minutes after midnight.
func ClockMinutes(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// DurationMinutes returns the length of a start/end clock interval; an end at
// or before start wraps past midnight.
func DurationMinutes(start, end string) (int, bool) {
	s, ok := ClockMinutes(start)
	if !ok {
		return 0, false
	}
	e, ok := ClockMinutes(end)
	if !ok {
		return 0, false
	}
	if e <= s {
		e += 24 * 60
	}
	return e - s, true
}
