package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/errors"
)

var (
	timeOfDayPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// TimeToMinutes converts "HH:MM" to minutes after midnight.
// It does not validate its input; use ParseTimeOfDay at input boundaries.
func TimeToMinutes(t string) int {
	hh, mm, _ := strings.Cut(t, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return h*constants.MinutesPerHour + m
}

// ParseTimeOfDay validates and converts "HH:MM" (or "H:MM") to minutes after midnight.
func ParseTimeOfDay(t string) (int, error) {
	if !IsValidTime(t) {
		return 0, fmt.Errorf("%q: %w", t, errors.ErrInvalidTimeFormat)
	}
	return TimeToMinutes(t), nil
}

// IsValidTime reports whether t is a valid 24h time of day
func IsValidTime(t string) bool {
	return timeOfDayPattern.MatchString(t)
}

// MinutesToTime formats a minute offset as zero-padded "HH:MM".
// The hour is not wrapped, so 1500 formats as "25:00".
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/constants.MinutesPerHour, m%constants.MinutesPerHour)
}

// HourOf returns the hour component of a time of day
func HourOf(t string) int {
	return TimeToMinutes(t) / constants.MinutesPerHour
}

// NormalizeTime validates t and returns it in zero-padded form ("9:05" -> "09:05")
func NormalizeTime(t string) (string, error) {
	m, err := ParseTimeOfDay(strings.TrimSpace(t))
	if err != nil {
		return "", err
	}
	return MinutesToTime(m), nil
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("%q: %w", s, errors.ErrInvalidDateFormat)
	}
	d, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, errors.ErrInvalidDateFormat)
	}
	return d, nil
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form
func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// FormatDate formats t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// Today returns the date key for now in now's location
func Today(now time.Time) string {
	return FormatDate(now)
}

// AddDays shifts a date key by n days
func AddDays(date string, n int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(d.AddDate(0, 0, n)), nil
}

// DaysInMonth returns the number of days in the given month, using day zero of the next month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// CombineDateAndTime combines a date key and a time of day into a time.Time in loc
func CombineDateAndTime(date, timeOfDay string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	m, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), m/60, m%60, 0, 0, loc), nil
}
