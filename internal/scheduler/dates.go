package scheduler

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDateComponents is returned when a month/day pair cannot exist
	// in any year (e.g. April 31st, day 32, month 13).
	ErrInvalidDateComponents = errors.New("invalid date components")

	// ErrInsufficientRange is returned when more unique days are requested
	// than the range holds.
	ErrInsufficientRange = errors.New("insufficient range for unique draw")
)

// leapReferenceYear is used to validate month/day pairs: every real calendar
// day, Feb 29 included, exists in it.
const leapReferenceYear = 2000

// Midnight truncates t to the start of its calendar day in t's own location.
// time.Truncate is not used because it operates on absolute time and would
// yield UTC midnight instead of local midnight.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsLeapYear reports whether year has a February 29th.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidateMonthDay checks that (month, day) names a real calendar day in at
// least one year.
func ValidateMonthDay(month time.Month, day int) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidDateComponents, int(month))
	}
	if day < 1 || day > DaysIn(leapReferenceYear, month) {
		return fmt.Errorf("%w: day %d of %s", ErrInvalidDateComponents, day, month)
	}
	return nil
}

// dateIn builds month/day in year, clamping Feb 29 to Feb 28 when year is not
// a leap year. time.Date would otherwise roll it over to March 1st.
func dateIn(year int, month time.Month, day int, loc *time.Location) time.Time {
	if month == time.February && day == 29 && !IsLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// NextOccurrence returns the first date on or after today that falls on
// (month, day). The result is at midnight in today's location.
//
// Feb 29 resolves to Feb 28 in non-leap years and back to Feb 29 when the
// candidate year is a leap year.
func NextOccurrence(month time.Month, day int, today time.Time) (time.Time, error) {
	if err := ValidateMonthDay(month, day); err != nil {
		return time.Time{}, err
	}

	todayStart := Midnight(today)
	candidate := dateIn(todayStart.Year(), month, day, todayStart.Location())
	if candidate.Before(todayStart) {
		candidate = dateIn(todayStart.Year()+1, month, day, todayStart.Location())
	}
	return candidate, nil
}

// DaysUntil returns the number of whole days from today to target. Both are
// reduced to their calendar dates first, so the time of day and DST
// transitions never shift the count: 0 means today, negative means past.
func DaysUntil(target, today time.Time) int {
	ty, tm, td := target.Date()
	ny, nm, nd := today.Date()
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// AddDays shifts a midnight date by n calendar days, keeping it at midnight.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}
