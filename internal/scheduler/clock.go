package scheduler

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Scheduler reads it exactly once per evaluation to determine "today";
// nothing below the facade touches the wall clock.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Useful for dry runs ("what would
// fire on 2025-02-14?") and for tests.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
