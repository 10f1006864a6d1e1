// Package calendar mirrors occasions into an iCalendar feed.
package calendar

import (
	"context"
	"time"
)

// Event is a calendar entry for one occasion.
type Event struct {
	Title       string
	Description string
	Date        time.Time // all-day; only the calendar date is used
	LeadMinutes []int     // one alarm per value, before Date
	Recurring   bool      // repeat yearly on the same month/day
	Categories  []string  // plain tokens without commas
}

// Sync is the calendar collaborator: it creates events and returns an
// opaque handle that RemoveEvent accepts.
type Sync interface {
	AddEvent(ctx context.Context, ev Event) (string, error)
	RemoveEvent(ctx context.Context, id string) error
}
