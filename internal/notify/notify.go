// Package notify activates reminders: it hands them to a notification
// dispatcher, mirrors occasions into a calendar and keeps the returned
// handles across evaluation cycles.
package notify

import (
	"context"
	"time"
)

// Notification is a single push notification request.
type Notification struct {
	Title       string
	Body        string
	TriggerDate time.Time
	ReminderID  string
}

// Dispatcher schedules notifications for a future date and returns an opaque
// handle that Cancel accepts.
type Dispatcher interface {
	Schedule(ctx context.Context, n Notification) (string, error)
	Cancel(ctx context.Context, id string) error
}
