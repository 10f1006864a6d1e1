package notify

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-giftminder/internal/config"
)

// ErrNotFound is returned when cancelling an unknown handle.
var ErrNotFound = errors.New(config.ErrNotifNotFound)

// LocalDispatcher is an in-process Dispatcher. Notifications wait in memory
// until Deliver is called on or after their trigger date; delivery writes a
// structured log record. It is safe for concurrent use.
type LocalDispatcher struct {
	mu      sync.Mutex
	pending map[string]Notification
}

var _ Dispatcher = (*LocalDispatcher)(nil)

// NewLocalDispatcher returns an empty dispatcher.
func NewLocalDispatcher() *LocalDispatcher {
	return &LocalDispatcher{pending: make(map[string]Notification)}
}

// Schedule queues n and returns its handle.
func (d *LocalDispatcher) Schedule(ctx context.Context, n Notification) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrNotifSchedule, err)
	}
	id := uuid.NewString()

	d.mu.Lock()
	d.pending[id] = n
	d.mu.Unlock()

	slog.Debug(config.MsgNotifScheduled,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyHandle, id,
		config.LogKeyReminderID, n.ReminderID,
		config.LogKeyDate, n.TriggerDate.Format(config.DateFormatFullDash),
	)
	return id, nil
}

// Cancel drops a queued notification.
func (d *LocalDispatcher) Cancel(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrNotifCancel, err)
	}

	d.mu.Lock()
	_, ok := d.pending[id]
	delete(d.pending, id)
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", config.ErrNotifCancel, ErrNotFound)
	}
	slog.Debug(config.MsgNotifCancelled,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyHandle, id,
	)
	return nil
}

// Pending returns the number of queued notifications.
func (d *LocalDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Deliver fires and removes every notification whose trigger date is on or
// before now, in trigger order.
func (d *LocalDispatcher) Deliver(now time.Time) []Notification {
	d.mu.Lock()
	var due []Notification
	for id, n := range d.pending {
		if !n.TriggerDate.After(now) {
			due = append(due, n)
			delete(d.pending, id)
		}
	}
	d.mu.Unlock()

	slices.SortFunc(due, func(a, b Notification) int {
		if c := a.TriggerDate.Compare(b.TriggerDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ReminderID, b.ReminderID)
	})

	for _, n := range due {
		slog.Info(config.MsgNotifDelivered,
			config.LogKeyComponent, config.CompNotify,
			config.LogKeyReminderID, n.ReminderID,
			config.LogKeyTitle, n.Title,
			config.LogKeyBody, n.Body,
		)
	}
	return due
}
