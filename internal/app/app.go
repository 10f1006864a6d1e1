// Package app wires one evaluation cycle: load people, plan occasions,
// activate reminders, publish the feed.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-giftminder/internal/calendar"
	"github.com/tartampluch/go-giftminder/internal/config"
	"github.com/tartampluch/go-giftminder/internal/notify"
	"github.com/tartampluch/go-giftminder/internal/people"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
)

// Publisher receives the rendered documents after each cycle.
type Publisher interface {
	UpdateCalendar(data []byte)
	UpdateUpcoming(data []byte)
}

// labeler is implemented by phrasers that localize occasion labels.
type labeler interface {
	Label(occ scheduler.OccasionInstance) string
}

// App holds the long-lived collaborators of the daemon.
type App struct {
	Source     people.Source
	Scheduler  *scheduler.Scheduler
	Manager    *notify.Manager
	Feed       *calendar.Feed
	Dispatcher *notify.LocalDispatcher
	Publisher  Publisher // nil skips publishing
	Horizon    int       // days covered by the upcoming snapshot

	mu   sync.Mutex
	last *scheduler.Plan
}

// Evaluate runs one full cycle. Cycles never overlap. A failure to load
// people aborts the cycle and leaves the previous plan in place; per
// reminder activation failures are logged and do not.
func (a *App) Evaluate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	slog.Info(config.MsgSyncStarted, config.LogKeyComponent, config.CompApp)
	start := time.Now()

	persons, err := a.Source.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSyncFailed, err)
	}
	slog.Debug(config.MsgPeopleLoaded,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyPeople, len(persons),
	)

	plan := a.Scheduler.Plan(persons)
	if a.Manager != nil {
		// Publish the surprise dates that are actually scheduled.
		plan = a.Manager.Pin(plan)
	}
	for _, sk := range plan.Skipped {
		slog.Warn(config.MsgSkippedOccasion,
			config.LogKeyComponent, config.CompApp,
			config.LogKeyPersonID, sk.PersonID,
			config.LogKeyKind, sk.Kind,
			config.LogKeyValue, sk.SourceID,
			config.LogKeyError, sk.Err,
		)
	}
	slog.Info(config.MsgPlanReady,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyToday, plan.Today.Format(config.DateFormatFullDash),
		config.LogKeyOccasions, len(plan.Occasions),
		config.LogKeyReminders, len(plan.Reminders),
		config.LogKeyDue, len(plan.Due()),
		config.LogKeySkipped, len(plan.Skipped),
	)

	if a.Manager != nil {
		if _, err := a.Manager.Sync(ctx, plan); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%s: %w", config.ErrSyncFailed, err)
			}
			slog.Warn(config.MsgSyncPartial,
				config.LogKeyComponent, config.CompApp,
				config.LogKeyError, err,
			)
		}
	}
	a.last = &plan

	if err := a.publish(plan); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSyncFailed, err)
	}

	slog.Info(config.MsgSyncSuccess,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return nil
}

// Deliver fires the notifications whose trigger date has arrived.
func (a *App) Deliver(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Dispatcher == nil {
		return nil
	}
	due := a.Dispatcher.Deliver(a.Scheduler.Clock.Now())
	slog.Debug(config.MsgDeliverReq,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyCount, len(due),
	)
	return nil
}

// LastPlan returns the plan of the last successful cycle.
func (a *App) LastPlan() (scheduler.Plan, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return scheduler.Plan{}, false
	}
	return *a.last, true
}

func (a *App) publish(plan scheduler.Plan) error {
	if a.Publisher == nil {
		return nil
	}

	if a.Feed != nil {
		ics, err := a.Feed.Encode()
		if err != nil {
			return err
		}
		a.Publisher.UpdateCalendar(ics)
	}

	snap, err := a.snapshot(plan)
	if err != nil {
		return err
	}
	a.Publisher.UpdateUpcoming(snap)
	return nil
}

// Snapshot is the JSON document served at /upcoming.
type Snapshot struct {
	Today     string         `json:"today"`
	Horizon   int            `json:"horizon_days"`
	Occasions []OccasionView `json:"occasions"`
	Due       []ReminderView `json:"due"`
}

// OccasionView is one upcoming occasion.
type OccasionView struct {
	PersonID   string `json:"person_id"`
	PersonName string `json:"person_name"`
	Kind       string `json:"kind"`
	Label      string `json:"label"`
	Date       string `json:"date"`
	DaysUntil  int    `json:"days_until"`
}

// ReminderView is one reminder triggering today.
type ReminderView struct {
	ID          string `json:"id"`
	PersonName  string `json:"person_name"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsRead      bool   `json:"is_read"`
}

func (a *App) snapshot(plan scheduler.Plan) ([]byte, error) {
	horizon := a.Horizon
	if horizon <= 0 {
		horizon = config.DefaultUpcomingHorizonDays
	}

	snap := Snapshot{
		Today:     plan.Today.Format(config.DateFormatFullDash),
		Horizon:   horizon,
		Occasions: []OccasionView{},
		Due:       []ReminderView{},
	}

	lb, _ := a.Scheduler.Phraser.(labeler)
	for _, o := range plan.Upcoming(horizon) {
		label := o.Label
		if lb != nil {
			label = lb.Label(o)
		}
		snap.Occasions = append(snap.Occasions, OccasionView{
			PersonID:   o.PersonID,
			PersonName: o.PersonName,
			Kind:       string(o.Kind),
			Label:      label,
			Date:       o.Date.Format(config.DateFormatFullDash),
			DaysUntil:  o.DaysUntil,
		})
	}

	// Prefer the manager's view so read flags are reported.
	reminders := plan.Reminders
	if a.Manager != nil {
		reminders = a.Manager.Reminders()
	}
	for _, r := range reminders {
		if scheduler.DaysUntil(r.Date, plan.Today) != 0 {
			continue
		}
		snap.Due = append(snap.Due, ReminderView{
			ID:          r.ID,
			PersonName:  r.PersonName,
			Type:        string(r.Type),
			Title:       r.Title,
			Description: r.Description,
			IsRead:      r.IsRead,
		})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrJSONEncode, err)
	}
	return data, nil
}
