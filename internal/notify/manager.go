package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tartampluch/go-giftminder/internal/calendar"
	"github.com/tartampluch/go-giftminder/internal/config"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
)

const monthKey = "2006-01"

// ErrReminderNotFound is returned by MarkRead for an unknown reminder ID.
var ErrReminderNotFound = errors.New(config.ErrReminderNotFound)

// Result counts what one Sync changed.
type Result struct {
	Scheduled int // newly activated reminders
	Cancelled int // reminders dropped from the plan
	Kept      int // active reminders carried over
}

// Manager reconciles planned reminders with the dispatcher and the calendar.
// Reminder IDs are stable for a given occasion, so a reminder seen again on
// the next cycle keeps its handles and read flag instead of being
// re-scheduled.
//
// Surprise dates are redrawn by every evaluation. The first draw seen for a
// person in a month is pinned and replaces later draws of that month. A pin
// is released as soon as a plan carries no surprise for the person, and it
// never holds more dates than the plan currently draws.
type Manager struct {
	Dispatcher Dispatcher    // nil disables push notifications
	Calendar   calendar.Sync // nil disables calendar mirroring
	Phraser    scheduler.Phraser
	Push       bool
	Mirror     bool

	mu        sync.Mutex
	active    map[string]scheduler.Reminder
	surprises map[string]pinnedDraw // person ID -> draw of the month
}

type pinnedDraw struct {
	month     string
	occasions []scheduler.OccasionInstance
}

// NewManager returns a Manager with push and calendar mirroring enabled.
func NewManager(d Dispatcher, cal calendar.Sync, ph scheduler.Phraser) *Manager {
	if ph == nil {
		ph = scheduler.EnglishPhraser{}
	}
	return &Manager{
		Dispatcher: d,
		Calendar:   cal,
		Phraser:    ph,
		Push:       true,
		Mirror:     true,
		active:     make(map[string]scheduler.Reminder),
		surprises:  make(map[string]pinnedDraw),
	}
}

// Pin replaces the surprise occasions of plan with the draws pinned for the
// plan's month and returns the result. Reminders of the replaced occasions
// are expanded again. Calling Pin on its own result is a no-op.
func (m *Manager) Pin(plan scheduler.Plan) scheduler.Plan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pin(plan)
}

func (m *Manager) pin(plan scheduler.Plan) scheduler.Plan {
	month := plan.Today.Format(monthKey)

	drawn := make(map[string][]scheduler.OccasionInstance)
	var occasions []scheduler.OccasionInstance
	for _, o := range plan.Occasions {
		if o.Kind == scheduler.KindSurprise {
			drawn[o.PersonID] = append(drawn[o.PersonID], o)
			continue
		}
		occasions = append(occasions, o)
	}

	for personID, p := range m.surprises {
		if p.month != month || len(drawn[personID]) == 0 {
			delete(m.surprises, personID)
		}
	}

	var pinned []scheduler.OccasionInstance
	for personID, draw := range drawn {
		p, ok := m.surprises[personID]
		if !ok {
			p = pinnedDraw{month: month, occasions: draw}
		}
		if len(p.occasions) > len(draw) {
			p.occasions = p.occasions[:len(draw)]
		}
		for i := range p.occasions {
			p.occasions[i].PersonName = draw[0].PersonName
			p.occasions[i].LeadDays = draw[0].LeadDays
			p.occasions[i].DaysUntil = scheduler.DaysUntil(p.occasions[i].Date, plan.Today)
		}
		m.surprises[personID] = p
		pinned = append(pinned, p.occasions...)
	}

	var reminders []scheduler.Reminder
	for _, r := range plan.Reminders {
		if r.OccasionKind != scheduler.KindSurprise {
			reminders = append(reminders, r)
		}
	}
	reminders = append(reminders, scheduler.ExpandAll(pinned, scheduler.ReminderFlowers, plan.Today, m.Phraser)...)

	plan.Occasions = append(occasions, pinned...)
	plan.Reminders = reminders
	scheduler.SortOccasions(plan.Occasions)
	scheduler.SortReminders(plan.Reminders)
	return plan
}

// Sync pins the surprise draws of plan, activates its reminders and cancels
// the ones that are no longer planned. A failing dispatcher or calendar call
// is logged and reported in the joined error; it never stops the other
// reminders.
func (m *Manager) Sync(ctx context.Context, plan scheduler.Plan) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	plan = m.pin(plan)
	desired := make(map[string]scheduler.Reminder, len(plan.Reminders))
	for _, r := range plan.Reminders {
		desired[r.ID] = r
	}

	var (
		res  Result
		errs []error
	)

	for id, r := range m.active {
		if _, ok := desired[id]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		slog.Debug(config.MsgReminderStale,
			config.LogKeyComponent, config.CompNotify,
			config.LogKeyReminderID, id,
		)
		errs = append(errs, m.deactivate(ctx, r, plan)...)
		delete(m.active, id)
		res.Cancelled++
	}

	for _, r := range plan.Reminders {
		if prev, ok := m.active[r.ID]; ok {
			r.NotificationID = prev.NotificationID
			r.CalendarEventID = prev.CalendarEventID
			r.IsRead = prev.IsRead
			m.active[r.ID] = r
			res.Kept++
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		errs = append(errs, m.activate(ctx, &r)...)
		m.active[r.ID] = r
		res.Scheduled++
	}

	slog.Info(config.MsgRemindersSynced,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyReminders, len(m.active),
		config.LogKeyCancelled, res.Cancelled,
		config.LogKeyCount, res.Scheduled,
	)
	return res, errors.Join(errs...)
}

func (m *Manager) activate(ctx context.Context, r *scheduler.Reminder) []error {
	var errs []error

	if m.Push && m.Dispatcher != nil && !r.IsRead {
		id, err := m.Dispatcher.Schedule(ctx, Notification{
			Title:       r.Title,
			Body:        r.Description,
			TriggerDate: r.Date,
			ReminderID:  r.ID,
		})
		if err != nil {
			errs = append(errs, m.logFailure(config.ErrNotifSchedule, r.ID, err))
		} else {
			r.NotificationID = id
		}
	}

	if m.Mirror && m.Calendar != nil && r.SameDay() {
		id, err := m.Calendar.AddEvent(ctx, m.event(*r))
		if err != nil {
			errs = append(errs, m.logFailure(config.ErrCalendarAdd, r.ID, err))
		} else {
			r.CalendarEventID = id
		}
	}
	return errs
}

// deactivate releases the handles of a reminder. A notification whose
// trigger date has passed was already delivered and is not cancelled.
func (m *Manager) deactivate(ctx context.Context, r scheduler.Reminder, plan scheduler.Plan) []error {
	var errs []error

	if r.NotificationID != "" && m.Dispatcher != nil && !r.Date.Before(plan.Today) {
		if err := m.Dispatcher.Cancel(ctx, r.NotificationID); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, m.logFailure(config.ErrNotifCancel, r.ID, err))
		}
	}
	if r.CalendarEventID != "" && m.Calendar != nil {
		if err := m.Calendar.RemoveEvent(ctx, r.CalendarEventID); err != nil && !errors.Is(err, calendar.ErrEventNotFound) {
			errs = append(errs, m.logFailure(config.ErrCalendarRemove, r.ID, err))
		}
	}
	return errs
}

// event builds the calendar entry mirroring the occasion of a same-day
// reminder. Gift events alarm at the occasion's lead days; flower events at
// fixed short lead times.
func (m *Manager) event(r scheduler.Reminder) calendar.Event {
	occ := scheduler.OccasionInstance{
		PersonID:   r.PersonID,
		PersonName: r.PersonName,
		Kind:       r.OccasionKind,
		Label:      r.OccasionLabel,
		Date:       r.OccasionDate,
		SourceID:   r.SourceID,
		LeadDays:   r.OccasionLeadDays,
	}
	ev := calendar.Event{
		Title:       m.Phraser.EventTitle(occ),
		Description: r.Description,
		Date:        r.OccasionDate,
		Recurring:   r.OccasionKind.Recurring(),
		Categories:  []string{string(r.Type), string(r.OccasionKind)},
	}
	if r.Type == scheduler.ReminderFlowers {
		ev.LeadMinutes = config.FlowerAlarmMinutes
		return ev
	}
	for _, d := range r.OccasionLeadDays {
		ev.LeadMinutes = append(ev.LeadMinutes, d*config.MinutesPerDay)
	}
	return ev
}

func (m *Manager) logFailure(msg, reminderID string, err error) error {
	slog.Warn(msg,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyReminderID, reminderID,
		config.LogKeyError, err,
	)
	return fmt.Errorf("%s: %w", msg, err)
}

// MarkRead flags an active reminder as seen. A read reminder stays read
// across cycles and is not re-notified.
func (m *Manager) MarkRead(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.active[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrReminderNotFound, id)
	}
	r.MarkRead()
	m.active[id] = r

	slog.Debug(config.MsgReminderRead,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyReminderID, id,
	)
	return nil
}

// Reminders returns a sorted snapshot of the active reminders.
func (m *Manager) Reminders() []scheduler.Reminder {
	m.mu.Lock()
	out := make([]scheduler.Reminder, 0, len(m.active))
	for _, r := range m.active {
		out = append(out, r)
	}
	m.mu.Unlock()

	scheduler.SortReminders(out)
	return out
}
