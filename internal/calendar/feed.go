package calendar

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"github.com/tartampluch/go-giftminder/internal/config"
)

// ErrEventNotFound is returned when removing an unknown UID.
var ErrEventNotFound = errors.New(config.ErrEventNotFound)

// Clock abstracts time.Now() for DTSTAMP.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Feed is an in-memory Sync that renders its events as a VCALENDAR.
// It is safe for concurrent use.
type Feed struct {
	Clock Clock

	mu     sync.RWMutex
	events map[string]Event
}

var _ Sync = (*Feed)(nil)

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{Clock: systemClock{}, events: make(map[string]Event)}
}

// AddEvent stores ev and returns its UID.
func (f *Feed) AddEvent(ctx context.Context, ev Event) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCalendarAdd, err)
	}
	id := fmt.Sprintf(config.FormatUID, uuid.NewString(), config.ICalDomain)
	ev.LeadMinutes = slices.Clone(ev.LeadMinutes)
	ev.Categories = slices.Clone(ev.Categories)

	f.mu.Lock()
	f.events[id] = ev
	f.mu.Unlock()

	slog.Debug(config.MsgEventAdded,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyHandle, id,
		config.LogKeyTitle, ev.Title,
	)
	return id, nil
}

// RemoveEvent deletes the event with the given UID.
func (f *Feed) RemoveEvent(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCalendarRemove, err)
	}

	f.mu.Lock()
	_, ok := f.events[id]
	delete(f.events, id)
	f.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", config.ErrCalendarRemove, ErrEventNotFound)
	}
	slog.Debug(config.MsgEventRemoved,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyHandle, id,
	)
	return nil
}

// Len returns the number of stored events.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.events)
}

// Encode renders the feed. Events are ordered by date, then UID, so the
// output only changes when the events do (DTSTAMP aside).
func (f *Feed) Encode() ([]byte, error) {
	f.mu.RLock()
	events := maps.Clone(f.events)
	f.mu.RUnlock()
	ids := slices.Collect(maps.Keys(events))

	if len(ids) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	slices.SortFunc(ids, func(a, b string) int {
		if c := events[a].Date.Compare(events[b].Date); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)

	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(f.Clock.Now().UTC())

	for _, id := range ids {
		cal.Children = append(cal.Children, vevent(id, events[id], stamp).Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedRendered,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyEvents, len(ids),
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}

func vevent(id string, ev Event, stamp *ical.Prop) *ical.Event {
	e := ical.NewEvent()
	e.Props.SetText(config.PropUID, id)
	e.Props.SetText(config.PropSummary, ev.Title)
	if ev.Description != "" {
		e.Props.SetText(config.PropDescription, ev.Description)
	}
	e.Props.Set(stamp)

	start := ical.NewProp(config.PropDTStart)
	start.SetDate(ev.Date)
	e.Props.Set(start)

	if ev.Recurring {
		// Set manually to avoid a VALUE=TEXT parameter.
		rule := ical.NewProp(config.PropRRule)
		rule.Value = YearlyRule(ev.Date)
		e.Props.Set(rule)
	}

	if len(ev.Categories) > 0 {
		cats := ical.NewProp(config.PropCategories)
		cats.Value = strings.Join(ev.Categories, config.CategorySep)
		e.Props.Set(cats)
	}

	for _, m := range ev.LeadMinutes {
		if m < 0 {
			continue
		}
		addAlarm(e, m, ev.Title)
	}
	return e
}

// YearlyRule returns the RRULE value that repeats date every year. Feb 29
// follows the last day of February, so leap-day occasions land on Feb 28 in
// common years.
func YearlyRule(date time.Time) string {
	day := date.Day()
	if date.Month() == time.February && day == 29 {
		day = -1
	}
	opt := rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{int(date.Month())},
		Bymonthday: []int{day},
	}
	return opt.RRuleString()
}

// addAlarm appends a DISPLAY alarm firing minutes before the event.
func addAlarm(event *ical.Event, minutes int, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set manually to avoid a VALUE=TEXT parameter.
	trigger := ical.NewProp(config.PropTrigger)
	trigger.Value = triggerValue(minutes)
	alarm.Props.Set(trigger)

	event.Children = append(event.Children, alarm)
}

// triggerValue renders a negative ISO 8601 duration, in days when whole.
func triggerValue(minutes int) string {
	switch {
	case minutes == 0:
		return "PT0S"
	case minutes%config.MinutesPerDay == 0:
		return "-P" + strconv.Itoa(minutes/config.MinutesPerDay) + "D"
	default:
		return "-PT" + strconv.Itoa(minutes) + "M"
	}
}
