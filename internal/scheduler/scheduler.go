// Package scheduler computes upcoming gift and flower occasions and the
// reminders they trigger.
//
// Every function takes "today" explicitly. The Scheduler facade is the only
// place that reads a Clock, once per evaluation, so a whole Plan is computed
// against a single date.
package scheduler

import (
	"cmp"
	"slices"
	"time"
)

// Scheduler bundles the injected capabilities of an evaluation.
type Scheduler struct {
	Clock    Clock
	Rand     RandomSource
	Phraser  Phraser
	Location *time.Location // zone "today" is taken in; nil keeps the clock's
}

// Plan is the result of one evaluation.
type Plan struct {
	Today     time.Time
	Occasions []OccasionInstance // flower and gift occasions, sorted
	Reminders []Reminder         // sorted by trigger date
	Skipped   []Skipped
}

// New returns a Scheduler with production defaults.
func New() *Scheduler {
	return &Scheduler{
		Clock:   RealClock{},
		Rand:    NewRandomSource(0),
		Phraser: EnglishPhraser{},
	}
}

// Today returns the current date at midnight in the configured location.
func (s *Scheduler) Today() time.Time {
	now := s.Clock.Now()
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return Midnight(now)
}

// Plan evaluates every person against today. One person's bad data never
// prevents the others from being planned.
func (s *Scheduler) Plan(people []Person) Plan {
	return s.PlanAt(people, s.Today())
}

// PlanAt evaluates every person against an explicit date.
func (s *Scheduler) PlanAt(people []Person, today time.Time) Plan {
	today = Midnight(today)
	ph := s.Phraser
	if ph == nil {
		ph = EnglishPhraser{}
	}

	plan := Plan{Today: today}
	for _, p := range people {
		flowers, sk := EnumerateOccasions(p, today, s.Rand)
		plan.Skipped = append(plan.Skipped, sk...)

		gifts, sk := GiftOccasions(p, today)
		plan.Skipped = append(plan.Skipped, sk...)

		plan.Occasions = append(plan.Occasions, flowers...)
		plan.Occasions = append(plan.Occasions, gifts...)
		plan.Reminders = append(plan.Reminders, ExpandAll(flowers, ReminderFlowers, today, ph)...)
		plan.Reminders = append(plan.Reminders, ExpandAll(gifts, ReminderGift, today, ph)...)
	}

	SortOccasions(plan.Occasions)
	SortReminders(plan.Reminders)
	return plan
}

// Due returns the reminders whose trigger date is exactly today.
func (p Plan) Due() []Reminder {
	var out []Reminder
	for _, r := range p.Reminders {
		if DaysUntil(r.Date, p.Today) == 0 {
			out = append(out, r)
		}
	}
	return out
}

// Upcoming returns the occasions within horizon days of today, inclusive.
func (p Plan) Upcoming(horizon int) []OccasionInstance {
	var out []OccasionInstance
	for _, o := range p.Occasions {
		if o.DaysUntil >= 0 && o.DaysUntil <= horizon {
			out = append(out, o)
		}
	}
	return out
}

// SortReminders orders by trigger date, then person, then occasion date, then
// ID for a total order.
func SortReminders(rs []Reminder) {
	slices.SortStableFunc(rs, func(a, b Reminder) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.PersonID, b.PersonID); c != 0 {
			return c
		}
		if c := a.OccasionDate.Compare(b.OccasionDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
