package scheduler

import (
	"cmp"
	"slices"
	"time"
)

// Occasion labels.
const (
	LabelBirthday    = "Birthday"
	LabelAnniversary = "Anniversary"
	LabelWomensDay   = "Women's Day"
	LabelValentines  = "Valentine's Day"
	LabelSurprise    = "Just Because"
	LabelEvent       = "Event" // custom date without a name
)

// fixedHoliday is a flower occasion pinned to a calendar day.
type fixedHoliday struct {
	kind    OccasionKind
	label   string
	month   time.Month
	day     int
	enabled func(*FlowerSchedule) bool
}

var fixedHolidays = []fixedHoliday{
	{KindWomensDay, LabelWomensDay, time.March, 8, func(s *FlowerSchedule) bool { return s.EnableWomensDay }},
	{KindValentines, LabelValentines, time.February, 14, func(s *FlowerSchedule) bool { return s.EnableValentinesDay }},
}

// dateDriven links a flower toggle to the ImportantDate type it reads.
type dateDriven struct {
	kind     OccasionKind
	label    string
	dateType DateType
	enabled  func(*FlowerSchedule) bool
}

var dateDrivenOccasions = []dateDriven{
	{KindBirthday, LabelBirthday, DateBirthday, func(s *FlowerSchedule) bool { return s.EnableBirthday }},
	{KindAnniversary, LabelAnniversary, DateAnniversary, func(s *FlowerSchedule) bool { return s.EnableAnniversary }},
}

// EnumerateOccasions expands a person's FlowerSchedule into its upcoming
// occasions. A toggle that is on but has no matching ImportantDate is skipped
// silently. An ImportantDate with impossible month/day is reported in the
// returned Skipped list and does not affect the other kinds.
func EnumerateOccasions(p Person, today time.Time, rng RandomSource) ([]OccasionInstance, []Skipped) {
	sched := p.FlowerSchedule
	if sched == nil {
		return nil, nil
	}

	today = Midnight(today)
	lead := NormalizeLeadDays(sched.ReminderDays)

	var (
		out     []OccasionInstance
		skipped []Skipped
	)

	for _, h := range fixedHolidays {
		if !h.enabled(sched) {
			continue
		}
		date, err := NextOccurrence(h.month, h.day, today)
		if err != nil {
			skipped = append(skipped, Skipped{PersonID: p.ID, Kind: h.kind, Err: err})
			continue
		}
		out = append(out, newInstance(p, h.kind, h.label, date, today, "", lead))
	}

	for _, dd := range dateDrivenOccasions {
		if !dd.enabled(sched) {
			continue
		}
		src, ok := p.FirstDateOfType(dd.dateType)
		if !ok {
			continue
		}
		date, err := NextOccurrence(src.Date.Month(), src.Date.Day(), today)
		if err != nil {
			skipped = append(skipped, Skipped{PersonID: p.ID, Kind: dd.kind, SourceID: src.ID, Err: err})
			continue
		}
		out = append(out, newInstance(p, dd.kind, dd.label, date, today, src.ID, lead))
	}

	if sched.RandomDates > 0 && rng != nil {
		for _, date := range SurpriseDates(sched.RandomDates, today, rng) {
			out = append(out, newInstance(p, KindSurprise, LabelSurprise, date, today, "", lead))
		}
	}

	SortOccasions(out)
	return out, skipped
}

// GiftOccasions resolves every ImportantDate of a person to its next
// occurrence. These drive gift-shopping reminders and do not depend on the
// FlowerSchedule.
//
// Dates of the same kind and label that land on the same occurrence, such as
// one birthday entered with two different years, collapse into one instance
// carrying the first source ID and the union of their lead days.
func GiftOccasions(p Person, today time.Time) ([]OccasionInstance, []Skipped) {
	today = Midnight(today)

	var (
		out     []OccasionInstance
		skipped []Skipped
	)
	for _, d := range p.ImportantDates {
		kind, label := describeDate(d)
		date, err := NextOccurrence(d.Date.Month(), d.Date.Day(), today)
		if err != nil {
			skipped = append(skipped, Skipped{PersonID: p.ID, Kind: kind, SourceID: d.ID, Err: err})
			continue
		}
		lead := NormalizeLeadDays(d.ReminderDays)

		dup := slices.IndexFunc(out, func(o OccasionInstance) bool {
			return o.Kind == kind && o.Label == label && o.Date.Equal(date)
		})
		if dup >= 0 {
			out[dup].LeadDays = NormalizeLeadDays(append(slices.Clone(out[dup].LeadDays), lead...))
			continue
		}
		out = append(out, newInstance(p, kind, label, date, today, d.ID, lead))
	}

	SortOccasions(out)
	return out, skipped
}

// EnumerateAll runs EnumerateOccasions for every person and merges the
// results into one sorted list.
func EnumerateAll(people []Person, today time.Time, rng RandomSource) ([]OccasionInstance, []Skipped) {
	var (
		out     []OccasionInstance
		skipped []Skipped
	)
	for _, p := range people {
		occ, sk := EnumerateOccasions(p, today, rng)
		out = append(out, occ...)
		skipped = append(skipped, sk...)
	}
	SortOccasions(out)
	return out, skipped
}

// SortOccasions orders by date, then person ID, then label.
func SortOccasions(occ []OccasionInstance) {
	slices.SortStableFunc(occ, func(a, b OccasionInstance) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.PersonID, b.PersonID); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
}

func describeDate(d ImportantDate) (OccasionKind, string) {
	switch d.Type {
	case DateBirthday:
		return KindBirthday, LabelBirthday
	case DateAnniversary:
		return KindAnniversary, LabelAnniversary
	default:
		if d.Name != "" {
			return KindCustom, d.Name
		}
		return KindCustom, LabelEvent
	}
}

func newInstance(p Person, kind OccasionKind, label string, date, today time.Time, sourceID string, lead []int) OccasionInstance {
	return OccasionInstance{
		PersonID:   p.ID,
		PersonName: p.Name,
		Kind:       kind,
		Label:      label,
		Date:       date,
		DaysUntil:  DaysUntil(date, today),
		SourceID:   sourceID,
		LeadDays:   lead,
	}
}
