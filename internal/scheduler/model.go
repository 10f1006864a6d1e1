package scheduler

import "time"

// DateType classifies an ImportantDate.
type DateType string

const (
	DateBirthday    DateType = "birthday"
	DateAnniversary DateType = "anniversary"
	DateCustom      DateType = "custom"
)

// OccasionKind identifies which rule produced an OccasionInstance.
type OccasionKind string

const (
	KindBirthday    OccasionKind = "birthday"
	KindAnniversary OccasionKind = "anniversary"
	KindWomensDay   OccasionKind = "womens_day"
	KindValentines  OccasionKind = "valentines_day"
	KindSurprise    OccasionKind = "surprise"
	KindCustom      OccasionKind = "custom"
)

// Recurring reports whether the occasion repeats every year on the same
// month/day. Surprise dates are drawn fresh and never recur.
func (k OccasionKind) Recurring() bool {
	return k != KindSurprise
}

// ReminderType tells the caller why a reminder exists.
type ReminderType string

const (
	ReminderGift    ReminderType = "gift"
	ReminderFlowers ReminderType = "flowers"
)

// Person is a read-only snapshot supplied by the people store.
type Person struct {
	ID             string
	Name           string
	Label          string // relationship, e.g. "mom", "best friend"
	Image          string
	Preferences    []string
	ImportantDates []ImportantDate
	GiftIdeas      []GiftIdea
	FlowerSchedule *FlowerSchedule
}

// ImportantDate is a recorded life event. Only month and day drive
// recurrence; the year is kept as provenance.
type ImportantDate struct {
	ID           string
	Type         DateType
	Name         string // required for DateCustom
	Date         time.Time
	ReminderDays []int
}

// GiftIdea is carried through untouched; the scheduler has no logic for it.
type GiftIdea struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Occasion    string
	URL         string
	AISuggested bool
	Purchased   bool
}

// FlowerSchedule configures flower occasions for one person. Birthday and
// anniversary toggles read the matching ImportantDate at evaluation time.
type FlowerSchedule struct {
	EnableWomensDay     bool
	EnableValentinesDay bool
	EnableBirthday      bool
	EnableAnniversary   bool
	RandomDates         int // surprise occasions per month
	ReminderDays        []int
}

// FirstDateOfType returns the first ImportantDate of type t, if any.
func (p Person) FirstDateOfType(t DateType) (ImportantDate, bool) {
	for _, d := range p.ImportantDates {
		if d.Type == t {
			return d, true
		}
	}
	return ImportantDate{}, false
}

// OccasionInstance is the next concrete occurrence of one occasion for one
// person. It is derived on demand and only valid for the "today" it was
// computed against.
type OccasionInstance struct {
	PersonID   string
	PersonName string
	Kind       OccasionKind
	Label      string
	Date       time.Time
	DaysUntil  int

	// SourceID is the ImportantDate ID for date-driven occasions, empty for
	// fixed holidays and surprises.
	SourceID string

	// LeadDays are the normalized reminder offsets for this occasion.
	LeadDays []int
}

// Reminder is a single trigger derived from an occasion.
type Reminder struct {
	ID          string
	PersonID    string
	PersonName  string
	Title       string
	Description string
	Date        time.Time // trigger date
	Type        ReminderType
	IsRead      bool

	NotificationID  string
	CalendarEventID string

	OccasionKind  OccasionKind
	OccasionLabel string
	OccasionDate  time.Time
	SourceID      string

	// LeadDays is the offset between Date and OccasionDate; 0 for the
	// same-day reminder.
	LeadDays int

	// OccasionLeadDays are all the offsets configured for the occasion,
	// carried for calendar mirroring.
	OccasionLeadDays []int
}

// SameDay reports whether the reminder fires on the occasion itself.
func (r Reminder) SameDay() bool {
	return r.LeadDays == 0
}

// MarkRead flags the reminder as seen.
func (r *Reminder) MarkRead() {
	r.IsRead = true
}

// Skipped records an occasion that could not be evaluated.
type Skipped struct {
	PersonID string
	Kind     OccasionKind
	SourceID string
	Err      error
}
