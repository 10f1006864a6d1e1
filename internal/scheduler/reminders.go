package scheduler

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// reminderNamespace scopes reminder IDs so they never collide with other
// name-based UUIDs.
var reminderNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tartampluch/go-giftminder/reminder"))

// ReminderID derives a stable identifier for one trigger of one occasion.
// The same occasion evaluated on the same day always yields the same ID, so
// callers can upsert instead of duplicating.
func ReminderID(occ OccasionInstance, typ ReminderType, lead int) string {
	key := strings.Join([]string{
		occ.PersonID,
		string(typ),
		string(occ.Kind),
		occ.SourceID,
		occ.Date.Format(time.DateOnly),
		strconv.Itoa(lead),
	}, "|")
	return uuid.NewSHA1(reminderNamespace, []byte(key)).String()
}

// ExpandReminders produces the reminders for one occasion: one per lead day
// whose trigger date is not before today, followed by the same-day reminder,
// which is always present. Occasions that already lie in the past produce
// nothing.
func ExpandReminders(occ OccasionInstance, typ ReminderType, today time.Time, ph Phraser) []Reminder {
	if ph == nil {
		ph = EnglishPhraser{}
	}
	today = Midnight(today)
	if DaysUntil(occ.Date, today) < 0 {
		return nil
	}

	lead := NormalizeLeadDays(occ.LeadDays)
	out := make([]Reminder, 0, len(lead)+1)

	for _, d := range lead {
		trigger := AddDays(occ.Date, -d)
		if trigger.Before(today) {
			continue
		}
		out = append(out, newReminder(occ, typ, trigger, d, lead, ph))
	}
	out = append(out, newReminder(occ, typ, occ.Date, 0, lead, ph))
	return out
}

// ExpandAll expands a list of occasions of the same reminder type.
func ExpandAll(occ []OccasionInstance, typ ReminderType, today time.Time, ph Phraser) []Reminder {
	var out []Reminder
	for _, o := range occ {
		out = append(out, ExpandReminders(o, typ, today, ph)...)
	}
	return out
}

func newReminder(occ OccasionInstance, typ ReminderType, trigger time.Time, lead int, all []int, ph Phraser) Reminder {
	return Reminder{
		ID:               ReminderID(occ, typ, lead),
		PersonID:         occ.PersonID,
		PersonName:       occ.PersonName,
		Title:            ph.Title(occ, lead),
		Description:      ph.Description(occ, lead, typ),
		Date:             trigger,
		Type:             typ,
		OccasionKind:     occ.Kind,
		OccasionLabel:    occ.Label,
		OccasionDate:     occ.Date,
		SourceID:         occ.SourceID,
		LeadDays:         lead,
		OccasionLeadDays: all,
	}
}
