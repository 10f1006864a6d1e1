package scheduler

import (
	"fmt"
	"strings"
)

// Phraser turns an occasion into human-readable reminder text.
// days is the lead time of the reminder; 0 means the occasion is today.
type Phraser interface {
	Title(occ OccasionInstance, days int) string
	Description(occ OccasionInstance, days int, typ ReminderType) string
	EventTitle(occ OccasionInstance) string
}

// EnglishPhraser is the built-in Phraser used when no catalog is loaded.
type EnglishPhraser struct{}

func dayWord(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// Title returns "Birthday Today" or "Birthday in 7 days".
func (EnglishPhraser) Title(occ OccasionInstance, days int) string {
	if days == 0 {
		return occ.Label + " Today"
	}
	return fmt.Sprintf("%s in %d %s", occ.Label, days, dayWord(days))
}

// Description returns the notification body.
func (EnglishPhraser) Description(occ OccasionInstance, days int, typ ReminderType) string {
	label := strings.ToLower(occ.Label)
	if typ == ReminderFlowers {
		if days == 0 {
			return fmt.Sprintf("Time to get flowers for %s: %s is today!", occ.PersonName, occ.Label)
		}
		return fmt.Sprintf("%s for %s is in %d %s. Time to order flowers!", occ.Label, occ.PersonName, days, dayWord(days))
	}
	if days == 0 {
		return fmt.Sprintf("Today is %s's %s!", occ.PersonName, label)
	}
	return fmt.Sprintf("%s's %s is coming up in %d %s!", occ.PersonName, label, days, dayWord(days))
}

// EventTitle returns the calendar event name, e.g. "Anna's Birthday".
func (EnglishPhraser) EventTitle(occ OccasionInstance) string {
	return fmt.Sprintf("%s's %s", occ.PersonName, occ.Label)
}
