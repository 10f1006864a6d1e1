package scheduler

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultLeadDays is used whenever a reminder list normalizes to nothing.
var DefaultLeadDays = []int{1}

// NormalizeLeadDays drops non-positive values and duplicates and sorts the
// rest in descending order so the furthest-out reminder comes first.
// An empty result falls back to DefaultLeadDays.
func NormalizeLeadDays(days []int) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d > 0 && !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultLeadDays)
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// ParseReminderDays reads free-form user input such as "1, 7,30".
// Tokens that are not positive integers are ignored.
func ParseReminderDays(input string) []int {
	var days []int
	for _, tok := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		days = append(days, n)
	}
	return NormalizeLeadDays(days)
}

// FormatReminderDays renders days the way ParseReminderDays accepts them.
func FormatReminderDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ", ")
}
