package people

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/tartampluch/go-giftminder/internal/config"
)

var datesWithYear = []string{
	config.DateFormatFullDash,
	config.DateFormatFullBasic,
	config.DateFormatRFC3339,
	config.DateFormatFullT,
}

var datesWithoutYear = []string{
	config.DateFormatNoYearD,
	config.DateFormatNoYearB,
}

// parseDate accepts the vCard date forms, including the truncated
// "--MM-DD" used when the year is unknown. Those land in a leap year so
// Feb 29 survives. The result is a UTC calendar date; only month and day
// matter downstream.
func parseDate(value string) (time.Time, error) {
	for _, f := range datesWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	for _, f := range datesWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %q", config.ErrDateParse, value)
}

// stableID derives a deterministic identifier for records that carry none,
// so reminders keep their IDs across reloads.
func stableID(name, discriminator string) string {
	input := fmt.Sprintf(config.FormatHashInput, name, discriminator, config.UIDSalt)
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", sum[:config.UIDHashLength])
}
