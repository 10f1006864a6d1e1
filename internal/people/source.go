// Package people loads the read-only snapshot of people and their important
// dates that the scheduler evaluates.
package people

import (
	"context"
	"fmt"
	"slices"

	"github.com/tartampluch/go-giftminder/internal/config"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
)

// Source produces the current people snapshot.
type Source interface {
	Load(ctx context.Context) ([]scheduler.Person, error)
}

// Static is an in-memory Source.
type Static []scheduler.Person

// Load returns a copy of the slice.
func (s Static) Load(context.Context) ([]scheduler.Person, error) {
	return slices.Clone(s), nil
}

// Defaults fill in values a record leaves unset.
type Defaults struct {
	// ReminderDays applies to ImportantDates without their own list.
	ReminderDays []int

	// FlowerReminderDays applies to flower schedules without their own list.
	FlowerReminderDays []int

	// FlowerSchedule is attached to people whose source cannot express one.
	// Nil attaches nothing.
	FlowerSchedule *scheduler.FlowerSchedule
}

// flowerSchedule returns a private copy of the default schedule.
func (d Defaults) flowerSchedule() *scheduler.FlowerSchedule {
	if d.FlowerSchedule == nil {
		return nil
	}
	fs := *d.FlowerSchedule
	fs.ReminderDays = slices.Clone(d.FlowerSchedule.ReminderDays)
	if len(fs.ReminderDays) == 0 {
		fs.ReminderDays = slices.Clone(d.FlowerReminderDays)
	}
	return &fs
}

// DefaultsFromSettings maps the settings file onto source defaults.
func DefaultsFromSettings(s *config.Settings) Defaults {
	d := Defaults{
		ReminderDays:       slices.Clone(s.Reminders.DefaultReminderDays),
		FlowerReminderDays: slices.Clone(s.Reminders.DefaultFlowerReminderDays),
	}
	if fd := s.DefaultFlowerSchedule; fd.Enabled {
		d.FlowerSchedule = &scheduler.FlowerSchedule{
			EnableWomensDay:     fd.EnableWomensDay,
			EnableValentinesDay: fd.EnableValentinesDay,
			EnableBirthday:      fd.EnableBirthday,
			EnableAnniversary:   fd.EnableAnniversary,
			RandomDates:         fd.RandomDates,
			ReminderDays:        slices.Clone(s.Reminders.DefaultFlowerReminderDays),
		}
	}
	return d
}

// FromSettings builds the Source selected by s.Source.Mode. pass is the
// CardDAV password, looked up by the caller.
func FromSettings(s *config.Settings, pass string, fetcher Fetcher) (Source, error) {
	defaults := DefaultsFromSettings(s)

	switch s.Source.Mode {
	case config.SourceModeFile:
		return &FileSource{Path: s.Source.PeopleFile, Defaults: defaults}, nil
	case config.SourceModeLocal, config.SourceModeWeb:
		return &VCardSource{
			Mode:     s.Source.Mode,
			Path:     s.Source.VCardPath,
			URL:      s.Source.VCardURL,
			User:     s.Source.VCardUser,
			Pass:     pass,
			Fetcher:  fetcher,
			Defaults: defaults,
		}, nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, s.Source.Mode)
	}
}
