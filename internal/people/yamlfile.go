package people

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/tartampluch/go-giftminder/internal/config"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
	"gopkg.in/yaml.v3"
)

// FileSource reads people from a YAML document:
//
//	people:
//	  - name: Anna
//	    important_dates:
//	      - type: birthday
//	        date: 1995-05-15
//	        reminder_days: "1, 7"
//	    flower_schedule:
//	      womens_day: true
//	      random_dates: 2
type FileSource struct {
	Path     string
	Defaults Defaults
}

// LeadDays accepts either a YAML sequence of integers or free-form text
// such as "1, 7,30".
type LeadDays []int

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *LeadDays) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if n, err := strconv.Atoi(node.Value); err == nil {
			*l = LeadDays{n}
			return nil
		}
		*l = LeadDays(scheduler.ParseReminderDays(node.Value))
		return nil
	case yaml.SequenceNode:
		var days []int
		if err := node.Decode(&days); err != nil {
			return err
		}
		*l = days
		return nil
	default:
		return fmt.Errorf("reminder_days: unexpected YAML node at line %d", node.Line)
	}
}

type peopleDoc struct {
	People []personDoc `yaml:"people"`
}

type personDoc struct {
	ID             string             `yaml:"id"`
	Name           string             `yaml:"name"`
	Label          string             `yaml:"label"`
	Image          string             `yaml:"image"`
	Preferences    []string           `yaml:"preferences"`
	ImportantDates []dateDoc          `yaml:"important_dates"`
	GiftIdeas      []giftDoc          `yaml:"gift_ideas"`
	FlowerSchedule *flowerScheduleDoc `yaml:"flower_schedule"`
}

type dateDoc struct {
	ID           string   `yaml:"id"`
	Type         string   `yaml:"type"`
	Name         string   `yaml:"name"`
	Date         string   `yaml:"date"`
	ReminderDays LeadDays `yaml:"reminder_days"`
}

type giftDoc struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Occasion    string  `yaml:"occasion"`
	URL         string  `yaml:"url"`
	AISuggested bool    `yaml:"ai_suggested"`
	Purchased   bool    `yaml:"purchased"`
}

type flowerScheduleDoc struct {
	WomensDay     bool     `yaml:"womens_day"`
	ValentinesDay bool     `yaml:"valentines_day"`
	Birthday      bool     `yaml:"birthday"`
	Anniversary   bool     `yaml:"anniversary"`
	RandomDates   int      `yaml:"random_dates"`
	ReminderDays  LeadDays `yaml:"reminder_days"`
}

// Load parses the file. A malformed document fails the load; a malformed
// date only drops that date.
func (s *FileSource) Load(ctx context.Context) ([]scheduler.Person, error) {
	if s.Path == "" {
		return nil, errors.New(config.ErrPeopleFileEmpty)
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPeopleRead, err)
	}

	var doc peopleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPeopleParse, err)
	}

	log := slog.With(config.LogKeyComponent, config.CompPeople, config.LogKeyFile, s.Path)

	out := make([]scheduler.Person, 0, len(doc.People))
	for i, pd := range doc.People {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, s.person(i, pd, log))
	}

	log.Info(config.MsgPeopleLoaded, config.LogKeyPeople, len(out))
	return out, nil
}

func (s *FileSource) person(index int, pd personDoc, log *slog.Logger) scheduler.Person {
	name := pd.Name
	if name == "" {
		name = config.FallbackName
	}
	id := pd.ID
	if id == "" {
		id = stableID(name, strconv.Itoa(index))
	}

	p := scheduler.Person{
		ID:          id,
		Name:        name,
		Label:       pd.Label,
		Image:       pd.Image,
		Preferences: pd.Preferences,
	}

	for i, dd := range pd.ImportantDates {
		d, err := parseDate(dd.Date)
		if err != nil {
			log.Warn(config.MsgSkippedDate,
				config.LogKeyPersonID, id,
				config.LogKeyValue, dd.Date,
				config.LogKeyError, err,
			)
			continue
		}
		dateID := dd.ID
		if dateID == "" {
			dateID = fmt.Sprintf(config.FormatDateID, id, strconv.Itoa(i))
		}
		days := []int(dd.ReminderDays)
		if len(days) == 0 {
			days = slices.Clone(s.Defaults.ReminderDays)
		}
		typ, known := dateType(dd.Type)
		if !known {
			log.Warn(config.MsgUnknownDateType,
				config.LogKeyPersonID, id,
				config.LogKeyValue, dd.Type,
			)
		}
		p.ImportantDates = append(p.ImportantDates, scheduler.ImportantDate{
			ID:           dateID,
			Type:         typ,
			Name:         dd.Name,
			Date:         d,
			ReminderDays: days,
		})
	}

	for _, g := range pd.GiftIdeas {
		p.GiftIdeas = append(p.GiftIdeas, scheduler.GiftIdea(g))
	}

	if fs := pd.FlowerSchedule; fs != nil {
		days := []int(fs.ReminderDays)
		if len(days) == 0 {
			days = slices.Clone(s.Defaults.FlowerReminderDays)
		}
		p.FlowerSchedule = &scheduler.FlowerSchedule{
			EnableWomensDay:     fs.WomensDay,
			EnableValentinesDay: fs.ValentinesDay,
			EnableBirthday:      fs.Birthday,
			EnableAnniversary:   fs.Anniversary,
			RandomDates:         max(fs.RandomDates, 0),
			ReminderDays:        days,
		}
	}
	return p
}

// dateType maps free text onto a DateType, ignoring case and surrounding
// space. Anything unrecognized is custom and reported as unknown; an empty
// type is custom without a report.
func dateType(s string) (scheduler.DateType, bool) {
	switch t := scheduler.DateType(strings.ToLower(strings.TrimSpace(s))); t {
	case scheduler.DateBirthday, scheduler.DateAnniversary, scheduler.DateCustom:
		return t, true
	case "":
		return scheduler.DateCustom, true
	default:
		return scheduler.DateCustom, false
	}
}
