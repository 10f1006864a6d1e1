package people

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-giftminder/internal/config"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
)

// VCardSource reads people from an address book, either a local .vcf file
// or a CardDAV/WebDAV URL.
type VCardSource struct {
	Mode     string // config.SourceModeLocal or config.SourceModeWeb
	Path     string
	URL      string
	User     string
	Pass     string
	Fetcher  Fetcher
	Defaults Defaults
}

// Load decodes every card. Cards that fail to decode, or carry no usable
// BDAY/ANNIVERSARY, are skipped and never abort the batch.
func (s *VCardSource) Load(ctx context.Context) ([]scheduler.Person, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompPeople,
		config.LogKeyMode, s.Mode,
	)

	r, err := s.open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = r.Close() }()

	dec := vcard.NewDecoder(r)
	var (
		out   []scheduler.Person
		total int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			continue
		}
		total++

		p, ok := s.person(card, log)
		if !ok {
			continue
		}
		out = append(out, p)
	}

	log.Info(config.MsgPeopleLoaded,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, total),
			slog.Int(config.LogKeyPeople, len(out)),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (s *VCardSource) open(ctx context.Context) (io.ReadCloser, error) {
	switch s.Mode {
	case config.SourceModeLocal:
		if s.Path == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(s.Path)
	case config.SourceModeWeb:
		if s.URL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if s.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return s.Fetcher.Fetch(ctx, s.URL, s.User, s.Pass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, s.Mode)
	}
}

// person maps one card. Name strategy: FN, then N, then a fallback.
func (s *VCardSource) person(card vcard.Card, log *slog.Logger) (scheduler.Person, bool) {
	name := config.FallbackName
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		name = fn.Value
	} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		name = n.Value
	}

	var dates []scheduler.ImportantDate
	for _, field := range []struct {
		prop string
		typ  scheduler.DateType
	}{
		{config.VCardBDAY, scheduler.DateBirthday},
		{config.VCardAnniversary, scheduler.DateAnniversary},
	} {
		f := card.Get(field.prop)
		if f == nil || f.Value == "" {
			continue
		}
		d, err := parseDate(f.Value)
		if err != nil {
			log.Debug(config.MsgSkippedDate,
				config.LogKeyName, name,
				config.LogKeyValue, f.Value,
			)
			continue
		}
		dates = append(dates, scheduler.ImportantDate{
			Type:         field.typ,
			Date:         d,
			ReminderDays: slices.Clone(s.Defaults.ReminderDays),
		})
	}
	if len(dates) == 0 {
		return scheduler.Person{}, false
	}

	id := stableID(name, dates[0].Date.Format(time.RFC3339))
	if uid := card.Get(config.VCardUID); uid != nil && uid.Value != "" {
		id = uid.Value
	}
	for i := range dates {
		dates[i].ID = fmt.Sprintf(config.FormatDateID, id, dates[i].Type)
	}

	p := scheduler.Person{
		ID:             id,
		Name:           name,
		ImportantDates: dates,
		FlowerSchedule: s.Defaults.flowerSchedule(),
	}
	if photo := card.Get(config.VCardPhoto); photo != nil {
		p.Image = photo.Value
	}
	if cat := card.Get(config.VCardCategories); cat != nil {
		for _, c := range strings.Split(cat.Value, config.CategorySep) {
			if c = strings.TrimSpace(c); c != "" {
				p.Preferences = append(p.Preferences, c)
			}
		}
	}
	return p, true
}
