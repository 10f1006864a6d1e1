// Package locale phrases reminders in the user's language from embedded
// go-i18n catalogs.
package locale

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-giftminder/internal/config"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// kindLabels maps built-in occasion kinds to their label keys.
var kindLabels = map[scheduler.OccasionKind]string{
	scheduler.KindBirthday:    config.TKeyLabelBirthday,
	scheduler.KindAnniversary: config.TKeyLabelAnniversary,
	scheduler.KindWomensDay:   config.TKeyLabelWomensDay,
	scheduler.KindValentines:  config.TKeyLabelValentines,
	scheduler.KindSurprise:    config.TKeyLabelSurprise,
}

// Catalog holds every embedded translation.
type Catalog struct {
	bundle    *i18n.Bundle
	languages []string
}

// Load parses the embedded locale files. Files with unexpected names are
// skipped; a catalog with no language at all is an error.
func Load() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	c := &Catalog{bundle: bundle}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		lang := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if lang == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		c.languages = append(c.languages, lang)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, lang,
		)
	}

	if len(c.languages) == 0 {
		return nil, errors.New(config.ErrLocalesAccess)
	}
	slices.Sort(c.languages)
	return c, nil
}

// Languages lists the loaded language codes.
func (c *Catalog) Languages() []string {
	return slices.Clone(c.languages)
}

// Phraser returns a scheduler.Phraser for lang. Unknown languages fall back
// to English.
func (c *Catalog) Phraser(lang string) *Phraser {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Phraser{localizer: i18n.NewLocalizer(c.bundle, lang), lang: lang}
}

// Phraser implements scheduler.Phraser with go-i18n. Any missing message
// falls back to the built-in English phrasing.
type Phraser struct {
	localizer *i18n.Localizer
	lang      string
	fallback  scheduler.EnglishPhraser
}

var _ scheduler.Phraser = (*Phraser)(nil)

// Label returns the localized occasion label. Custom dates keep the name
// the user gave them.
func (p *Phraser) Label(occ scheduler.OccasionInstance) string {
	key, ok := kindLabels[occ.Kind]
	if !ok {
		if occ.Label != scheduler.LabelEvent && occ.Label != "" {
			return occ.Label
		}
		key = config.TKeyLabelEvent
	}
	if msg, ok := p.localize(key, nil, nil); ok {
		return msg
	}
	return occ.Label
}

// Title returns e.g. "Birthday Today" or "Birthday in 7 days".
func (p *Phraser) Title(occ scheduler.OccasionInstance, days int) string {
	data := p.data(occ, days)
	if days == 0 {
		if msg, ok := p.localize(config.TKeyTitleToday, data, nil); ok {
			return msg
		}
		return p.fallback.Title(occ, days)
	}
	if msg, ok := p.localize(config.TKeyTitleIn, data, days); ok {
		return msg
	}
	return p.fallback.Title(occ, days)
}

// Description returns the notification body for a gift or flower reminder.
func (p *Phraser) Description(occ scheduler.OccasionInstance, days int, typ scheduler.ReminderType) string {
	var key string
	switch {
	case typ == scheduler.ReminderFlowers && days == 0:
		key = config.TKeyDescFlowersToday
	case typ == scheduler.ReminderFlowers:
		key = config.TKeyDescFlowersIn
	case days == 0:
		key = config.TKeyDescGiftToday
	default:
		key = config.TKeyDescGiftIn
	}

	var count any
	if days != 0 {
		count = days
	}
	if msg, ok := p.localize(key, p.data(occ, days), count); ok {
		return msg
	}
	return p.fallback.Description(occ, days, typ)
}

// EventTitle returns the calendar event name, e.g. "Anna's Birthday".
func (p *Phraser) EventTitle(occ scheduler.OccasionInstance) string {
	if msg, ok := p.localize(config.TKeyEventTitle, p.data(occ, 0), nil); ok {
		return msg
	}
	return p.fallback.EventTitle(occ)
}

func (p *Phraser) data(occ scheduler.OccasionInstance, days int) map[string]any {
	label := p.Label(occ)
	return map[string]any{
		"Name":       occ.PersonName,
		"Label":      label,
		"LabelLower": strings.ToLower(label),
		"Count":      days,
	}
}

func (p *Phraser) localize(key string, data map[string]any, count any) (string, bool) {
	msg, err := p.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  count,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, p.lang,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", false
	}
	return msg, true
}
