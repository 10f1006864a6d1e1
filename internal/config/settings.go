package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceSettings selects where people are loaded from.
type SourceSettings struct {
	// Mode is one of SourceModeFile, SourceModeLocal or SourceModeWeb.
	Mode       string `yaml:"mode"`
	PeopleFile string `yaml:"people_file"`
	VCardPath  string `yaml:"vcard_path"`
	VCardURL   string `yaml:"vcard_url"`
	// VCardUser is the Basic Auth user. The password lives in the OS keyring.
	VCardUser string `yaml:"vcard_user"`
}

// ReminderSettings controls how planned reminders are activated.
type ReminderSettings struct {
	Push                      bool  `yaml:"push"`
	Calendar                  bool  `yaml:"calendar"`
	DefaultReminderDays       []int `yaml:"default_reminder_days"`
	DefaultFlowerReminderDays []int `yaml:"default_flower_reminder_days"`
}

// FlowerDefaults is applied to people that come without their own flower
// schedule (vCard sources carry none).
type FlowerDefaults struct {
	Enabled             bool `yaml:"enabled"`
	EnableWomensDay     bool `yaml:"womens_day"`
	EnableValentinesDay bool `yaml:"valentines_day"`
	EnableBirthday      bool `yaml:"birthday"`
	EnableAnniversary   bool `yaml:"anniversary"`
	RandomDates         int  `yaml:"random_dates"`
}

// Settings is the daemon's YAML configuration.
type Settings struct {
	// Listen is the HTTP listen address of the feed server.
	Listen string `yaml:"listen"`

	// Timezone is the IANA zone "today" is evaluated in ("Local" for the host zone).
	Timezone string `yaml:"timezone"`

	// Language selects the reminder phrasing catalog.
	Language string `yaml:"language"`

	// EvaluateCron schedules the full evaluation cycle.
	EvaluateCron string `yaml:"evaluate_cron"`

	// DeliverCron schedules delivery of due notifications.
	DeliverCron string `yaml:"deliver_cron"`

	// UpcomingDays is the horizon of the /upcoming snapshot.
	UpcomingDays int `yaml:"upcoming_days"`

	Source                SourceSettings   `yaml:"source"`
	Reminders             ReminderSettings `yaml:"reminders"`
	DefaultFlowerSchedule FlowerDefaults   `yaml:"default_flower_schedule"`

	// RandomSeed makes surprise dates reproducible. Zero seeds from the runtime.
	RandomSeed uint64 `yaml:"random_seed"`
}

var (
	defaultReminderDays       = []int{1, 7, 30}
	defaultFlowerReminderDays = []int{1, 3}
)

// DefaultSettings returns an in-memory default configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Listen:       DefaultListen,
		Timezone:     DefaultTimezone,
		Language:     DefaultLanguage,
		EvaluateCron: DefaultEvaluateCron,
		DeliverCron:  DefaultDeliverCron,
		UpcomingDays: DefaultUpcomingHorizonDays,
		Source: SourceSettings{
			Mode: SourceModeFile,
		},
		Reminders: ReminderSettings{
			Push:                      true,
			Calendar:                  true,
			DefaultReminderDays:       slices.Clone(defaultReminderDays),
			DefaultFlowerReminderDays: slices.Clone(defaultFlowerReminderDays),
		},
		DefaultFlowerSchedule: FlowerDefaults{
			Enabled:             true,
			EnableWomensDay:     true,
			EnableValentinesDay: true,
			EnableBirthday:      true,
		},
	}
}

// Normalize fills in missing or invalid values with defaults so that
// partially-filled files still behave correctly.
func (s *Settings) Normalize() {
	if s.Listen == "" {
		s.Listen = DefaultListen
	}
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		s.Language = DefaultLanguage
	}
	if s.EvaluateCron == "" {
		s.EvaluateCron = DefaultEvaluateCron
	}
	if s.DeliverCron == "" {
		s.DeliverCron = DefaultDeliverCron
	}
	if s.UpcomingDays <= 0 {
		s.UpcomingDays = DefaultUpcomingHorizonDays
	}

	switch s.Source.Mode {
	case SourceModeFile, SourceModeLocal, SourceModeWeb:
	default:
		s.Source.Mode = SourceModeFile
	}

	if len(s.Reminders.DefaultReminderDays) == 0 {
		s.Reminders.DefaultReminderDays = slices.Clone(defaultReminderDays)
	}
	if len(s.Reminders.DefaultFlowerReminderDays) == 0 {
		s.Reminders.DefaultFlowerReminderDays = slices.Clone(defaultFlowerReminderDays)
	}
	if s.DefaultFlowerSchedule.RandomDates < 0 {
		s.DefaultFlowerSchedule.RandomDates = 0
	}
}

// Location resolves Timezone.
func (s *Settings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", ErrTimezone, s.Timezone, err)
	}
	return loc, nil
}

// DefaultDir returns the per-user configuration directory of the app.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, AppID), nil
}

// LoadSettings reads the YAML file at path.
//
// If the file does not exist, a default file is written with 0600
// permissions and the defaults are returned. Fields missing from an existing
// file keep their default values.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return nil, errors.New(ErrSettingsPathEmpty)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s := DefaultSettings()
			s.Source.PeopleFile = filepath.Join(filepath.Dir(path), PeopleFileName)
			if err := SaveSettings(path, s); err != nil {
				// Even if save fails, return the defaults so the caller can decide.
				return s, err
			}
			slog.Info(MsgSettingsCreated,
				LogKeyComponent, CompSettings,
				LogKeyFile, path,
			)
			return s, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}
	s.Normalize()
	if s.Source.PeopleFile == "" {
		s.Source.PeopleFile = filepath.Join(filepath.Dir(path), PeopleFileName)
	}

	return s, nil
}

// SaveSettings writes s to path atomically via a temp file and rename, with
// 0600 permissions on the result.
func SaveSettings(path string, s *Settings) error {
	if path == "" {
		return errors.New(ErrSettingsPathEmpty)
	}
	if s == nil {
		return errors.New(ErrSettingsNil)
	}

	s.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", ErrCreateDir, err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}

	tmp, err := os.CreateTemp(dir, TempFilePattern)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	if err := os.Chmod(tmpName, FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	return nil
}
