package models

import (
	"fmt"
	"strconv"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/errors"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// Notifications toggles the reminder kinds
type Notifications struct {
	Morning bool `json:"morning"`
	Sleep   bool `json:"sleep"`
}

// LifeSettings feeds the life calendar. An empty BirthDate disables it.
type LifeSettings struct {
	BirthDate      string `json:"birthDate,omitempty"`
	LifeExpectancy int    `json:"lifeExpectancy"` // years; 0 means the default
}

// Years returns the life expectancy, falling back to the default when unset
func (l LifeSettings) Years() int {
	if l.LifeExpectancy == 0 {
		return constants.DefaultLifeExpect
	}
	return l.LifeExpectancy
}

// Settings is the process-wide sleep schedule and presentation preferences
type Settings struct {
	SleepStart    string        `json:"sleepStart"` // when the user goes to bed, e.g. "22:30"
	SleepEnd      string        `json:"sleepEnd"`   // when the user wakes up, e.g. "08:30"
	Theme         string        `json:"theme"`
	Notifications Notifications `json:"notifications"`
	Life          LifeSettings  `json:"lifeSettings"`
}

// DefaultSettings returns the settings a fresh store starts with
func DefaultSettings() Settings {
	return Settings{
		SleepStart: constants.DefaultSleepStart,
		SleepEnd:   constants.DefaultSleepEnd,
		Theme:      constants.DefaultTheme,
		Notifications: Notifications{
			Morning: constants.DefaultNotifyMorning,
			Sleep:   constants.DefaultNotifySleep,
		},
		Life: LifeSettings{LifeExpectancy: constants.DefaultLifeExpect},
	}
}

// Validate checks the sleep boundaries and theme
func (s Settings) Validate() error {
	if _, err := utils.ParseTimeOfDay(s.SleepStart); err != nil {
		return fmt.Errorf("sleep start: %w", err)
	}
	if _, err := utils.ParseTimeOfDay(s.SleepEnd); err != nil {
		return fmt.Errorf("sleep end: %w", err)
	}
	if s.Theme != constants.ThemeDark && s.Theme != constants.ThemeLight {
		return fmt.Errorf("theme must be %q or %q, got %q", constants.ThemeDark, constants.ThemeLight, s.Theme)
	}
	if s.Life.BirthDate != "" && !utils.IsValidDate(s.Life.BirthDate) {
		return fmt.Errorf("birth date %q: %w", s.Life.BirthDate, errors.ErrInvalidDateFormat)
	}
	if s.Life.LifeExpectancy != 0 {
		return validateLifeExpectancy(s.Life.LifeExpectancy)
	}
	return nil
}

func validateLifeExpectancy(years int) error {
	if years < constants.MinLifeExpect || years > constants.MaxLifeExpect {
		return fmt.Errorf("life expectancy must be between %d and %d years, got %d",
			constants.MinLifeExpect, constants.MaxLifeExpect, years)
	}
	return nil
}

// SettingsPatch is a partial settings update
type SettingsPatch struct {
	SleepStart    *string `json:"sleepStart,omitempty"`
	SleepEnd      *string `json:"sleepEnd,omitempty"`
	Theme         *string `json:"theme,omitempty"`
	NotifyMorning *bool   `json:"notifyMorning,omitempty"`
	NotifySleep   *bool   `json:"notifySleep,omitempty"`

	// BirthDate set to "" clears the life calendar
	BirthDate      *string `json:"birthDate,omitempty"`
	LifeExpectancy *int    `json:"lifeExpectancy,omitempty"`
}

// Apply merges the patch over s and validates the result
func (p SettingsPatch) Apply(s Settings) (Settings, error) {
	if p.SleepStart != nil {
		v, err := utils.NormalizeTime(*p.SleepStart)
		if err != nil {
			return s, fmt.Errorf("sleep start: %w", err)
		}
		s.SleepStart = v
	}
	if p.SleepEnd != nil {
		v, err := utils.NormalizeTime(*p.SleepEnd)
		if err != nil {
			return s, fmt.Errorf("sleep end: %w", err)
		}
		s.SleepEnd = v
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.NotifyMorning != nil {
		s.Notifications.Morning = *p.NotifyMorning
	}
	if p.NotifySleep != nil {
		s.Notifications.Sleep = *p.NotifySleep
	}
	if p.BirthDate != nil {
		s.Life.BirthDate = *p.BirthDate
	}
	if p.LifeExpectancy != nil {
		if err := validateLifeExpectancy(*p.LifeExpectancy); err != nil {
			return s, err
		}
		s.Life.LifeExpectancy = *p.LifeExpectancy
	}
	return s, s.Validate()
}

// MapToSettings converts key/value rows from the SQL settings table to Settings.
// Missing keys keep their defaults.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingSleepStart:
			settings.SleepStart = value
		case constants.SettingSleepEnd:
			settings.SleepEnd = value
		case constants.SettingTheme:
			settings.Theme = value
		case constants.SettingNotifyMorning, constants.SettingNotifySleep:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			if key == constants.SettingNotifyMorning {
				settings.Notifications.Morning = b
			} else {
				settings.Notifications.Sleep = b
			}
		case constants.SettingBirthDate:
			settings.Life.BirthDate = value
		case constants.SettingLifeExpect:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.Life.LifeExpectancy = n
		}
	}
	return settings, nil
}

// SettingsToMap converts Settings to key/value rows
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingSleepStart:    settings.SleepStart,
		constants.SettingSleepEnd:      settings.SleepEnd,
		constants.SettingTheme:         settings.Theme,
		constants.SettingNotifyMorning: strconv.FormatBool(settings.Notifications.Morning),
		constants.SettingNotifySleep:   strconv.FormatBool(settings.Notifications.Sleep),
		constants.SettingBirthDate:     settings.Life.BirthDate,
		constants.SettingLifeExpect:    strconv.Itoa(settings.Life.LifeExpectancy),
	}
}
