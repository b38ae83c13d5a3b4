package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
)

// ErrInvalidEnvelope is returned when a JSON import lacks a version or a data document
var ErrInvalidEnvelope = errors.New("invalid export file: version and data are required")

// Envelope is the JSON export format
type Envelope struct {
	Version    string                                 `json:"version"`
	ExportDate time.Time                              `json:"exportDate"`
	Data       *models.Data                           `json:"data"`
	Categories map[models.Category]models.CategoryInfo `json:"categories"`
	Settings   *models.Settings                       `json:"settings"`
}

// WriteJSON writes the whole document wrapped in an export envelope
func WriteJSON(w io.Writer, data *models.Data, now time.Time) error {
	settings := data.Settings
	env := Envelope{
		Version:    constants.ExportVersion,
		ExportDate: now.UTC(),
		Data:       data,
		Categories: models.CategoryCatalog(),
		Settings:   &settings,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ReadJSON decodes and validates an export envelope. Top-level settings, when
// present, take precedence over the settings embedded in the data document.
func ReadJSON(r io.Reader) (*Envelope, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	if env.Version == "" || env.Data == nil {
		return nil, ErrInvalidEnvelope
	}
	if env.Settings != nil {
		env.Data.Settings = mergeSettings(env.Data.Settings, *env.Settings)
	}
	env.Data.Normalize()
	return &env, nil
}

// mergeSettings overlays the non-empty fields of top. Notification flags always come from top.
func mergeSettings(base, top models.Settings) models.Settings {
	if top.SleepStart != "" {
		base.SleepStart = top.SleepStart
	}
	if top.SleepEnd != "" {
		base.SleepEnd = top.SleepEnd
	}
	if top.Theme != "" {
		base.Theme = top.Theme
	}
	base.Notifications = top.Notifications
	if top.Life.BirthDate != "" {
		base.Life.BirthDate = top.Life.BirthDate
	}
	if top.Life.LifeExpectancy != 0 {
		base.Life.LifeExpectancy = top.Life.LifeExpectancy
	}
	return base
}
