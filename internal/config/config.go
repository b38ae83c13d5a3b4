// Package config loads and saves the YAML application config.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
)

const (
	defaultListen         = "127.0.0.1:8080"
	defaultWeekStart      = "monday"
	defaultMorningCron    = "0 9 * * *"
	defaultSleepLeadMin   = 30
	defaultBackupInterval = "@daily"
)

// ReminderConfig schedules the tray notifications
type ReminderConfig struct {
	// MorningCron is a standard five field cron spec for the morning planning nudge.
	MorningCron string `yaml:"morning_cron" json:"morning_cron"`
	// SleepLeadMin is how many minutes before sleep start the bedtime reminder fires.
	SleepLeadMin int `yaml:"sleep_lead_min" json:"sleep_lead_min"`
}

// Config is the top-level application configuration.
type Config struct {
	// Storage is a SQLite path, a .json file path or a PostgreSQL URL without a password.
	Storage string `yaml:"storage" json:"storage"`

	Debug    bool   `yaml:"debug" json:"debug"`
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`

	// Timezone is the IANA zone used for calendar exports and reminders. Empty means local.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is "monday" or "sunday" and picks the first day of week stats.
	WeekStart string `yaml:"week_start" json:"week_start"`

	DefaultDurationMin int `yaml:"default_duration_min" json:"default_duration_min"`

	// Listen is the HTTP listen address of `coins serve`.
	Listen      string   `yaml:"listen" json:"listen"`
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	// BackupInterval is the cron spec for automatic backups while serving.
	BackupInterval string `yaml:"backup_interval" json:"backup_interval"`

	Reminders ReminderConfig `yaml:"reminders" json:"reminders"`
}

// DefaultPath returns ~/.config/coins/config.yaml expanded
func DefaultPath() string {
	return ExpandPath(constants.DefaultConfigPath)
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage:            constants.DefaultStoragePath,
		WeekStart:          defaultWeekStart,
		DefaultDurationMin: constants.DefaultSlotDurationMin,
		Listen:             defaultListen,
		CORSOrigins:        []string{"http://localhost:*", "http://127.0.0.1:*"},
		BackupInterval:     defaultBackupInterval,
		Reminders: ReminderConfig{
			MorningCron:  defaultMorningCron,
			SleepLeadMin: defaultSleepLeadMin,
		},
	}
}

// Normalize fills in missing/zero values so partially-filled configs still behave.
func (c *Config) Normalize() {
	if c.Storage == "" {
		c.Storage = constants.DefaultStoragePath
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = defaultWeekStart
	}
	if c.DefaultDurationMin <= 0 {
		c.DefaultDurationMin = constants.DefaultSlotDurationMin
	}
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.CORSOrigins == nil {
		c.CORSOrigins = []string{}
	}
	if c.BackupInterval == "" {
		c.BackupInterval = defaultBackupInterval
	}
	if c.Reminders.MorningCron == "" {
		c.Reminders.MorningCron = defaultMorningCron
	}
	if c.Reminders.SleepLeadMin < 0 {
		c.Reminders.SleepLeadMin = 0
	}
}

// Dir returns the directory holding the config file
func Dir(path string) string {
	return filepath.Dir(ExpandPath(path))
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Load reads the YAML config at path. A missing file is created with defaults and 0600 perms.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg atomically via a temp file and rename, leaving the file at 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	path = ExpandPath(path)
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".coins-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save
func (c *Config) Save(path string) error {
	return Save(path, c)
}
