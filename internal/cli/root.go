package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/backup"
	"github.com/ktrou69-commits/energy-coins/internal/config"
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/keyring"
	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/logger"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
	"github.com/ktrou69-commits/energy-coins/internal/storage"
	"github.com/ktrou69-commits/energy-coins/internal/storage/postgres"
	"github.com/ktrou69-commits/energy-coins/internal/storage/sqlite"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

type Context struct {
	Provider   storage.Provider
	Config     *config.Config
	ConfigPath string
	Scheduler  *scheduler.Scheduler
	// Now is the wall clock; tests pin it
	Now func() time.Time

	store *ledger.Store
}

// Ledger returns the action store over Provider, opening it on first use.
// The provider must already be loaded or initialized.
func (c *Context) Ledger() (*ledger.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	store, err := ledger.New(c.Provider, ledger.WithClock(c.clock()))
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	c.store = store
	return store, nil
}

// ResetLedger drops the cached store so the next Ledger call rereads the provider
func (c *Context) ResetLedger() {
	c.store = nil
}

func (c *Context) clock() func() time.Time {
	if c.Now != nil {
		return c.Now
	}
	return time.Now
}

// Location returns the configured timezone, falling back to local time
func (c *Context) Location() *time.Location {
	if c.Config == nil {
		return time.Local
	}
	loc, err := utils.LoadLocation(c.Config.Timezone)
	if err != nil {
		logger.Warn("Invalid timezone in config, using local", "timezone", c.Config.Timezone, "error", err)
		return time.Local
	}
	return loc
}

// LocalNow returns the current time in the configured timezone
func (c *Context) LocalNow() time.Time {
	return c.clock()().In(c.Location())
}

// Today returns the current date key in the configured timezone
func (c *Context) Today() string {
	return utils.Today(c.LocalNow())
}

// ResolveDate accepts YYYY-MM-DD, "today", "tomorrow" or "yesterday". Empty means today.
func (c *Context) ResolveDate(arg string) (string, error) {
	today := c.Today()
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return utils.AddDays(today, 1)
	case "yesterday":
		return utils.AddDays(today, -1)
	}
	if _, err := utils.ParseDate(arg); err != nil {
		return "", err
	}
	return arg, nil
}

// DefaultDuration returns the configured slot length in minutes
func (c *Context) DefaultDuration() int {
	if c.Config == nil || c.Config.DefaultDurationMin <= 0 {
		return constants.DefaultSlotDurationMin
	}
	return c.Config.DefaultDurationMin
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path := c.Provider.GetConfigPath()
	if !backup.Supported(path) {
		return
	}
	mgr := backup.NewManager(path)
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// OpenProvider picks a backend for target: a PostgreSQL URL, a .json file or
// otherwise a SQLite database. The provider is returned unopened.
func OpenProvider(target string) (storage.Provider, error) {
	if postgres.IsConnString(target) {
		if valid, err := postgres.ValidateConnString(target); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection string contains a password; store it with 'coins config set-password' or set %s instead", keyring.EnvPassword)
			}
			return nil, err
		}
		password, source := keyring.ResolvePassword()
		logger.Debug("Resolved database password", "source", source)
		return postgres.New(postgres.WithPassword(target, password)), nil
	}
	path := config.ExpandPath(target)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}
