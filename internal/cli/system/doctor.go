package system

import (
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/backup"
	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/keyring"
	"github.com/ktrou69-commits/energy-coins/internal/migration"
	"github.com/ktrou69-commits/energy-coins/internal/storage/postgres"
	"github.com/ktrou69-commits/energy-coins/internal/storage/sqlite"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
	"github.com/ktrou69-commits/energy-coins/internal/validation"
	"github.com/ktrou69-commits/energy-coins/migrations"
)

type DoctorCmd struct{}

type check struct {
	name       string
	needsStore bool
	warnOnly   bool
	run        func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsStore: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Data validation", needsStore: true, run: checkValidation},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Keyring", warnOnly: true, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	for _, c := range checks {
		if c.needsStore && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

// database returns the SQL handle and migration set behind the provider, if any
func database(ctx *cli.Context) (*sql.DB, *migration.Runner, error) {
	var (
		db     *sql.DB
		dir    string
		driver migration.Driver
	)
	switch s := ctx.Provider.(type) {
	case *sqlite.Store:
		db, dir, driver = s.GetDB(), "sqlite", migration.DriverSQLite
	case *postgres.Store:
		db, dir, driver = s.GetDB(), "postgres", migration.DriverPostgres
	default:
		return nil, nil, nil
	}
	if db == nil {
		return nil, nil, fmt.Errorf("database connection is nil")
	}
	subFS, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access migrations: %w", err)
	}
	return db, migration.NewRunner(db, subFS, driver), nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Provider.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	db, _, err := database(ctx)
	if err != nil || db == nil {
		return err
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func versions(ctx *cli.Context) (current, latest int, ok bool, err error) {
	_, runner, err := database(ctx)
	if err != nil || runner == nil {
		// JSON store has no schema
		return 0, 0, false, err
	}
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, false, fmt.Errorf("failed to get current schema version: %w", err)
	}
	if latest, err = runner.GetLatestVersion(); err != nil {
		return 0, 0, false, fmt.Errorf("failed to get latest schema version: %w", err)
	}
	return current, latest, true, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, ok, err := versions(ctx)
	if err != nil || !ok {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, ok, err := versions(ctx)
	if err != nil || !ok {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Provider.GetConfigPath()
	if !backup.Supported(path) {
		return fmt.Errorf("automatic backups are not available for %s storage", path)
	}
	backups, err := backup.NewManager(path).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'coins backup create'")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	data, err := ctx.Provider.LoadData()
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	if err := data.Settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	seen := make(map[string]string)
	for date, day := range data.Days {
		if _, err := utils.ParseDate(date); err != nil {
			return fmt.Errorf("invalid day key %q", date)
		}
		for _, a := range day.Actions {
			if other, dup := seen[a.ID]; dup {
				return fmt.Errorf("duplicate action ID %s on %s and %s", a.ID, other, date)
			}
			seen[a.ID] = date
		}
	}

	if result := validation.New().ValidateData(data); result.HasConflicts() {
		return fmt.Errorf("%d conflicts found, run 'coins check --all' for details", len(result.Conflicts))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Config != nil {
		if _, err := utils.LoadLocation(ctx.Config.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", ctx.Config.Timezone, err)
		}
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if _, ok := ctx.Provider.(*postgres.Store); !ok {
		return nil
	}
	if _, source := keyring.ResolvePassword(); source == keyring.SourceNone {
		if !keyring.IsAvailable() {
			return fmt.Errorf("OS keyring is not available and %s is not set", keyring.EnvPassword)
		}
		return fmt.Errorf("no password stored; relying on .pgpass or trust authentication")
	}
	return nil
}
