package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/cli/actions"
	"github.com/ktrou69-commits/energy-coins/internal/cli/backups"
	"github.com/ktrou69-commits/energy-coins/internal/cli/exports"
	"github.com/ktrou69-commits/energy-coins/internal/cli/reports"
	"github.com/ktrou69-commits/energy-coins/internal/cli/settings"
	"github.com/ktrou69-commits/energy-coins/internal/cli/system"
	"github.com/ktrou69-commits/energy-coins/internal/config"
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/errors"
	"github.com/ktrou69-commits/energy-coins/internal/logger"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
)

var CLI struct {
	Version    kong.VersionFlag
	ConfigFile string `name:"config-file" help:"Path to config.yaml." type:"path" default:"${config_path}"`
	Storage    string `help:"SQLite path, .json file or PostgreSQL URL without a password. Overrides the config file." env:"COINS_STORAGE"`
	Debug      bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize coins storage."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Day      actions.DayCmd       `cmd:"" help:"Show a day and its coins."`
	Add      actions.AddCmd       `cmd:"" help:"Add an action."`
	Edit     actions.EditCmd      `cmd:"" help:"Edit an action."`
	Delete   actions.DeleteCmd    `cmd:"" help:"Delete an action."`
	Move     actions.MoveCmd      `cmd:"" help:"Move an action to another hour."`
	Next     actions.NextCmd      `cmd:"" help:"Show the next free slot."`
	Log      actions.LogCmd       `cmd:"" help:"Log a session that just finished, ending now."`
	Notes    actions.NotesCmd     `cmd:"" help:"Show or set the notes of a day."`
	Suggest  actions.SuggestCmd   `cmd:"" help:"Suggest titles from history."`
	Check    system.CheckCmd      `cmd:"" help:"Check days for overlaps and overbooking."`
	Stats    reports.StatsCmd     `cmd:"" help:"Show statistics."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage sleep schedule and preferences."`
	Export   exports.ExportCmd    `cmd:"" help:"Export data."`
	Import   exports.ImportCmd    `cmd:"" help:"Import data."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups."`
	Remind system.RemindCmd `cmd:"" help:"Show, send or run the morning and bedtime reminders."`
	Serve  system.ServeCmd  `cmd:"" help:"Run the HTTP API."`
	Config system.ConfigCmd `cmd:"" help:"Manage credentials and show configuration."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	DebugCmd system.DebugCmd `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

// commands that open the store themselves, or never need it
var skipLoad = map[string]bool{
	"init":   true,
	"config": true,
	"doctor": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Plan your day in hour-sized energy coins"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	cfg, err := config.Load(CLI.ConfigFile)
	if err != nil {
		if cfg == nil {
			errors.Fatalf("failed to load config %s: %v", CLI.ConfigFile, err)
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: config.Dir(CLI.ConfigFile),
		Level:     cfg.LogLevel,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	target := cfg.Storage
	if CLI.Storage != "" {
		target = CLI.Storage
	}
	store, err := cli.OpenProvider(target)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Provider:   store,
		Config:     cfg,
		ConfigPath: CLI.ConfigFile,
		Scheduler:  scheduler.New(),
	}

	command := strings.Fields(ctx.Command())
	if len(command) > 0 && !skipLoad[command[0]] {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
