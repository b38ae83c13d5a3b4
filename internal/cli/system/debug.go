package system

import (
	"encoding/json"
	"fmt"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/errors"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" name:"db-path" help:"Show storage path."`
	DumpDay      *DebugDumpDayCmd      `cmd:"" help:"Dump a day as JSON."`
	DumpAction   *DebugDumpActionCmd   `cmd:"" help:"Dump an action as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings as JSON."`
}

func printJSON(v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"path":   ctx.Provider.GetConfigPath(),
		"config": ctx.ConfigPath,
	})
}

type DebugDumpDayCmd struct {
	Date string `arg:"" optional:"" help:"Date to dump (YYYY-MM-DD, 'today', 'tomorrow'). Defaults to today."`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(cmd.Date)
	if err != nil {
		return err
	}
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	day, err := store.GetDay(date)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{"date": date, "day": day})
}

type DebugDumpActionCmd struct {
	ID   string `arg:"" help:"Action ID."`
	Date string `short:"D" help:"Day of the action. Searches every day when omitted."`
}

func (cmd *DebugDumpActionCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	dates := store.Dates()
	if cmd.Date != "" {
		date, err := ctx.ResolveDate(cmd.Date)
		if err != nil {
			return err
		}
		dates = []string{date}
	}
	for _, date := range dates {
		if a, ok := store.GetAction(date, cmd.ID); ok {
			return printJSON(map[string]interface{}{"date": date, "action": a})
		}
	}
	return fmt.Errorf("%w: %s", errors.ErrActionNotFound, cmd.ID)
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	return printJSON(store.Settings())
}
