package system

import (
	"fmt"
	"strings"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/validation"
)

// CheckCmd reports overlapping actions and actions placed in sleep hours
type CheckCmd struct {
	Date string `arg:"" optional:"" help:"Day to check (YYYY-MM-DD, 'today', 'tomorrow'). Defaults to today."`
	All  bool   `short:"a" help:"Check every stored day."`
}

func (c *CheckCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	v := validation.New()

	var result validation.ValidationResult
	if c.All {
		result = v.ValidateData(store.Snapshot())
	} else {
		date, err := ctx.ResolveDate(c.Date)
		if err != nil {
			return err
		}
		day, err := store.GetDay(date)
		if err != nil {
			return err
		}
		result = v.ValidateDay(date, day, store.Settings())
	}

	fmt.Println(strings.TrimSuffix(result.FormatReport(), "\n"))
	if result.HasConflicts() {
		return fmt.Errorf("%d conflicts found", len(result.Conflicts))
	}
	return nil
}
