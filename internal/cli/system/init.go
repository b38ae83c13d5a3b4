package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing data file before initialization."`
	Source string `help:"Database path, .json file or connection string to copy data from."`
	Sample bool   `help:"Fill today with a sample day."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Provider.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized coins storage at: %s\n", ctx.Provider.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	if c.Sample {
		n, err := addSampleDay(ctx)
		if err != nil {
			return fmt.Errorf("failed to add sample day: %w", err)
		}
		fmt.Printf("✓ Added %d sample actions for %s\n", n, ctx.Today())
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	path := ctx.Provider.GetConfigPath()
	if postgres.IsConnString(path) || path == "postgresql" {
		return fmt.Errorf("--force is not supported for PostgreSQL storage")
	}
	if c.Source != "" {
		absPath, err := filepath.Abs(path)
		if err == nil {
			path = absPath
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == path {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
	}
	if _, err := os.Stat(path); err == nil {
		if err := ctx.Provider.Close(); err != nil {
			return fmt.Errorf("failed to close existing storage: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete existing storage: %w", err)
		}
		ctx.ResetLedger()
		fmt.Printf("Deleted existing storage at: %s\n", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing storage: %w", err)
	}
	return nil
}

// copyData replaces the destination document with the one in Source
func (c *InitCmd) copyData(ctx *cli.Context) error {
	source, err := cli.OpenProvider(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source: %w", err)
	}
	defer source.Close()

	data, err := source.LoadData()
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}
	if err := ctx.Provider.SaveData(data); err != nil {
		return fmt.Errorf("failed to write destination: %w", err)
	}
	ctx.ResetLedger()
	fmt.Printf("  Copied %d days and %d actions\n", len(data.Days), data.ActionCount())
	return nil
}

var sampleDay = []struct {
	title      string
	start, end string
	category   models.Category
	priority   models.Priority
}{
	{"Breakfast", "08:30", "09:00", models.CategoryRest, models.PriorityMedium},
	{"Project work", "09:00", "12:00", models.CategoryWork, models.PriorityHigh},
	{"Lunch", "12:00", "13:00", models.CategoryRest, models.PriorityMedium},
	{"Call mom", "13:30", "14:00", models.CategoryCommunication, models.PriorityMedium},
	{"Study", "15:00", "16:30", models.CategoryLearn, models.PriorityHigh},
	{"Groceries", "17:00", "17:30", models.CategoryTasks, models.PriorityMedium},
	{"Workout", "18:00", "19:30", models.CategorySport, models.PriorityHigh},
	{"Movie", "20:00", "22:00", models.CategoryEntertainment, models.PriorityLow},
}

func addSampleDay(ctx *cli.Context) (int, error) {
	store, err := ctx.Ledger()
	if err != nil {
		return 0, err
	}
	today := ctx.Today()
	for i, s := range sampleDay {
		title, start, end, cat, prio := s.title, s.start, s.end, s.category, s.priority
		patch := models.ActionPatch{Title: &title, StartTime: &start, EndTime: &end, Category: &cat, Priority: &prio}
		if _, err := store.SaveAction(today, patch); err != nil {
			return i, err
		}
	}
	return len(sampleDay), nil
}
