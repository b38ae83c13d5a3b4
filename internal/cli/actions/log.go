package actions

import (
	"fmt"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// LogCmd books a session that just finished, ending at the current minute
type LogCmd struct {
	Duration int    `short:"d" help:"Session length in minutes." default:"25"`
	Title    string `short:"t" help:"Action title." default:"Focus session"`
	Category string `short:"c" help:"Category (work, rest, sport, communication, learn, entertainment, tasks, other)." default:"work"`
	Priority string `short:"p" help:"Priority (low, medium, high)." default:"medium"`
	Note     string `short:"n" help:"Free text note. Defaults to the session length."`
}

func (c *LogCmd) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}

// build returns the action covering [now-duration, now) on today's date
func (c *LogCmd) build(ctx *cli.Context) (string, models.Action, error) {
	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return "", models.Action{}, err
	}
	priority, err := models.ParsePriority(c.Priority)
	if err != nil {
		return "", models.Action{}, err
	}

	now := ctx.LocalNow()
	end := now.Hour()*constants.MinutesPerHour + now.Minute()
	start := end - c.Duration
	if start < 0 {
		return "", models.Action{}, fmt.Errorf("a %d minute session ending at %s started before midnight; use 'coins add' for the previous day",
			c.Duration, utils.MinutesToTime(end))
	}

	note := c.Note
	if note == "" {
		note = fmt.Sprintf("%d minute session", c.Duration)
	}
	a := models.Action{
		Title:     c.Title,
		Category:  category,
		Priority:  priority,
		StartTime: utils.MinutesToTime(start),
		EndTime:   utils.MinutesToTime(end),
		Note:      note,
	}
	return utils.Today(now), a, a.Validate()
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date, a, err := c.build(ctx)
	if err != nil {
		return err
	}
	saved, err := store.SaveAction(date, models.PatchFromAction(a))
	if err != nil {
		return fmt.Errorf("failed to log session: %w", err)
	}
	fmt.Printf("Logged %s on %s %s-%s (ID: %s)\n", saved.Title, date, saved.StartTime, saved.EndTime, saved.ID)
	return nil
}
