package actions

import (
	"fmt"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/recurrence"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

type AddCmd struct {
	Title    string `arg:"" help:"Action title."`
	Date     string `short:"D" help:"Date (YYYY-MM-DD, today, tomorrow)." default:"today"`
	Start    string `short:"s" help:"Start time (HH:MM). Defaults to the next free slot."`
	End      string `short:"e" help:"End time (HH:MM)."`
	Duration int    `short:"d" help:"Duration in minutes when --end is not given."`
	Category string `short:"c" help:"Category (work, rest, sport, communication, learn, entertainment, tasks, other)." default:"other"`
	Priority string `short:"p" help:"Priority (low, medium, high)." default:"medium"`
	Note     string `short:"n" help:"Free text note."`
	Repeat   string `short:"r" help:"RFC 5545 recurrence rule, e.g. FREQ=WEEKLY;BYDAY=MO,WE."`
	Until    string `help:"Last date for --repeat (YYYY-MM-DD). Defaults to 90 days out."`
}

func (c *AddCmd) Validate() error {
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	if c.End != "" && c.Duration > 0 {
		return fmt.Errorf("use either --end or --duration, not both")
	}
	if c.Until != "" && c.Repeat == "" {
		return fmt.Errorf("--until requires --repeat")
	}
	return nil
}

// build resolves the flags into a complete action for date
func (c *AddCmd) build(ctx *cli.Context, store *ledger.Store, date string) (models.Action, error) {
	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return models.Action{}, err
	}
	priority, err := models.ParsePriority(c.Priority)
	if err != nil {
		return models.Action{}, err
	}

	duration := c.Duration
	if duration == 0 {
		duration = ctx.DefaultDuration()
	}

	start := c.Start
	if start == "" {
		slot := ctx.Scheduler.NextAvailableSlot(store.Day(date).Actions, store.Settings(), duration)
		start = slot.StartTime
	}
	start, err = utils.NormalizeTime(start)
	if err != nil {
		return models.Action{}, fmt.Errorf("start: %w", err)
	}

	end := utils.MinutesToTime(utils.TimeToMinutes(start) + duration)
	if c.End != "" {
		if end, err = utils.NormalizeTime(c.End); err != nil {
			return models.Action{}, fmt.Errorf("end: %w", err)
		}
	}

	a := models.Action{
		Title:     c.Title,
		Category:  category,
		Priority:  priority,
		StartTime: start,
		EndTime:   end,
		Note:      c.Note,
	}
	return a, a.Validate()
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	a, err := c.build(ctx, store, date)
	if err != nil {
		return err
	}

	if c.Repeat != "" {
		return c.addRecurring(store, date, a)
	}

	saved, err := store.SaveAction(date, models.PatchFromAction(a))
	if err != nil {
		return fmt.Errorf("failed to add action: %w", err)
	}
	fmt.Printf("Added action: %s on %s %s-%s (ID: %s)\n", saved.Title, date, saved.StartTime, saved.EndTime, saved.ID)
	return nil
}

func (c *AddCmd) addRecurring(store *ledger.Store, date string, a models.Action) error {
	var opts recurrence.Options
	if c.Until != "" {
		until, err := utils.ParseDate(c.Until)
		if err != nil {
			return fmt.Errorf("until: %w", err)
		}
		opts.Until = until
	}

	res, err := recurrence.Expand(c.Repeat, date, opts)
	if err != nil {
		return err
	}
	if len(res.Dates) == 0 {
		fmt.Println("Recurrence rule produced no dates.")
		return nil
	}

	batch := make([]ledger.DatedAction, 0, len(res.Dates))
	for _, d := range res.Dates {
		batch = append(batch, ledger.DatedAction{Date: d, Action: a})
	}
	result, err := store.AddActions(batch)
	if err != nil {
		return fmt.Errorf("failed to add recurring action: %w", err)
	}

	fmt.Printf("Added %q on %d dates (%s to %s)\n", a.Title, result.Imported, res.Dates[0], res.Dates[len(res.Dates)-1])
	if res.Truncated {
		fmt.Printf("Stopped after %d occurrences.\n", recurrence.MaxOccurrences)
	}
	return nil
}

// parseOptionalTime normalizes a flag value, leaving empty values alone
func parseOptionalTime(v string) (*string, error) {
	if v == "" {
		return nil, nil
	}
	t, err := utils.NormalizeTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
