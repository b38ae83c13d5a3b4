package actions

import (
	"fmt"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/errors"
	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
)

// locate finds the date holding id. With an empty date every stored day is searched.
func locate(ctx *cli.Context, store *ledger.Store, id, date string) (string, models.Action, error) {
	if date != "" {
		resolved, err := ctx.ResolveDate(date)
		if err != nil {
			return "", models.Action{}, err
		}
		if a, ok := store.GetAction(resolved, id); ok {
			return resolved, a, nil
		}
		return "", models.Action{}, fmt.Errorf("%s on %s: %w", id, resolved, errors.ErrActionNotFound)
	}
	for _, d := range store.Dates() {
		if a, ok := store.GetAction(d, id); ok {
			return d, a, nil
		}
	}
	return "", models.Action{}, fmt.Errorf("%s: %w", id, errors.ErrActionNotFound)
}

type EditCmd struct {
	ID       string  `arg:"" help:"Action ID."`
	Date     string  `short:"D" help:"Date holding the action. Searched when omitted."`
	Title    *string `help:"New title."`
	Start    string  `short:"s" help:"New start time (HH:MM)."`
	End      string  `short:"e" help:"New end time (HH:MM)."`
	Category *string `short:"c" help:"New category."`
	Priority *string `short:"p" help:"New priority."`
	Note     *string `short:"n" help:"New note. Pass an empty string to clear."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date, _, err := locate(ctx, store, c.ID, c.Date)
	if err != nil {
		return err
	}

	patch := models.ActionPatch{ID: c.ID, Title: c.Title, Note: c.Note}
	if patch.StartTime, err = parseOptionalTime(c.Start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if patch.EndTime, err = parseOptionalTime(c.End); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if c.Category != nil {
		cat, err := models.ParseCategory(*c.Category)
		if err != nil {
			return err
		}
		patch.Category = &cat
	}
	if c.Priority != nil {
		p, err := models.ParsePriority(*c.Priority)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}

	saved, err := store.SaveAction(date, patch)
	if err != nil {
		return fmt.Errorf("failed to update action: %w", err)
	}
	fmt.Printf("Updated action: %s on %s %s-%s\n", saved.Title, date, saved.StartTime, saved.EndTime)
	return nil
}

type DeleteCmd struct {
	ID   string `arg:"" help:"Action ID."`
	Date string `short:"D" help:"Date holding the action. Searched when omitted."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date, a, err := locate(ctx, store, c.ID, c.Date)
	if err != nil {
		return err
	}
	if err := store.DeleteAction(date, c.ID); err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}
	fmt.Printf("Deleted action: %s on %s\n", a.Title, date)
	return nil
}

type MoveCmd struct {
	ID   string `arg:"" help:"Action ID."`
	Hour int    `arg:"" help:"Hour (0-23) the action should start at."`
	Date string `short:"D" help:"Date holding the action. Searched when omitted."`
}

func (c *MoveCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date, _, err := locate(ctx, store, c.ID, c.Date)
	if err != nil {
		return err
	}
	moved, err := store.MoveAction(date, c.ID, c.Hour)
	if err != nil {
		return fmt.Errorf("failed to move action: %w", err)
	}
	fmt.Printf("Moved %s to %s-%s\n", moved.Title, moved.StartTime, moved.EndTime)
	return nil
}

type NextCmd struct {
	Date     string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, tomorrow)."`
	Duration int    `short:"d" help:"Slot length in minutes."`
}

func (c *NextCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	duration := c.Duration
	if duration <= 0 {
		duration = ctx.DefaultDuration()
	}
	slot := ctx.Scheduler.NextAvailableSlot(store.Day(date).Actions, store.Settings(), duration)
	fmt.Printf("Next free %d min slot on %s: %s-%s\n", duration, date, slot.StartTime, slot.EndTime)
	return nil
}

type NotesCmd struct {
	Text string `arg:"" optional:"" help:"Replacement notes. Omit to print the current notes."`
	Date string `short:"D" help:"Date (YYYY-MM-DD, today, tomorrow)." default:"today"`
}

func (c *NotesCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if c.Text == "" {
		fmt.Println(store.Day(date).Notes)
		return nil
	}
	if err := store.SetNotes(date, c.Text); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	fmt.Printf("Notes saved for %s\n", date)
	return nil
}

type SuggestCmd struct {
	Query string `arg:"" help:"Part of a title."`
}

func (c *SuggestCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	suggestions := store.Suggestions(c.Query)
	if len(suggestions) == 0 {
		fmt.Println("No suggestions.")
		return nil
	}
	for _, h := range suggestions {
		fmt.Printf("  %s [%s] x%d\n", h.Title, h.Category.DisplayName(), h.Count)
	}
	return nil
}
