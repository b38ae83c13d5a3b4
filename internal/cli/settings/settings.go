package settings

import (
	"fmt"

	"github.com/ktrou69-commits/energy-coins/internal/budget"
	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/models"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	SleepStart    *string `help:"Bedtime (HH:MM)."`
	SleepEnd      *string `help:"Wake-up time (HH:MM)."`
	Theme         *string `help:"Theme (dark or light)." enum:"dark,light"`
	NotifyMorning *bool   `help:"Enable or disable the morning planning reminder."`
	NotifySleep   *bool   `help:"Enable or disable the bedtime reminder."`

	BirthDate      *string `help:"Birth date for the life calendar (YYYY-MM-DD, empty to clear)."`
	LifeExpectancy *int    `help:"Life expectancy in years (1-120)."`
}

func (c *SettingsCmd) patch() (models.SettingsPatch, bool) {
	p := models.SettingsPatch{
		SleepStart:    c.SleepStart,
		SleepEnd:      c.SleepEnd,
		Theme:         c.Theme,
		NotifyMorning: c.NotifyMorning,
		NotifySleep:   c.NotifySleep,

		BirthDate:      c.BirthDate,
		LifeExpectancy: c.LifeExpectancy,
	}
	changed := p.SleepStart != nil || p.SleepEnd != nil || p.Theme != nil ||
		p.NotifyMorning != nil || p.NotifySleep != nil ||
		p.BirthDate != nil || p.LifeExpectancy != nil
	return p, changed
}

func printSettings(s models.Settings) {
	fmt.Println("Current Settings:")
	fmt.Printf("  Sleep Start:      %s\n", s.SleepStart)
	fmt.Printf("  Sleep End:        %s\n", s.SleepEnd)
	fmt.Printf("  Available Coins:  %d\n", budget.AvailableCoins(s))
	fmt.Printf("  Theme:            %s\n", s.Theme)
	fmt.Println("\nNotification Settings:")
	fmt.Printf("  Morning Reminder: %v\n", s.Notifications.Morning)
	fmt.Printf("  Sleep Reminder:   %v\n", s.Notifications.Sleep)
	fmt.Println("\nLife Calendar:")
	birth := s.Life.BirthDate
	if birth == "" {
		birth = "not set"
	}
	fmt.Printf("  Birth Date:       %s\n", birth)
	fmt.Printf("  Life Expectancy:  %d years\n", s.Life.Years())
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}

	if c.List {
		printSettings(store.Settings())
		return nil
	}

	p, changed := c.patch()
	if !changed {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	updated, err := store.UpdateSettings(p)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("Settings updated successfully. You now have %d coins per day.\n", budget.AvailableCoins(updated))
	return nil
}
