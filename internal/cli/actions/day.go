package actions

import (
	"fmt"
	"strings"

	"github.com/ktrou69-commits/energy-coins/internal/budget"
	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/occupancy"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
)

type DayCmd struct {
	Date     string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, tomorrow, yesterday)."`
	Timeline bool   `short:"t" help:"Show the hour-by-hour coin timeline."`
	ShowIDs  bool   `help:"Show action IDs." name:"show-ids"`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	settings := store.Settings()
	day := store.Day(date)
	available := budget.AvailableCoins(settings)
	used := occupancy.UsedCoins(day.Actions)

	fmt.Printf("%s  coins: %d/%d used\n", date, used, available)
	if date == ctx.Today() {
		left := budget.SleepCountdown(settings, ctx.LocalNow())
		fmt.Printf("Sleep in %dh %02dm\n", int(left.Hours()), int(left.Minutes())%60)
	}
	fmt.Println()

	if len(day.Actions) == 0 {
		fmt.Println("No actions planned.")
	}
	for _, a := range day.Actions {
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", a.ID)
		}
		fmt.Printf("  %s-%s  %s%s [%s, %s]\n",
			a.StartTime, a.EndTime, a.Title, idStr, a.Category.DisplayName(), a.Priority.DisplayName())
		if a.Note != "" {
			fmt.Printf("      %s\n", a.Note)
		}
	}

	if c.Timeline {
		fmt.Println()
		now := ctx.LocalNow()
		for _, coin := range occupancy.Timeline(day.Actions, scheduler.ActiveHoursFor(settings)) {
			marker := " "
			if budget.IsCurrentHour(date, coin.Hour, now) {
				marker = ">"
			}
			label := "free"
			if coin.Occupied {
				label = coin.Action.Title
			}
			fmt.Printf(" %s %02d:00  %s\n", marker, coin.Hour, label)
		}
	}

	if strings.TrimSpace(day.Notes) != "" {
		fmt.Printf("\nNotes:\n%s\n", day.Notes)
	}
	return nil
}
