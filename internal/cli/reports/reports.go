package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/stats"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

type StatsCmd struct {
	Day    StatsDayCmd    `cmd:"" help:"Hours per category for one day." default:"1"`
	Week   StatsWeekCmd   `cmd:"" help:"Seven day breakdown."`
	Month  StatsMonthCmd  `cmd:"" help:"Hours per category for a calendar month."`
	Hourly StatsHourlyCmd `cmd:"" help:"Hour-of-day histogram."`
	Report StatsReportCmd `cmd:"" help:"Daily summary with insights."`
	Life   StatsLifeCmd   `cmd:"" help:"Life calendar built from the birth date and life expectancy."`
}

func aggregator(ctx *cli.Context) (*stats.Aggregator, error) {
	store, err := ctx.Ledger()
	if err != nil {
		return nil, err
	}
	return stats.New(store), nil
}

func printCategories(cats stats.CategoryHours) {
	for _, cat := range models.Categories {
		if cats[cat] == 0 {
			continue
		}
		fmt.Printf("  %-14s %5.2fh\n", cat.DisplayName(), cats[cat])
	}
	fmt.Printf("  %-14s %5.2fh\n", "Total", cats.Total())
}

type StatsDayCmd struct {
	Date string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, yesterday)."`
}

func (c *StatsDayCmd) Run(ctx *cli.Context) error {
	agg, err := aggregator(ctx)
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	fmt.Printf("Category hours for %s:\n", date)
	printCategories(agg.CategoryStats(date))
	return nil
}

// WeekStart returns the first day of the week holding date
func WeekStart(date string, startDay time.Weekday) (string, error) {
	d, err := utils.ParseDate(date)
	if err != nil {
		return "", err
	}
	offset := (int(d.Weekday()) - int(startDay) + 7) % 7
	return utils.FormatDate(d.AddDate(0, 0, -offset)), nil
}

type StatsWeekCmd struct {
	Date string `arg:"" optional:"" help:"Any date inside the week."`
}

func (c *StatsWeekCmd) Run(ctx *cli.Context) error {
	agg, err := aggregator(ctx)
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	first := time.Monday
	if ctx.Config != nil && ctx.Config.WeekStart == "sunday" {
		first = time.Sunday
	}
	start, err := WeekStart(date, first)
	if err != nil {
		return err
	}

	fmt.Printf("Week of %s:\n", start)
	for _, d := range agg.WeekStats(start) {
		bar := strings.Repeat("#", int(d.TotalHours+0.5))
		fmt.Printf("  %s %s %5.2fh %s\n", d.Day, d.Date, d.TotalHours, bar)
	}
	fmt.Println()
	printCategories(agg.WeekCategoryStats(start))
	return nil
}

type StatsMonthCmd struct {
	Month string `arg:"" optional:"" help:"Month as YYYY-MM. Defaults to the current month."`
}

func (c *StatsMonthCmd) Run(ctx *cli.Context) error {
	agg, err := aggregator(ctx)
	if err != nil {
		return err
	}
	now := ctx.LocalNow()
	year, month := now.Year(), now.Month()
	if c.Month != "" {
		t, err := time.Parse("2006-01", c.Month)
		if err != nil {
			return fmt.Errorf("invalid month %q (expected YYYY-MM)", c.Month)
		}
		year, month = t.Year(), t.Month()
	}

	fmt.Printf("%s %d:\n", month, year)
	printCategories(agg.MonthCategoryStats(year, month))
	if agg.IsMonthProductive(year, month) {
		fmt.Println("\nProductive month: at least a third of the days had 2h+ planned.")
	}
	return nil
}

type StatsHourlyCmd struct {
	Date string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, yesterday)."`
}

func (c *StatsHourlyCmd) Run(ctx *cli.Context) error {
	agg, err := aggregator(ctx)
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	hist := agg.HourlyStats(date)
	fmt.Printf("Actions per hour on %s:\n", date)
	for h := 0; h < constants.HoursPerDay; h++ {
		if hist[h] == 0 {
			continue
		}
		fmt.Printf("  %02d:00 %s %d\n", h, strings.Repeat("#", hist[h]), hist[h])
	}
	return nil
}

type StatsReportCmd struct {
	Date string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, yesterday)."`
}

func (c *StatsReportCmd) Run(ctx *cli.Context) error {
	agg, err := aggregator(ctx)
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	r := agg.SummaryReport(date)
	fmt.Printf("Report for %s\n\n", r.Date)
	fmt.Printf("  Planned:     %.2fh\n", r.TotalHours)
	fmt.Printf("  Coins:       %d/%d used\n", r.UsedCoins, r.AvailableCoins)
	fmt.Printf("  Utilization: %.0f%%\n", r.Utilization)
	if r.TopCategory != "" {
		fmt.Printf("  Top:         %s (%.2fh)\n", r.TopCategory.DisplayName(), r.TopCategoryHours)
	}
	fmt.Printf("  Productive days so far: %d\n", agg.ProductiveDays())

	if len(r.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, in := range r.Insights {
			fmt.Printf("  [%s] %s: %s\n", in.Type, in.Title, in.Message)
		}
	}
	return nil
}

type StatsLifeCmd struct {
	Year int `help:"Calendar year to rate. Defaults to the current year."`
}

func productiveMark(ok bool) string {
	if ok {
		return "productive"
	}
	return "not productive"
}

func (c *StatsLifeCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Ledger()
	if err != nil {
		return err
	}
	life := store.Settings().Life
	if life.BirthDate == "" {
		fmt.Println("No birth date set. Use 'coins settings --birth-date YYYY-MM-DD' first.")
		return nil
	}

	agg := stats.New(store)
	now := ctx.LocalNow()
	ls := agg.LifeStats(life.BirthDate, life.Years(), now)
	year := c.Year
	if year == 0 {
		year = now.Year()
	}

	fmt.Printf("Life calendar (born %s, %d years expected)\n\n", life.BirthDate, life.Years())
	fmt.Printf("  Days lived:      %d (%.1f%%)\n", ls.DaysLived, ls.LivedPercentage)
	fmt.Printf("  Days remaining:  %d (%.1f%%)\n", ls.DaysRemaining, ls.RemainingPercentage)
	fmt.Printf("  Total days:      %d\n", ls.TotalDays)
	fmt.Printf("  Productive days: %d (%.1f%% of days lived)\n", ls.ProductiveDays, ls.ProductivePercentage)
	fmt.Printf("  Coins remaining: %d\n", ls.CoinsRemaining)
	fmt.Println()
	fmt.Printf("  Week %d of life: %s\n", ls.WeeksLived+1, productiveMark(agg.IsWeekProductive(life.BirthDate, ls.WeeksLived)))
	fmt.Printf("  Year %d:       %s\n", year, productiveMark(agg.IsYearProductive(year)))
	return nil
}
