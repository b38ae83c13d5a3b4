// Package stats rolls day occupancy up into category, week, month and hour-of-day views.
package stats

import (
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/occupancy"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// DaySource is the read side of the action store
type DaySource interface {
	// Day returns the stored day, or a zero Day when none exists. It must not create one.
	Day(date string) models.Day
	Settings() models.Settings
	Dates() []string
}

// CategoryHours maps every category to fractional hours
type CategoryHours map[models.Category]float64

// NewCategoryHours returns a map with every category set to zero
func NewCategoryHours() CategoryHours {
	c := make(CategoryHours, len(models.Categories))
	for _, cat := range models.Categories {
		c[cat] = 0
	}
	return c
}

// Total sums all categories
func (c CategoryHours) Total() float64 {
	var sum float64
	for _, h := range c {
		sum += h
	}
	return sum
}

// Add adds o into c element-wise
func (c CategoryHours) Add(o CategoryHours) {
	for cat, h := range o {
		c[cat] += h
	}
}

// Top returns the category with the most hours. Ties go to the earlier category in
// display order; an all-zero map returns "".
func (c CategoryHours) Top() (models.Category, float64) {
	var best models.Category
	var bestHours float64
	for _, cat := range models.Categories {
		if c[cat] > bestHours {
			best, bestHours = cat, c[cat]
		}
	}
	return best, bestHours
}

// DayStats is one row of a week view
type DayStats struct {
	Date       string        `json:"date"`
	Day        string        `json:"day"`
	TotalHours float64       `json:"totalHours"`
	Categories CategoryHours `json:"categories"`
}

// Aggregator computes statistics from a DaySource. All methods are reads and never fail;
// malformed dates produce empty results.
type Aggregator struct {
	src DaySource
}

func New(src DaySource) *Aggregator {
	return &Aggregator{src: src}
}

// CategoryStats sums action hours per category for date
func (a *Aggregator) CategoryStats(date string) CategoryHours {
	return categoryHours(a.src.Day(date).Actions)
}

func categoryHours(actions []models.Action) CategoryHours {
	stats := NewCategoryHours()
	for _, act := range actions {
		stats[act.Category] += act.Hours()
	}
	return stats
}

// WeekStats returns seven consecutive days starting at start
func (a *Aggregator) WeekStats(start string) []DayStats {
	d, err := utils.ParseDate(start)
	if err != nil {
		return []DayStats{}
	}
	out := make([]DayStats, 0, 7)
	for i := 0; i < 7; i++ {
		day := d.AddDate(0, 0, i)
		date := utils.FormatDate(day)
		cats := a.CategoryStats(date)
		out = append(out, DayStats{
			Date:       date,
			Day:        day.Weekday().String()[:3],
			TotalHours: cats.Total(),
			Categories: cats,
		})
	}
	return out
}

// WeekCategoryStats sums CategoryStats over the seven days from start
func (a *Aggregator) WeekCategoryStats(start string) CategoryHours {
	total := NewCategoryHours()
	for _, day := range a.WeekStats(start) {
		total.Add(day.Categories)
	}
	return total
}

// MonthCategoryStats sums CategoryStats over every day of the calendar month
func (a *Aggregator) MonthCategoryStats(year int, month time.Month) CategoryHours {
	total := NewCategoryHours()
	for day := 1; day <= utils.DaysInMonth(year, month); day++ {
		date := utils.FormatDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
		total.Add(a.CategoryStats(date))
	}
	return total
}

// HourlyStats counts, per hour of day, how many 60 minute strides of actions land in it.
// Overlapping actions each count, so a bucket can exceed 1.
func (a *Aggregator) HourlyStats(date string) [constants.HoursPerDay]int {
	var hist [constants.HoursPerDay]int
	for _, act := range a.src.Day(date).Actions {
		for _, h := range occupancy.TouchedHours(act) {
			if h >= 0 && h < constants.HoursPerDay {
				hist[h]++
			}
		}
	}
	return hist
}

// UsedCoins returns the deduplicated coin count of date
func (a *Aggregator) UsedCoins(date string) int {
	return occupancy.UsedCoins(a.src.Day(date).Actions)
}
