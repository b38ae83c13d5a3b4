package stats

import (
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/budget"
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

const daysPerWeek = 7

// LifeStats summarizes the life calendar. It is all zero when no birth date is set.
type LifeStats struct {
	DaysLived            int     `json:"daysLived"`
	DaysRemaining        int     `json:"daysRemaining"`
	TotalDays            int     `json:"totalDays"`
	WeeksLived           int     `json:"weeksLived"`
	LivedPercentage      float64 `json:"livedPercentage"`
	RemainingPercentage  float64 `json:"remainingPercentage"`
	ProductiveDays       int     `json:"productiveDays"`
	ProductivePercentage float64 `json:"productivePercentage"`
	CoinsRemaining       int     `json:"coinsRemaining"`
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / constants.HoursPerDay)
}

// LifeStats measures the span from birth to birth+expectancyYears against the
// calendar day of now. Remaining coins assume today's budget for every remaining day.
func (a *Aggregator) LifeStats(birth string, expectancyYears int, now time.Time) LifeStats {
	if birth == "" || expectancyYears <= 0 {
		return LifeStats{}
	}
	born, err := utils.ParseDate(birth)
	if err != nil {
		return LifeStats{}
	}
	today, err := utils.ParseDate(utils.Today(now))
	if err != nil {
		return LifeStats{}
	}

	total := daysBetween(born, born.AddDate(expectancyYears, 0, 0))
	lived := max(0, daysBetween(born, today))
	remaining := max(0, total-lived)

	ls := LifeStats{
		DaysLived:      lived,
		DaysRemaining:  remaining,
		TotalDays:      total,
		WeeksLived:     lived / daysPerWeek,
		ProductiveDays: a.ProductiveDays(),
		CoinsRemaining: remaining * budget.AvailableCoins(a.src.Settings()),
	}
	if total > 0 {
		ls.LivedPercentage = float64(lived) / float64(total) * 100
		ls.RemainingPercentage = float64(remaining) / float64(total) * 100
	}
	if lived > 0 {
		ls.ProductivePercentage = float64(ls.ProductiveDays) / float64(lived) * 100
	}
	return ls
}

// IsWeekProductive reports whether the weekIndex-th week of life, counted in
// seven day blocks from the birth date, had at least three productive days.
func (a *Aggregator) IsWeekProductive(birth string, weekIndex int) bool {
	born, err := utils.ParseDate(birth)
	if err != nil || weekIndex < 0 {
		return false
	}
	start := born.AddDate(0, 0, weekIndex*daysPerWeek)
	n := 0
	for i := 0; i < daysPerWeek; i++ {
		if a.IsDayProductive(utils.FormatDate(start.AddDate(0, 0, i))) {
			n++
		}
	}
	return n >= constants.ProductiveWeekMinDays
}

// IsYearProductive reports whether at least half of the year's months were productive
func (a *Aggregator) IsYearProductive(year int) bool {
	n := 0
	for m := time.January; m <= time.December; m++ {
		if a.IsMonthProductive(year, m) {
			n++
		}
	}
	return n >= constants.ProductiveYearMinMonths
}
