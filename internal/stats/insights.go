package stats

import (
	"fmt"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/budget"
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
)

const (
	highUtilizationPct = 80
	lowUtilizationPct  = 50
	maxWorkRestRatio   = 3
)

type Insight struct {
	Type    InsightType `json:"type"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// Report is the daily summary
type Report struct {
	Date              string          `json:"date"`
	TotalHours        float64         `json:"totalHours"`
	AvailableCoins    int             `json:"availableCoins"`
	UsedCoins         int             `json:"usedCoins"`
	Utilization       float64         `json:"utilization"`
	CategoryBreakdown CategoryHours   `json:"categoryBreakdown"`
	Insights          []Insight       `json:"insights"`
	TopCategory       models.Category `json:"topCategory"`
	TopCategoryHours  float64         `json:"topCategoryHours"`
}

// Utilization returns planned hours as a percentage of the coin budget.
// A zero budget yields 0.
func Utilization(totalHours float64, availableCoins int) float64 {
	if availableCoins <= 0 {
		return 0
	}
	return totalHours / float64(availableCoins) * 100
}

// ProductivityInsights derives hints about utilization, work/rest balance and the busiest hour
func (a *Aggregator) ProductivityInsights(date string) []Insight {
	cats := a.CategoryStats(date)
	hourly := a.HourlyStats(date)
	insights := []Insight{}

	util := Utilization(cats.Total(), budget.AvailableCoins(a.src.Settings()))
	switch {
	case util > highUtilizationPct:
		insights = append(insights, Insight{
			Type:    InsightSuccess,
			Title:   "High productivity",
			Message: fmt.Sprintf("You used %.1f%% of your available time", util),
		})
	case util < lowUtilizationPct:
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Title:   "Time in reserve",
			Message: fmt.Sprintf("Only %.1f%% of your time is planned", util),
		})
	}

	rest := cats[models.CategoryRest]
	if rest == 0 {
		rest = 1
	}
	if cats[models.CategoryWork]/rest > maxWorkRestRatio {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Title:   "Work and rest out of balance",
			Message: "Consider planning more time to rest",
		})
	}

	peak, peakCount := 0, 0
	for h, n := range hourly {
		if n > peakCount {
			peak, peakCount = h, n
		}
	}
	if peakCount > 0 {
		insights = append(insights, Insight{
			Type:    InsightInfo,
			Title:   "Peak activity",
			Message: fmt.Sprintf("Your busiest hour is %s", utils.MinutesToTime(peak*constants.MinutesPerHour)),
		})
	}

	return insights
}

// SummaryReport bundles the day's totals, breakdown and insights
func (a *Aggregator) SummaryReport(date string) Report {
	cats := a.CategoryStats(date)
	coins := budget.AvailableCoins(a.src.Settings())
	top, topHours := cats.Top()
	return Report{
		Date:              date,
		TotalHours:        cats.Total(),
		AvailableCoins:    coins,
		UsedCoins:         a.UsedCoins(date),
		Utilization:       Utilization(cats.Total(), coins),
		CategoryBreakdown: cats,
		Insights:          a.ProductivityInsights(date),
		TopCategory:       top,
		TopCategoryHours:  topHours,
	}
}

// IsDayProductive reports whether at least two hours were planned on date
func (a *Aggregator) IsDayProductive(date string) bool {
	return a.CategoryStats(date).Total() >= constants.ProductiveDayMinHours
}

// ProductiveDays counts stored days that are productive
func (a *Aggregator) ProductiveDays() int {
	n := 0
	for _, date := range a.src.Dates() {
		if a.IsDayProductive(date) {
			n++
		}
	}
	return n
}

// IsMonthProductive reports whether at least a third of the month's days were productive
func (a *Aggregator) IsMonthProductive(year int, month time.Month) bool {
	days := utils.DaysInMonth(year, month)
	n := 0
	for day := 1; day <= days; day++ {
		if a.IsDayProductive(utils.FormatDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))) {
			n++
		}
	}
	return n >= days/3
}
