// Package budget derives the daily coin budget from the sleep schedule.
package budget

import (
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// SleepMinutes returns the length of the sleep window. A window whose end is not
// after its start crosses midnight, so equal boundaries mean a full day of sleep.
func SleepMinutes(sleepStart, sleepEnd int) int {
	if sleepEnd > sleepStart {
		return sleepEnd - sleepStart
	}
	return (constants.MinutesPerDay - sleepStart) + sleepEnd
}

// AwakeMinutes returns the minutes between waking up and going to bed
func AwakeMinutes(settings models.Settings) int {
	start, err := utils.ParseTimeOfDay(settings.SleepStart)
	if err != nil {
		return 0
	}
	end, err := utils.ParseTimeOfDay(settings.SleepEnd)
	if err != nil {
		return 0
	}
	return constants.MinutesPerDay - SleepMinutes(start, end)
}

// AvailableCoins returns the number of whole awake hours. Partial hours are dropped.
// Settings with malformed times yield 0.
func AvailableCoins(settings models.Settings) int {
	return AwakeMinutes(settings) / constants.MinutesPerHour
}

// SleepCountdown returns the time left until the next sleep start after now
func SleepCountdown(settings models.Settings, now time.Time) time.Duration {
	start, err := utils.ParseTimeOfDay(settings.SleepStart)
	if err != nil {
		return 0
	}
	bed := time.Date(now.Year(), now.Month(), now.Day(), start/60, start%60, 0, 0, now.Location())
	if !bed.After(now) {
		bed = bed.AddDate(0, 0, 1)
	}
	return bed.Sub(now)
}

// IsCurrentHour reports whether hour on date is the hour now falls in
func IsCurrentHour(date string, hour int, now time.Time) bool {
	return utils.Today(now) == date && now.Hour() == hour
}
