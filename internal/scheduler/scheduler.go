// Package scheduler proposes free slots inside the awake window.
package scheduler

import (
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/occupancy"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

type Scheduler struct {
	now func() time.Time
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock overrides the wall clock used when no active hours exist
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveHours lists the hours from wakeHour to sleepHour inclusive. When sleepHour
// is not after wakeHour the range wraps through midnight.
func ActiveHours(wakeHour, sleepHour int) []int {
	var hours []int
	if sleepHour > wakeHour {
		for h := wakeHour; h <= sleepHour; h++ {
			hours = append(hours, h)
		}
		return hours
	}
	for h := wakeHour; h < constants.HoursPerDay; h++ {
		hours = append(hours, h)
	}
	for h := 0; h <= sleepHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// ActiveHoursFor returns the active hours of settings, or nil if the sleep
// boundaries cannot be parsed
func ActiveHoursFor(settings models.Settings) []int {
	if !utils.IsValidTime(settings.SleepStart) || !utils.IsValidTime(settings.SleepEnd) {
		return nil
	}
	return ActiveHours(utils.HourOf(settings.SleepEnd), utils.HourOf(settings.SleepStart))
}

// NextAvailableSlot returns the first active hour whose next duration minutes are
// all free. Search is hour granular. If no hour fits, the first active hour is
// returned even though it overlaps; with no active hours the current time is used.
func (s *Scheduler) NextAvailableSlot(actions []models.Action, settings models.Settings, duration int) models.Slot {
	if duration <= 0 {
		duration = constants.DefaultSlotDurationMin
	}

	occupied := occupancy.OccupiedMinutes(actions)
	hours := ActiveHoursFor(settings)

	for _, h := range hours {
		start := h * constants.MinutesPerHour
		if rangeFree(occupied, start, start+duration) {
			return slotAt(start, duration)
		}
	}

	if len(hours) > 0 {
		return slotAt(hours[0]*constants.MinutesPerHour, duration)
	}

	now := s.now()
	return slotAt(now.Hour()*constants.MinutesPerHour+now.Minute(), duration)
}

// MoveSlot returns the range an action takes when dropped on hour, keeping its duration
func MoveSlot(a models.Action, hour int) models.Slot {
	return slotAt(hour*constants.MinutesPerHour, a.DurationMinutes())
}

func rangeFree(occupied map[int]bool, from, to int) bool {
	for m := from; m < to; m++ {
		if occupied[m] {
			return false
		}
	}
	return true
}

func slotAt(start, duration int) models.Slot {
	return models.Slot{
		StartTime: utils.MinutesToTime(start),
		EndTime:   utils.MinutesToTime(start + duration),
	}
}
