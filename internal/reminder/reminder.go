// Package reminder schedules the morning planning nudge and the bedtime reminder.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ktrou69-commits/energy-coins/internal/budget"
	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/logger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/notifier"
	"github.com/ktrou69-commits/energy-coins/internal/occupancy"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// Kind names a reminder
type Kind string

const (
	KindMorning Kind = "morning"
	KindSleep   Kind = "sleep"
)

// Source is the read side of the ledger the reminders need
type Source interface {
	Settings() models.Settings
	Day(date string) models.Day
}

// Config controls the schedules
type Config struct {
	MorningSpec  string
	SleepLeadMin int
	Location     *time.Location
}

// Scheduler runs reminders on a cron until stopped
type Scheduler struct {
	src    Source
	sender notifier.Sender
	cfg    Config
	now    func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[Kind]cron.EntryID
}

func New(src Source, sender notifier.Sender, cfg Config) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Scheduler{
		src:     src,
		sender:  sender,
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[Kind]cron.EntryID),
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithChain(cron.Recover(cronLogger{})),
			cron.WithLogger(cronLogger{}),
		),
	}
}

// SleepSpec returns the cron spec firing leadMin minutes before sleep start
func SleepSpec(settings models.Settings, leadMin int) (string, error) {
	start, err := utils.ParseTimeOfDay(settings.SleepStart)
	if err != nil {
		return "", err
	}
	at := ((start-leadMin)%constants.MinutesPerDay + constants.MinutesPerDay) % constants.MinutesPerDay
	return fmt.Sprintf("%d %d * * *", at%60, at/60), nil
}

// MorningMessage summarizes the day ahead
func MorningMessage(settings models.Settings, day models.Day) string {
	coins := budget.AvailableCoins(settings)
	used := occupancy.UsedCoins(day.Actions)
	if used == 0 {
		return fmt.Sprintf("Good morning! You have %d energy coins today. Time to plan them.", coins)
	}
	return fmt.Sprintf("Good morning! %d of %d energy coins are already planned.", used, coins)
}

// SleepMessage warns that bedtime is near
func SleepMessage(settings models.Settings, leadMin int) string {
	return fmt.Sprintf("%d minutes until bedtime (%s). Time to wind down.", leadMin, settings.SleepStart)
}

// Message builds the text of kind for now
func (s *Scheduler) Message(kind Kind) string {
	settings := s.src.Settings()
	if kind == KindSleep {
		return SleepMessage(settings, s.cfg.SleepLeadMin)
	}
	return MorningMessage(settings, s.src.Day(utils.Today(s.now().In(s.cfg.Location))))
}

// Enabled reports whether the user turned kind on in settings
func (s *Scheduler) Enabled(kind Kind) bool {
	n := s.src.Settings().Notifications
	if kind == KindSleep {
		return n.Sleep
	}
	return n.Morning
}

// Fire sends kind now if it is enabled
func (s *Scheduler) Fire(ctx context.Context, kind Kind) error {
	if !s.Enabled(kind) {
		logger.Debug("Reminder disabled, skipping", "kind", kind)
		return nil
	}
	msg := s.Message(kind)
	if err := s.sender.Notify(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s reminder: %w", kind, err)
	}
	logger.Info("Reminder sent", "kind", kind)
	return nil
}

func (s *Scheduler) job(kind Kind) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Fire(ctx, kind); err != nil {
			logger.Warn("Reminder failed", "kind", kind, "error", err)
		}
	}
}

// Reschedule (re)registers both reminders from the current settings.
// Both schedules are parsed first; on error the previous entries stay in place.
// Call it after the sleep schedule changes.
func (s *Scheduler) Reschedule() error {
	morning, err := cron.ParseStandard(s.cfg.MorningSpec)
	if err != nil {
		return fmt.Errorf("invalid morning schedule %q: %w", s.cfg.MorningSpec, err)
	}
	spec, err := SleepSpec(s.src.Settings(), s.cfg.SleepLeadMin)
	if err != nil {
		return fmt.Errorf("invalid sleep schedule: %w", err)
	}
	sleep, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid sleep schedule %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for kind, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, kind)
	}
	s.entries[KindMorning] = s.cron.Schedule(morning, cron.FuncJob(s.job(KindMorning)))
	s.entries[KindSleep] = s.cron.Schedule(sleep, cron.FuncJob(s.job(KindSleep)))
	return nil
}

// Next returns when each registered reminder fires next
func (s *Scheduler) Next() map[Kind]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[Kind]time.Time, len(s.entries))
	now := s.now().In(s.cfg.Location)
	for kind, id := range s.entries {
		out[kind] = s.cron.Entry(id).Schedule.Next(now)
	}
	return out
}

// Start schedules the reminders and runs them in the background
func (s *Scheduler) Start() error {
	if err := s.Reschedule(); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// cronLogger routes cron's own logging through the app logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
