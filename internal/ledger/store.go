// Package ledger owns the day to action graph, the settings and the title history.
// Every mutation is persisted through a storage.Provider.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/errors"
	"github.com/ktrou69-commits/energy-coins/internal/logger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
	"github.com/ktrou69-commits/energy-coins/internal/storage"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// Store is safe for concurrent use. Mutations on the same date run one at a time;
// the document itself is guarded by a read/write lock.
type Store struct {
	provider storage.Provider

	mu   sync.RWMutex
	data *models.Data

	locksMu  sync.Mutex
	dayLocks map[string]*sync.Mutex

	persistMu  sync.Mutex
	retries    int
	retryDelay time.Duration

	subsMu  sync.RWMutex
	subs    []subscriber
	nextSub uint64

	now   func() time.Time
	newID func() string
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides action ID generation
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithRetry sets how many times a failed write is attempted and the pause between attempts
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *Store) {
		if attempts < 1 {
			attempts = 1
		}
		s.retries, s.retryDelay = attempts, delay
	}
}

// New loads the document from provider. The provider must already be initialized or loaded.
func New(provider storage.Provider, opts ...Option) (*Store, error) {
	s := &Store{
		provider:   provider,
		dayLocks:   make(map[string]*sync.Mutex),
		retries:    constants.PersistMaxRetries,
		retryDelay: constants.PersistRetryDelay,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := provider.LoadData()
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	data.Normalize()
	s.data = data
	return s, nil
}

// Provider returns the backing storage
func (s *Store) Provider() storage.Provider {
	return s.provider
}

func (s *Store) lockDay(date string) func() {
	s.locksMu.Lock()
	l, ok := s.dayLocks[date]
	if !ok {
		l = &sync.Mutex{}
		s.dayLocks[date] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// persist writes the current document, retrying on failure. When every attempt fails
// the in-memory state is kept and the error is returned wrapped in ErrPersistence.
func (s *Store) persist() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.Clone()
	s.mu.RUnlock()

	var err error
	for attempt := 1; attempt <= s.retries; attempt++ {
		if err = s.provider.SaveData(snapshot); err == nil {
			return nil
		}
		logger.Warn("Persisting data failed", "attempt", attempt, "of", s.retries, "error", err)
		if attempt < s.retries {
			time.Sleep(s.retryDelay)
		}
	}
	logger.Error("Giving up persisting data; changes are kept in memory only", "error", err)
	return fmt.Errorf("%w: %w", errors.ErrPersistence, err)
}

// GetDay returns a copy of the day, creating an empty one in memory if absent
func (s *Store) GetDay(date string) (models.Day, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return models.Day{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.data.Days[date]
	if !ok {
		day = models.Day{Actions: []models.Action{}}
		s.data.Days[date] = day
	}
	return day.Clone(), nil
}

// Day returns a copy of the stored day without creating it. Absent days are empty.
func (s *Store) Day(date string) models.Day {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day, ok := s.data.Days[date]
	if !ok {
		return models.Day{Actions: []models.Action{}}
	}
	return day.Clone()
}

// Dates returns every stored date in ascending order
func (s *Store) Dates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.data.Days))
	for d := range s.data.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// GetAction looks up one action
func (s *Store) GetAction(date, id string) (models.Action, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := s.data.Days[date]
	if i := day.Find(id); i >= 0 {
		return day.Actions[i], true
	}
	return models.Action{}, false
}

// SaveAction creates an action when patch.ID is empty, otherwise merges patch over the
// stored action with that ID. New actions default to medium priority. The saved action
// is returned even when persisting failed; check for ErrPersistence.
func (s *Store) SaveAction(date string, patch models.ActionPatch) (models.Action, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return models.Action{}, err
	}

	unlock := s.lockDay(date)
	defer unlock()

	s.mu.Lock()
	day := s.data.Days[date].Clone()

	var saved models.Action
	kind := ChangeActionCreated
	if patch.ID != "" {
		i := day.Find(patch.ID)
		if i < 0 {
			s.mu.Unlock()
			return models.Action{}, fmt.Errorf("%s on %s: %w", patch.ID, date, errors.ErrActionNotFound)
		}
		saved = day.Actions[i]
		patch.Apply(&saved)
		if err := saved.Validate(); err != nil {
			s.mu.Unlock()
			return models.Action{}, err
		}
		day.Actions[i] = saved
		kind = ChangeActionUpdated
	} else {
		saved = models.Action{Priority: models.PriorityMedium}
		patch.Apply(&saved)
		if err := saved.Validate(); err != nil {
			s.mu.Unlock()
			return models.Action{}, err
		}
		saved.ID = s.newID()
		saved.CreatedAt = s.now()
		day.Actions = append(day.Actions, saved)
	}

	s.data.Days[date] = day
	s.data.ActionHistory = recordHistory(s.data.ActionHistory, saved.Title, saved.Category)
	s.mu.Unlock()

	err := s.persist()
	s.publish(Change{Kind: kind, Date: date, ActionID: saved.ID})
	return saved, err
}

// DeleteAction removes the action with id. Unknown IDs are ignored.
func (s *Store) DeleteAction(date, id string) error {
	unlock := s.lockDay(date)
	defer unlock()

	s.mu.Lock()
	day, ok := s.data.Days[date]
	i := day.Find(id)
	if !ok || i < 0 {
		s.mu.Unlock()
		return nil
	}
	day = day.Clone()
	day.Actions = append(day.Actions[:i], day.Actions[i+1:]...)
	s.data.Days[date] = day
	s.mu.Unlock()

	err := s.persist()
	s.publish(Change{Kind: ChangeActionDeleted, Date: date, ActionID: id})
	return err
}

// MoveAction reschedules an action to start at hour:00 keeping its duration
func (s *Store) MoveAction(date, id string, hour int) (models.Action, error) {
	if hour < 0 || hour >= constants.HoursPerDay {
		return models.Action{}, fmt.Errorf("%w: hour %d out of range", errors.ErrInvalidAction, hour)
	}
	a, ok := s.GetAction(date, id)
	if !ok {
		return models.Action{}, fmt.Errorf("%s on %s: %w", id, date, errors.ErrActionNotFound)
	}
	slot := scheduler.MoveSlot(a, hour)
	return s.SaveAction(date, models.ActionPatch{ID: id, StartTime: &slot.StartTime, EndTime: &slot.EndTime})
}

// SetNotes replaces the free text notes of a day
func (s *Store) SetNotes(date, notes string) error {
	if _, err := utils.ParseDate(date); err != nil {
		return err
	}

	unlock := s.lockDay(date)
	defer unlock()

	s.mu.Lock()
	day := s.data.Days[date].Clone()
	day.Notes = notes
	s.data.Days[date] = day
	s.mu.Unlock()

	err := s.persist()
	s.publish(Change{Kind: ChangeNotesUpdated, Date: date})
	return err
}

// Settings returns the current settings
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings
}

// UpdateSettings merges patch into the settings. Concurrent updates are last-writer-wins.
func (s *Store) UpdateSettings(patch models.SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	updated, err := patch.Apply(s.data.Settings)
	if err != nil {
		s.mu.Unlock()
		return s.data.Settings, err
	}
	s.data.Settings = updated
	s.mu.Unlock()

	err = s.persist()
	s.publish(Change{Kind: ChangeSettingsUpdated})
	return updated, err
}

// Suggestions returns up to five history entries whose title contains query, most used first
func (s *Store) Suggestions(query string) []models.HistoryEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	out := []models.HistoryEntry{}
	if query == "" {
		return out
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.data.ActionHistory {
		if strings.Contains(strings.ToLower(h.Title), query) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > constants.MaxSuggestions {
		out = out[:constants.MaxSuggestions]
	}
	return out
}

// History returns a copy of the title history, most used first
func (s *Store) History() []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.HistoryEntry, len(s.data.ActionHistory))
	copy(out, s.data.ActionHistory)
	return out
}

// Snapshot returns a deep copy of the whole document
func (s *Store) Snapshot() *models.Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Flush persists the current document without changing it
func (s *Store) Flush() error {
	return s.persist()
}
