package ledger

import (
	"fmt"

	"github.com/ktrou69-commits/energy-coins/internal/logger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
	"github.com/ktrou69-commits/energy-coins/internal/utils"
)

// DatedAction is an action together with the date it belongs to
type DatedAction struct {
	Date   string
	Action models.Action
}

// ImportResult counts what an import batch did
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Days     int `json:"days"`
}

func (r ImportResult) String() string {
	return fmt.Sprintf("imported %d, skipped %d", r.Imported, r.Skipped)
}

// AddActions appends a batch of actions with a single write. Invalid records are skipped
// and counted. Records without an ID get a fresh one; records whose ID already exists on
// that date are skipped.
func (s *Store) AddActions(batch []DatedAction) (ImportResult, error) {
	var res ImportResult
	touched := map[string]bool{}

	s.mu.Lock()
	for _, rec := range batch {
		a := rec.Action
		if a.Priority == "" {
			a.Priority = models.PriorityMedium
		}
		if _, err := utils.ParseDate(rec.Date); err != nil {
			logger.Debug("Skipping imported action", "date", rec.Date, "error", err)
			res.Skipped++
			continue
		}
		if err := a.Validate(); err != nil {
			logger.Debug("Skipping imported action", "title", a.Title, "error", err)
			res.Skipped++
			continue
		}

		day := s.data.Days[rec.Date].Clone()
		if a.ID == "" {
			a.ID = s.newID()
		} else if day.Find(a.ID) >= 0 {
			res.Skipped++
			continue
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = s.now()
		}
		day.Actions = append(day.Actions, a)
		s.data.Days[rec.Date] = day
		s.data.ActionHistory = recordHistory(s.data.ActionHistory, a.Title, a.Category)
		touched[rec.Date] = true
		res.Imported++
	}
	s.mu.Unlock()

	res.Days = len(touched)
	if res.Imported == 0 {
		return res, nil
	}
	err := s.persist()
	s.publish(Change{Kind: ChangeDataImported})
	return res, err
}

// Merge folds a full document into the store. Imported days replace stored days with the
// same date, other stored days are kept. History counts are summed and settings are taken
// from the import when they validate. Days with invalid actions are skipped entirely.
func (s *Store) Merge(in *models.Data) (ImportResult, error) {
	var res ImportResult
	if in == nil {
		return res, nil
	}

	s.mu.Lock()
	for date, day := range in.Days {
		if !utils.IsValidDate(date) || !validDay(day) {
			logger.Debug("Skipping imported day", "date", date)
			res.Skipped += len(day.Actions)
			continue
		}
		clone := day.Clone()
		if clone.Actions == nil {
			clone.Actions = []models.Action{}
		}
		s.data.Days[date] = clone
		res.Imported += len(clone.Actions)
		res.Days++
	}
	s.data.ActionHistory = mergeHistory(s.data.ActionHistory, in.ActionHistory)
	if in.Settings.SleepStart != "" {
		if err := in.Settings.Validate(); err != nil {
			logger.Warn("Ignoring imported settings", "error", err)
		} else {
			s.data.Settings = in.Settings
		}
	}
	s.mu.Unlock()

	err := s.persist()
	s.publish(Change{Kind: ChangeDataImported})
	return res, err
}

func validDay(day models.Day) bool {
	seen := make(map[string]bool, len(day.Actions))
	for _, a := range day.Actions {
		if a.ID == "" || seen[a.ID] || a.Validate() != nil {
			return false
		}
		seen[a.ID] = true
	}
	return true
}
