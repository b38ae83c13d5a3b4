package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) saveSettings(db execer, settings models.Settings) error {
	for key, value := range models.SettingsToMap(settings) {
		if _, err := db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("saving setting %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) loadSettings() (models.Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	kv := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		kv[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}
	return models.MapToSettings(kv)
}

func (s *Store) LoadData() (*models.Data, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	data := models.NewData()

	settings, err := s.loadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	data.Settings = settings

	if err := s.loadDays(data); err != nil {
		return nil, fmt.Errorf("failed to load days: %w", err)
	}
	if err := s.loadActions(data); err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}
	if err := s.loadHistory(data); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return data, nil
}

// Each loader closes its rows before returning; the pool holds a single connection.

func (s *Store) loadDays(data *models.Data) error {
	rows, err := s.db.Query("SELECT date, notes FROM days")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var date, notes string
		if err := rows.Scan(&date, &notes); err != nil {
			return err
		}
		data.Days[date] = models.Day{Notes: notes, Actions: []models.Action{}}
	}
	return rows.Err()
}

func (s *Store) loadActions(data *models.Data) error {
	rows, err := s.db.Query(`
		SELECT date, id, title, category, priority, start_time, end_time, note, created_at
		FROM actions ORDER BY date, position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			date, createdAt string
			a               models.Action
		)
		if err := rows.Scan(&date, &a.ID, &a.Title, &a.Category, &a.Priority, &a.StartTime, &a.EndTime, &a.Note, &createdAt); err != nil {
			return err
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return fmt.Errorf("action %s: bad created_at %q: %w", a.ID, createdAt, err)
		}
		day := data.Days[date]
		day.Actions = append(day.Actions, a)
		data.Days[date] = day
	}
	return rows.Err()
}

func (s *Store) loadHistory(data *models.Data) error {
	rows, err := s.db.Query("SELECT title, category, count FROM action_history ORDER BY position")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(&h.Title, &h.Category, &h.Count); err != nil {
			return err
		}
		data.ActionHistory = append(data.ActionHistory, h)
	}
	return rows.Err()
}

// SaveData replaces the stored snapshot in one transaction
func (s *Store) SaveData(data *models.Data) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.saveSettings(tx, data.Settings); err != nil {
		return err
	}

	for _, table := range []string{"actions", "days", "action_history"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	dayStmt, err := tx.Prepare("INSERT INTO days (date, notes) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer dayStmt.Close()

	actionStmt, err := tx.Prepare(`
		INSERT INTO actions (date, id, position, title, category, priority, start_time, end_time, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer actionStmt.Close()

	for date, day := range data.Days {
		if _, err := dayStmt.Exec(date, day.Notes); err != nil {
			return fmt.Errorf("saving day %s: %w", date, err)
		}
		for i, a := range day.Actions {
			if _, err := actionStmt.Exec(date, a.ID, i, a.Title, string(a.Category), string(a.Priority),
				a.StartTime, a.EndTime, a.Note, a.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
				return fmt.Errorf("saving action %s on %s: %w", a.ID, date, err)
			}
		}
	}

	historyStmt, err := tx.Prepare("INSERT OR REPLACE INTO action_history (title_key, title, category, count, position) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer historyStmt.Close()

	for i, h := range data.ActionHistory {
		if _, err := historyStmt.Exec(strings.ToLower(h.Title), h.Title, string(h.Category), h.Count, i); err != nil {
			return fmt.Errorf("saving history %q: %w", h.Title, err)
		}
	}

	return tx.Commit()
}
