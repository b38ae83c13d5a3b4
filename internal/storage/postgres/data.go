package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ktrou69-commits/energy-coins/internal/models"
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func saveSettings(db execer, settings models.Settings) error {
	for key, value := range models.SettingsToMap(settings) {
		if _, err := db.Exec(`
			INSERT INTO settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value); err != nil {
			return fmt.Errorf("saving setting %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) LoadData() (*models.Data, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	data := models.NewData()

	kv := make(map[string]string)
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, err
		}
		kv[k] = v
	}
	rows.Close()
	if data.Settings, err = models.MapToSettings(kv); err != nil {
		return nil, err
	}

	rows, err = s.db.Query("SELECT date, notes FROM days")
	if err != nil {
		return nil, fmt.Errorf("failed to load days: %w", err)
	}
	for rows.Next() {
		var date, notes string
		if err := rows.Scan(&date, &notes); err != nil {
			rows.Close()
			return nil, err
		}
		data.Days[date] = models.Day{Notes: notes, Actions: []models.Action{}}
	}
	rows.Close()

	rows, err = s.db.Query(`
		SELECT date, id, title, category, priority, start_time, end_time, note, created_at
		FROM actions ORDER BY date, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}
	for rows.Next() {
		var (
			date string
			a    models.Action
		)
		if err := rows.Scan(&date, &a.ID, &a.Title, &a.Category, &a.Priority, &a.StartTime, &a.EndTime, &a.Note, &a.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		day := data.Days[date]
		day.Actions = append(day.Actions, a)
		data.Days[date] = day
	}
	rows.Close()

	rows, err = s.db.Query("SELECT title, category, count FROM action_history ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(&h.Title, &h.Category, &h.Count); err != nil {
			return nil, err
		}
		data.ActionHistory = append(data.ActionHistory, h)
	}
	return data, rows.Err()
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

	if err := saveSettings(tx, data.Settings); err != nil {
		return err
	}
	if _, err := tx.Exec("TRUNCATE actions, days, action_history"); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	for date, day := range data.Days {
		if _, err := tx.Exec("INSERT INTO days (date, notes) VALUES ($1, $2)", date, day.Notes); err != nil {
			return fmt.Errorf("saving day %s: %w", date, err)
		}
		for i, a := range day.Actions {
			if _, err := tx.Exec(`
				INSERT INTO actions (date, id, position, title, category, priority, start_time, end_time, note, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				date, a.ID, i, a.Title, string(a.Category), string(a.Priority), a.StartTime, a.EndTime, a.Note, a.CreatedAt); err != nil {
				return fmt.Errorf("saving action %s on %s: %w", a.ID, date, err)
			}
		}
	}

	for i, h := range data.ActionHistory {
		if _, err := tx.Exec(`
			INSERT INTO action_history (title_key, title, category, count, position) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (title_key) DO UPDATE SET title = EXCLUDED.title, category = EXCLUDED.category,
				count = EXCLUDED.count, position = EXCLUDED.position`,
			strings.ToLower(h.Title), h.Title, string(h.Category), h.Count, i); err != nil {
			return fmt.Errorf("saving history %q: %w", h.Title, err)
		}
	}

	return tx.Commit()
}
