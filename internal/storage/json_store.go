package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ktrou69-commits/energy-coins/internal/models"
)

// JSONStore keeps the document in a single JSON file
type JSONStore struct {
	path string
	data *models.Data
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	data := models.NewData()
	if err := s.write(data); err != nil {
		return err
	}
	s.data = data
	return nil
}

func (s *JSONStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	data := &models.Data{}
	if err := json.Unmarshal(raw, data); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	data.Normalize()
	s.data = data
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) LoadData() (*models.Data, error) {
	if s.data == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	return s.data.Clone(), nil
}

func (s *JSONStore) SaveData(data *models.Data) error {
	if s.data == nil {
		return fmt.Errorf("storage not loaded")
	}
	next := data.Clone()
	if err := s.write(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// write replaces the file through a temp file in the same directory so a crash never
// leaves a partial document. The cached document is only swapped by callers on success.
func (s *JSONStore) write(data *models.Data) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".coins-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("failed to chmod storage: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}
