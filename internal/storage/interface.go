package storage

import (
	"errors"

	"github.com/ktrou69-commits/energy-coins/internal/models"
)

// ErrNotInitialized is returned by Load when the backing store does not exist yet
var ErrNotInitialized = errors.New("storage not initialized, run 'coins init' first")

// Provider persists the whole ledger document. Each SaveData call replaces the
// previous snapshot atomically.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Document
	LoadData() (*models.Data, error)
	SaveData(*models.Data) error

	// GetConfigPath returns a printable location of the store
	GetConfigPath() string
}
