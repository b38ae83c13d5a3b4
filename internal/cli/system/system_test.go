package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ktrou69-commits/energy-coins/internal/cli"
	"github.com/ktrou69-commits/energy-coins/internal/config"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
	"github.com/ktrou69-commits/energy-coins/internal/storage"
	"github.com/ktrou69-commits/energy-coins/internal/storage/sqlite"
)

var fixedNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func newContext(store storage.Provider) *cli.Context {
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	return &cli.Context{
		Provider:  store,
		Config:    cfg,
		Scheduler: scheduler.New(),
		Now:       func() time.Time { return fixedNow },
	}
}

func setupTestDB(t *testing.T) (*cli.Context, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return newContext(store), store
}
