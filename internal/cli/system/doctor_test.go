package system

import (
	"testing"

	"github.com/ktrou69-commits/energy-coins/internal/backup"
	"github.com/ktrou69-commits/energy-coins/internal/models"
)

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _ := setupTestDB(t)

	// Missing backups is a warning, not a failure
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, _ := setupTestDB(t)

	if _, err := backup.NewManager(ctx.Provider.GetConfigPath()).CreateBackup(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if err := checkBackupsPresent(ctx); err != nil {
		t.Errorf("checkBackupsPresent() = %v", err)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store := setupTestDB(t)

	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
	if err := checkMigrationsComplete(ctx); err != nil {
		t.Errorf("a newer schema is not an incomplete migration: %v", err)
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, store := setupTestDB(t)

	if _, err := store.GetDB().Exec("UPDATE schema_version SET version = 0"); err != nil {
		t.Fatalf("failed to reset schema version: %v", err)
	}
	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("expected incomplete migrations error")
	}
}

func TestCheckValidation_Conflicts(t *testing.T) {
	ctx, _ := setupTestDB(t)
	l, err := ctx.Ledger()
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range [][2]string{{"09:00", "11:00"}, {"10:00", "12:00"}} {
		title, cat, start, end := "Block", models.CategoryWork, r[0], r[1]
		if _, err := l.SaveAction("2025-01-15", models.ActionPatch{Title: &title, Category: &cat, StartTime: &start, EndTime: &end}); err != nil {
			t.Fatal(err)
		}
	}

	if err := checkValidation(ctx); err == nil {
		t.Error("expected overlapping actions to fail validation")
	}
}

func TestCheckKeyring_SkipsLocalStores(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := checkKeyring(ctx); err != nil {
		t.Errorf("checkKeyring() = %v for sqlite", err)
	}
}
