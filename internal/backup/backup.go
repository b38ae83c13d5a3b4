// Package backup keeps rotating snapshots of the file based stores.
package backup

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ktrou69-commits/energy-coins/internal/constants"
	"github.com/ktrou69-commits/energy-coins/internal/logger"
	"github.com/ktrou69-commits/energy-coins/internal/models"
)

const timestampLayout = "20060102-150405"

// ErrUnsupported is returned for stores that do not live in a local file
var ErrUnsupported = errors.New("backups are only supported for SQLite and JSON storage")

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64

	seq int // same-second counter
}

// Manager handles backup operations for one store file
type Manager struct {
	dataPath  string
	backupDir string
	suffix    string
	keep      int
	now       func() time.Time
}

// NewManager creates a backup manager for the store at dataPath. Backups go to a
// backups directory next to it and keep the store's file extension.
func NewManager(dataPath string) *Manager {
	suffix := filepath.Ext(dataPath)
	if suffix == "" {
		suffix = ".db"
	}
	return &Manager{
		dataPath:  dataPath,
		backupDir: filepath.Join(filepath.Dir(dataPath), constants.BackupDirName),
		suffix:    suffix,
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
}

// Supported reports whether the store path is a local file that can be backed up
func Supported(path string) bool {
	return filepath.IsAbs(path) || strings.ContainsRune(path, filepath.Separator) || filepath.Ext(path) != ""
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

func (m *Manager) isJSON() bool {
	return strings.EqualFold(m.suffix, ".json")
}

// CreateBackup snapshots the store and prunes the oldest backups beyond the retention limit
func (m *Manager) CreateBackup() (string, error) {
	path, err := m.createBackup()
	if err != nil {
		return "", err
	}
	if err := m.rotateBackups(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return path, nil
}

func (m *Manager) createBackup() (string, error) {
	if !Supported(m.dataPath) {
		return "", ErrUnsupported
	}
	if _, err := os.Stat(m.dataPath); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("data file does not exist: %s", m.dataPath)
	}
	if err := os.MkdirAll(m.backupDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}

	if m.isJSON() {
		err = copyFile(m.dataPath, dest)
	} else {
		err = m.vacuumInto(dest)
	}
	if err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("failed to back up %s: %w", m.dataPath, err)
	}
	logger.Debug("Backup created", "path", dest)
	return dest, nil
}

// nextBackupPath returns coins-<timestamp><ext>, adding a counter when a backup
// from the same second already exists
func (m *Manager) nextBackupPath() (string, error) {
	stamp := m.now().Format(timestampLayout)
	path := filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+m.suffix)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if counter > 100 {
			return "", errors.New("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, stamp, counter, m.suffix))
	}
}

// vacuumInto writes a consistent copy of the SQLite database, falling back to a
// file copy when VACUUM INTO is not available
func (m *Manager) vacuumInto(dest string) error {
	src, err := sql.Open("sqlite", m.dataPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := src.Exec("VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		src.Close()
		return copyFile(m.dataPath, dest)
	}
	return nil
}

// ListBackups returns all backups of this store, newest first
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, m.suffix) {
			continue
		}
		ts, seq, ok := parseTimestamp(strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), m.suffix))
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: ts,
			Size:      info.Size(),
			seq:       seq,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].seq > backups[j].seq
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseTimestamp accepts YYYYMMDD-HHMMSS with an optional -N counter
func parseTimestamp(s string) (time.Time, int, bool) {
	seq := 0
	if len(s) > len(timestampLayout) {
		n, err := strconv.Atoi(strings.TrimPrefix(s[len(timestampLayout):], "-"))
		if err != nil || s[len(timestampLayout)] != '-' || n < 1 {
			return time.Time{}, 0, false
		}
		seq = n
		s = s[:len(timestampLayout)]
	}
	ts, err := time.ParseInLocation(timestampLayout, s, time.Local)
	return ts, seq, err == nil
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the store file with backupPath. The current file is backed
// up first; its backup path is returned (empty when there was nothing to save).
// The store must be closed while restoring.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	if _, err := os.Stat(backupPath); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := m.verifyBackup(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous string
	if _, err := os.Stat(m.dataPath); err == nil {
		// no rotation here so the backup being restored cannot be pruned
		p, err := m.createBackup()
		if err != nil {
			return "", fmt.Errorf("failed to back up current data before restore: %w", err)
		}
		previous = p
	}

	tmp := m.dataPath + ".restore.tmp"
	if err := copyFile(backupPath, tmp); err != nil {
		return previous, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dataPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return previous, fmt.Errorf("failed to restore data: %w", err)
	}
	logger.Info("Backup restored", "from", backupPath, "previous", previous)
	return previous, nil
}

func (m *Manager) verifyBackup(path string) error {
	if m.isJSON() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		var data models.Data
		return json.NewDecoder(f).Decode(&data)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
