package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/storage"
	"github.com/julianstephens/ledger/internal/storage/sqlite"
)

func setupSQLiteStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")

	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Put(context.Background(), constants.SlotThreads, []byte(`[{"id":"t1"}]`)); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	store.Close()
	return path
}

func setupJSONStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.json")

	store := storage.NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Put(context.Background(), constants.SlotThreads, []byte(`[{"id":"t1"}]`)); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return path
}

// steppingClock returns a now func that advances one second per call
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Second)
		return t
	}
}

func readSlot(t *testing.T, dbPath, key string) string {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var value string
	if err := db.QueryRow("SELECT value FROM slots WHERE key = ?", key).Scan(&value); err != nil {
		t.Fatalf("failed to read slot %s: %v", key, err)
	}
	return value
}

func TestCreateBackupSQLite(t *testing.T) {
	dbPath := setupSQLiteStore(t)

	mgr := NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written to unexpected directory: %s", backupPath)
	}
	if got := readSlot(t, backupPath, constants.SlotThreads); got != `[{"id":"t1"}]` {
		t.Errorf("backup slot = %q", got)
	}
}

func TestCreateBackupJSON(t *testing.T) {
	path := setupJSONStore(t)

	mgr := NewManager(path)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Ext(backupPath) != ".json" {
		t.Errorf("expected .json backup, got %s", backupPath)
	}

	restored := storage.NewJSONStore(backupPath)
	if err := restored.Load(); err != nil {
		t.Fatalf("backup does not load as a store: %v", err)
	}
}

func TestCreateBackupMissingStore(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error for missing store")
	}
}

func TestCreateBackupCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager(path).CreateBackup(); err == nil {
		t.Error("expected error backing up a corrupt document")
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupSQLiteStore(t)

	mgr := NewManager(dbPath)
	mgr.now = steppingClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local))

	numBackups := constants.MaxBackups + 5
	for i := 0; i < numBackups; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted correctly at %d", i)
		}
	}

	newest := time.Date(2024, 5, 1, 8, 0, numBackups-1, 0, time.Local)
	if !backups[0].Timestamp.Equal(newest) {
		t.Errorf("newest backup = %v, want %v", backups[0].Timestamp, newest)
	}
}

func TestBackupNameCollision(t *testing.T) {
	dbPath := setupSQLiteStore(t)

	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)
	mgr := NewManager(dbPath)
	mgr.now = func() time.Time { return fixed }

	first, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	second, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("expected distinct backup paths")
	}
	if filepath.Base(second) != "ledger-20240501-080000-1.db" {
		t.Errorf("unexpected collision name %s", filepath.Base(second))
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 || backups[0].Path != second {
		t.Errorf("collision backup should sort first: %+v", backups)
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dbPath := setupSQLiteStore(t)
	mgr := NewManager(dbPath)

	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "ledger-garbage.db", "ledger-20240101-000000.json"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
}

func TestRestoreBackupSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := setupSQLiteStore(t)

	mgr := NewManager(dbPath)
	mgr.now = steppingClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local))
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, constants.SlotThreads, []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	store.Close()

	previous, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if previous == "" {
		t.Error("expected a safety backup of the current store")
	}

	if got := readSlot(t, dbPath, constants.SlotThreads); got != `[{"id":"t1"}]` {
		t.Errorf("restored slot = %q", got)
	}
	if got := readSlot(t, previous, constants.SlotThreads); got != `[]` {
		t.Errorf("safety backup slot = %q", got)
	}
}

func TestRestoreBackupRejectsInvalid(t *testing.T) {
	path := setupJSONStore(t)
	mgr := NewManager(path)

	bogus := filepath.Join(t.TempDir(), "bogus.json")
	if err := os.WriteFile(bogus, []byte(`{"version":1}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(bogus); err == nil {
		t.Error("expected error restoring a document without slots")
	}
	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error restoring a missing file")
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"/home/me/.config/ledger/ledger.db", true},
		{"/tmp/ledger.json", true},
		{":memory:", false},
		{"postgresql", false},
		{"postgres://me@localhost/ledger", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.target); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}
