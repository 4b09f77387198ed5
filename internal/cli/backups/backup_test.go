package backups

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, *storage.JSONStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.json")
	store := storage.NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Put(context.Background(), constants.SlotThreads, []byte(`[{"id":"original"}]`)); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	out := &bytes.Buffer{}
	return &cli.Context{Store: store, Out: out, In: strings.NewReader("")}, out, store
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, out, _ := setupTestContext(t)

	listCmd := &BackupListCmd{}
	if err := listCmd.Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("expected empty listing, got: %s", out.String())
	}

	out.Reset()
	createCmd := &BackupCreateCmd{}
	if err := createCmd.Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backup created: "+constants.BackupFilePrefix) {
		t.Errorf("unexpected create output: %s", out.String())
	}

	out.Reset()
	if err := listCmd.Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Available backups (1 total, keeping most recent 14)") {
		t.Errorf("unexpected list output: %s", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, out, store := setupTestContext(t)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.Put(context.Background(), constants.SlotThreads, []byte(`[{"id":"changed"}]`)); err != nil {
		t.Fatalf("failed to modify store: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(filepath.Dir(store.GetConfigPath()), constants.BackupDirName))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one backup, got %d (%v)", len(entries), err)
	}

	out.Reset()
	restore := &BackupRestoreCmd{BackupFile: entries[0].Name(), Yes: true}
	if err := restore.Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Ledger restored successfully") {
		t.Errorf("unexpected output: %s", out.String())
	}
	if !strings.Contains(out.String(), "Previous state saved as") {
		t.Errorf("expected pre-restore backup to be reported: %s", out.String())
	}

	reloaded := storage.NewJSONStore(store.GetConfigPath())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	got, _, _ := reloaded.Get(context.Background(), constants.SlotThreads)
	if !strings.Contains(string(got), "original") {
		t.Errorf("restore did not bring back original data: %s", got)
	}
}

func TestBackupRestore_Cancelled(t *testing.T) {
	ctx, out, _ := setupTestContext(t)
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	mgrDir := filepath.Join(filepath.Dir(ctx.Store.GetConfigPath()), constants.BackupDirName)
	entries, _ := os.ReadDir(mgrDir)
	ctx.In = strings.NewReader("no\n")

	out.Reset()
	if err := (&BackupRestoreCmd{BackupFile: filepath.Join(mgrDir, entries[0].Name())}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Restore cancelled.") {
		t.Errorf("expected cancellation, got: %s", out.String())
	}
}

func TestBackupRestore_NotFound(t *testing.T) {
	ctx, _, _ := setupTestContext(t)
	err := (&BackupRestoreCmd{BackupFile: "missing.json", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "backup file not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestBackupCommands_UnsupportedStore(t *testing.T) {
	ctx := &cli.Context{Store: storage.NewMemoryStore(), Out: &bytes.Buffer{}}
	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("expected error for in-memory store")
	}
}
