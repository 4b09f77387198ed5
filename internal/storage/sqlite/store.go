package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/ledger/internal/constants"
	lerrors "github.com/julianstephens/ledger/internal/errors"
	"github.com/julianstephens/ledger/internal/logger"
	"github.com/julianstephens/ledger/internal/migration"
	"github.com/julianstephens/ledger/migrations"
)

type Store struct {
	path string
	db   *sql.DB

	// history is the number of slot_writes rows kept after each write
	history int
}

func NewStore(path string) *Store {
	return &Store{
		path:    path,
		history: constants.SlotWriteHistory,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'ledger init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return s.runner().ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The embedded tree is fixed at build time
		panic(fmt.Sprintf("sqlite migrations missing: %v", err))
	}
	return migration.NewRunner(s.db, subFS)
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate() error {
	if s.db == nil {
		db, err := sql.Open("sqlite", s.path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
	}
	_, err := s.runner().ApplyMigrations(func(msg string) {
		logger.Info(msg)
	})
	return err
}

// SchemaVersion reports the current and latest known schema versions.
func (s *Store) SchemaVersion() (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, lerrors.ErrStoreNotLoaded
	}
	r := s.runner()
	if current, err = r.GetCurrentVersion(); err != nil {
		return 0, 0, err
	}
	latest, err = r.GetLatestVersion()
	return current, latest, err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, lerrors.ErrStoreNotLoaded
	}

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.PutAll(ctx, map[string][]byte{key: value})
}

func (s *Store) PutAll(ctx context.Context, values map[string][]byte) error {
	if s.db == nil {
		return lerrors.ErrStoreNotLoaded
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(value), now); err != nil {
			return fmt.Errorf("failed to write slot %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO slot_writes (key, bytes, written_at) VALUES (?, ?, ?)",
			key, len(value), now); err != nil {
			return fmt.Errorf("failed to record write for slot %s: %w", key, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM slot_writes WHERE id <= (SELECT MAX(id) FROM slot_writes) - ?", s.history); err != nil {
		return fmt.Errorf("failed to trim write history: %w", err)
	}

	return tx.Commit()
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, lerrors.ErrStoreNotLoaded
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key FROM slots ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SlotWrite is one recorded slot write.
type SlotWrite struct {
	Key       string
	Bytes     int
	WrittenAt time.Time
}

// RecentWrites returns the latest recorded writes, newest first.
func (s *Store) RecentWrites(ctx context.Context, limit int) ([]SlotWrite, error) {
	if s.db == nil {
		return nil, lerrors.ErrStoreNotLoaded
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, bytes, written_at FROM slot_writes ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var writes []SlotWrite
	for rows.Next() {
		var w SlotWrite
		var at string
		if err := rows.Scan(&w.Key, &w.Bytes, &at); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			w.WrittenAt = t
		}
		writes = append(writes, w)
	}
	return writes, rows.Err()
}
