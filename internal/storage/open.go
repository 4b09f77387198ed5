package storage

import (
	"fmt"
	"strings"

	"github.com/julianstephens/ledger/internal/storage/postgres"
	"github.com/julianstephens/ledger/internal/storage/sqlite"
)

// Backend names reported by Kind.
const (
	KindJSON     = "json"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindMemory   = "memory"
)

// Kind picks a backend from the --store value: PostgreSQL URLs and DSNs,
// ".json" files, ":memory:", and SQLite for everything else.
func Kind(target string) string {
	t := strings.TrimSpace(target)
	switch {
	case t == ":memory:":
		return KindMemory
	case postgres.IsConnString(t), strings.Contains(t, "host=") && strings.Contains(t, "dbname="):
		return KindPostgres
	case strings.HasSuffix(strings.ToLower(t), ".json"):
		return KindJSON
	default:
		return KindSQLite
	}
}

// Open builds the provider for target without touching the backend.
// PostgreSQL targets carrying a password are rejected.
func Open(target string) (Provider, error) {
	switch Kind(target) {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindPostgres:
		if _, err := postgres.ValidateConnString(target); err != nil {
			return nil, fmt.Errorf("refusing PostgreSQL target: %w (store the full string with 'ledger keyring set' or use .pgpass)", err)
		}
		return postgres.New(target), nil
	case KindJSON:
		return NewJSONStore(target), nil
	default:
		return sqlite.NewStore(target), nil
	}
}

// OpenKeyring builds a PostgreSQL provider from a connection string held in the OS
// keyring. Embedded passwords are accepted there.
func OpenKeyring(connStr string) Provider {
	return postgres.New(connStr)
}
