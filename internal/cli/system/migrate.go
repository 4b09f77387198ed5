package system

import (
	"fmt"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/logger"
)

// versioned is implemented by stores with an embedded SQL schema.
type versioned interface {
	Migrate() error
	SchemaVersion() (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, ok := ctx.Store.(versioned)
	if !ok {
		return fmt.Errorf("migrate only applies to SQLite and PostgreSQL stores")
	}

	// Load refuses an outdated schema but still leaves the connection open
	if err := ctx.Store.Load(); err != nil {
		logger.Debug("Load before migrate", "error", err)
	}
	defer ctx.Store.Close()

	before, _, err := store.SchemaVersion()
	if err != nil {
		before = 0
	}

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	after, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if count := after - before; count <= 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("Successfully applied %d migration(s).\n", count)
	}
	ctx.Printf("Schema version: %d (latest %d)\n", after, latest)
	return nil
}
