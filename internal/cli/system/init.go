package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/ledger/internal/backup"
	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing file-based store before initialization."`
	Source string `help:"Store path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized ledger storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		source, err := storage.Open(c.Source)
		if err != nil {
			return err
		}
		n, err := copySlots(ctx.Background(), source, ctx.Store)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Printf("Copied %d collections.\n", n)
	}

	return nil
}

// reset removes the current store file. Non-file stores are left alone.
func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if !backup.Supported(dbPath) {
		return fmt.Errorf("--force only applies to file-based stores")
	}

	if c.Source != "" {
		absDB, errDB := filepath.Abs(dbPath)
		absSource, errSrc := filepath.Abs(c.Source)
		if errDB == nil && errSrc == nil && absDB == absSource {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", absDB)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing store: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing store: %w", err)
		}
		ctx.Printf("Deleted existing store at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing store: %w", err)
	}
	return nil
}

// copySlots copies every written slot from src to dst in one atomic write.
func copySlots(ctx context.Context, src, dst storage.Provider) (int, error) {
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list source collections: %w", err)
	}

	values := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, ok, err := src.Get(ctx, k)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", k, err)
		}
		if ok {
			values[k] = v
		}
	}
	if len(values) == 0 {
		return 0, nil
	}
	if err := dst.PutAll(ctx, values); err != nil {
		return 0, fmt.Errorf("failed to write collections: %w", err)
	}
	return len(values), nil
}
