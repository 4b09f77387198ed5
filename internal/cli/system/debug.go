package system

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/storage"
	"github.com/julianstephens/ledger/internal/storage/sqlite"
)

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	output := map[string]string{
		"path": path,
		"kind": storage.Kind(path),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

// DebugSlotsCmd lists stored collections and, for SQLite, the latest writes.
type DebugSlotsCmd struct {
	Writes int `short:"w" default:"10" help:"Number of recent writes to show (SQLite only)."`
}

func (cmd *DebugSlotsCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	keys, err := ctx.Store.Keys(bg)
	if err != nil {
		return fmt.Errorf("failed to list slots: %w", err)
	}

	if len(keys) == 0 {
		ctx.Println("No slots written yet.")
	}
	for _, k := range keys {
		v, _, err := ctx.Store.Get(bg, k)
		if err != nil {
			return fmt.Errorf("failed to read slot %s: %w", k, err)
		}
		ctx.Printf("  %-18s %s\n", k, humanize.Bytes(uint64(len(v))))
	}

	db, ok := ctx.Store.(*sqlite.Store)
	if !ok || cmd.Writes <= 0 {
		return nil
	}
	writes, err := db.RecentWrites(bg, cmd.Writes)
	if err != nil {
		return fmt.Errorf("failed to read write log: %w", err)
	}
	ctx.Println()
	ctx.Println("Recent writes:")
	for _, w := range writes {
		ctx.Printf("  %s  %-18s %s\n", w.WrittenAt.Local().Format("2006-01-02 15:04:05"), w.Key, humanize.Bytes(uint64(w.Bytes)))
	}
	return nil
}
