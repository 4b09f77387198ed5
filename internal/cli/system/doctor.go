package system

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/ledger/internal/backup"
	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/validation"
)

// errSkipped marks a check that does not apply to the current setup.
type errSkipped struct{ reason string }

func (e errSkipped) Error() string { return e.reason }

// errWarning marks a check that found something worth fixing but not fatal.
type errWarning struct{ msg string }

func (e errWarning) Error() string { return e.msg }

type DoctorCmd struct {
	Prune bool `help:"Delete stored attachment files that no entry references."`
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, err error) {
		var skipped errSkipped
		var warning errWarning
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", name)
		case errors.As(err, &skipped):
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", name, skipped.reason)
		case errors.As(err, &warning):
			ctx.Printf("⚠ %s: WARNING\n", name)
			ctx.Printf("   %s\n", indent(warning.msg))
		default:
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %s\n", indent(err.Error()))
			hasError = true
		}
	}

	reachable := checkStoreReachable(ctx)
	report("Storage reachable", reachable)

	unreachable := errSkipped{"storage not reachable"}
	if reachable != nil {
		report("Schema version", unreachable)
		report("Data validation", unreachable)
		report("Attachments", unreachable)
	} else {
		report("Schema version", checkSchemaVersion(ctx))
		report("Data validation", checkValidation(ctx))
		report("Attachments", checkAttachments(ctx, cmd.Prune))
	}

	report("Backups present", checkBackupsPresent(ctx))
	report("Clock/timezone", checkClockTimezone(ctx, reachable == nil))

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func indent(s string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n   ")
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if _, err := ctx.Store.Keys(ctx.Background()); err != nil {
		return fmt.Errorf("failed to query store: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(versioned)
	if !ok {
		return errSkipped{"store has no schema"}
	}

	current, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d; run 'ledger migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if !backup.Supported(path) {
		return errSkipped{"store is not file-based"}
	}

	backups, err := backup.NewManager(path).ListBackups()
	if err != nil {
		return errWarning{fmt.Sprintf("failed to list backups: %v", err)}
	}
	if len(backups) == 0 {
		return errWarning{"no backups found - consider creating one with 'ledger backup create'"}
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	result := validation.New().ValidateDataset(ctx.Journal.Snapshot(ctx.Background()))
	switch {
	case result.HasErrors():
		return errors.New(result.FormatReport())
	case result.HasConflicts():
		return errWarning{result.FormatReport()}
	}
	return nil
}

func checkAttachments(ctx *cli.Context, prune bool) error {
	if ctx.Blobs == nil {
		return errSkipped{"attachments disabled"}
	}

	bg := ctx.Background()
	stored, err := ctx.Blobs.List(bg)
	if err != nil {
		return fmt.Errorf("failed to list stored files: %w", err)
	}

	result := validation.New().ValidateAttachments(ctx.Journal.ListEntries(bg), stored, ctx.Blobs.Owns)
	if !result.HasConflicts() {
		return nil
	}

	if prune {
		removed := 0
		for _, c := range result.OfType(validation.ConflictOrphanedFile) {
			if err := ctx.Blobs.Delete(bg, c.IDs[0]); err != nil {
				return fmt.Errorf("failed to delete %s: %w", c.IDs[0], err)
			}
			removed++
		}
		if removed > 0 && len(result.OfType(validation.ConflictMissingFile)) == 0 {
			ctx.Printf("   Pruned %d orphaned file(s)\n", removed)
			return nil
		}
	}
	return errWarning{result.FormatReport()}
}

func checkClockTimezone(ctx *cli.Context, storeReachable bool) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if !storeReachable {
		return nil
	}

	tz := ctx.Journal.Settings(ctx.Background()).Timezone
	if tz == "" || tz == constants.DefaultTimezone {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("timezone setting %q is not a known zone: %w", tz, err)
	}
	return nil
}
