package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/ledger/internal/blob"
	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/cli/backups"
	"github.com/julianstephens/ledger/internal/cli/entries"
	"github.com/julianstephens/ledger/internal/cli/reports"
	"github.com/julianstephens/ledger/internal/cli/settings"
	"github.com/julianstephens/ledger/internal/cli/sharing"
	"github.com/julianstephens/ledger/internal/cli/system"
	"github.com/julianstephens/ledger/internal/cli/threads"
	"github.com/julianstephens/ledger/internal/config"
	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/keyring"
	"github.com/julianstephens/ledger/internal/logger"
	"github.com/julianstephens/ledger/internal/storage"
	"github.com/julianstephens/ledger/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Store   string `help:"Store path (.db for SQLite, .json for a JSON file) or PostgreSQL connection string. PostgreSQL passwords must NOT be embedded; use .pgpass or 'ledger keyring set'." env:"LEDGER_STORE" default:"${default_store}"`
	Debug   bool   `help:"Enable debug logging." env:"LEDGER_DEBUG"`

	BlobBackend    string `help:"Where attachment content is kept (local|s3|none)." enum:"local,s3,none" default:"local" env:"LEDGER_BLOB_BACKEND"`
	AttachmentsDir string `help:"Directory for local attachment content. Defaults to an attachments directory beside a file store, or in the config directory otherwise." env:"LEDGER_ATTACHMENTS_DIR"`
	S3Bucket       string `help:"S3 bucket for attachment content." env:"LEDGER_S3_BUCKET"`
	S3Region       string `help:"S3 region." env:"LEDGER_S3_REGION"`
	S3Endpoint     string `help:"Endpoint of an S3-compatible service." env:"LEDGER_S3_ENDPOINT"`
	S3AccessKey    string `help:"S3 access key id. The secret comes from LEDGER_S3_SECRET_KEY or the keyring." env:"LEDGER_S3_ACCESS_KEY"`
	S3Prefix       string `help:"Key prefix for stored objects." env:"LEDGER_S3_PREFIX"`

	Init    system.InitCmd    `cmd:"" help:"Initialize ledger storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`

	Entry struct {
		Add      entries.EntryAddCmd      `cmd:"" help:"Record a new entry."`
		Edit     entries.EntryEditCmd     `cmd:"" help:"Edit an entry within its edit window."`
		Show     entries.EntryShowCmd     `cmd:"" help:"Show one entry in full."`
		List     entries.EntryListCmd     `cmd:"" help:"List entries, newest first." default:"1"`
		Delete   entries.EntryDeleteCmd   `cmd:"" help:"Delete an entry and everything attached to it."`
		Addendum entries.EntryAddendumCmd `cmd:"" help:"Append a note to an entry."`
	} `cmd:"" help:"Record and review entries."`
	Attach struct {
		Add    entries.AttachAddCmd    `cmd:"" help:"Attach a file to an entry."`
		Remove entries.AttachRemoveCmd `cmd:"" help:"Remove an attachment."`
	} `cmd:"" help:"Manage entry attachments."`
	Thread struct {
		Add    threads.ThreadAddCmd    `cmd:"" help:"Start a responsibility thread."`
		Close  threads.ThreadCloseCmd  `cmd:"" help:"Close a thread."`
		Reopen threads.ThreadReopenCmd `cmd:"" help:"Reopen a closed thread."`
		Link   threads.ThreadLinkCmd   `cmd:"" help:"Link an entry to a thread."`
		Unlink threads.ThreadUnlinkCmd `cmd:"" help:"Unlink an entry from a thread."`
		List   threads.ThreadListCmd   `cmd:"" help:"List threads." default:"1"`
		Show   threads.ThreadShowCmd   `cmd:"" help:"Show a thread and its entries."`
	} `cmd:"" help:"Manage responsibility threads."`
	Contact struct {
		Add    sharing.ContactAddCmd    `cmd:"" help:"Add a trusted hand."`
		Revoke sharing.ContactRevokeCmd `cmd:"" help:"Revoke a trusted hand."`
		List   sharing.ContactListCmd   `cmd:"" help:"List trusted hands." default:"1"`
	} `cmd:"" help:"Manage trusted hands."`
	Share  sharing.ShareCmd  `cmd:"" help:"Share an entry with a trusted hand."`
	Note   sharing.NoteCmd   `cmd:"" help:"Record a trusted hand's witness note on a share."`
	Shares sharing.SharesCmd `cmd:"" help:"List shares and witness notes."`

	Pattern reports.PatternCmd `cmd:"" help:"Show entry patterns by week or month."`
	Archive reports.ArchiveCmd `cmd:"" help:"Browse entries by year and month."`
	Review  reports.ReviewCmd  `cmd:"" help:"Show or write the review note for a period."`
	Themes  reports.ThemesCmd  `cmd:"" help:"List themes or suggest by prefix."`
	Export  reports.ExportCmd  `cmd:"" help:"Export the ledger as JSON or text."`
	Import  reports.ImportCmd  `cmd:"" help:"Replace the ledger with a JSON export."`

	Settings struct {
		Get settings.SettingsGetCmd `cmd:"" help:"Show settings." default:"1"`
		Set settings.SettingsSetCmd `cmd:"" help:"Change a setting."`
	} `cmd:"" help:"Manage application settings."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage store backups."`
	Keyring struct {
		Set      system.KeyringSetCmd      `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get      system.KeyringGetCmd      `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete   system.KeyringDeleteCmd   `cmd:"" help:"Remove the stored connection string."`
		S3Secret system.KeyringS3SecretCmd `cmd:"" name:"s3-secret" help:"Store or remove the S3 secret key."`
		Status   system.KeyringStatusCmd   `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
	DebugCmds struct {
		Path  system.DebugDBPathCmd `cmd:"" help:"Show the store path and backend."`
		Slots system.DebugSlotsCmd  `cmd:"" help:"List stored collections and recent writes."`
	} `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("A private ledger of what you built, who you helped, and what you learned"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(config.YAML, constants.DefaultConfigFile),
		kong.Vars{
			"version":       constants.Version,
			"default_store": constants.DefaultStorePath,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: kong.ExpandPath(constants.DefaultConfigDir)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(sigCtx, ctx); err != nil {
		logger.Error("Command failed", "command", ctx.Command(), "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(sigCtx context.Context, ctx *kong.Context) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	blobs, err := openBlobs(sigCtx, store)
	if err != nil {
		return err
	}

	appCtx := &cli.Context{
		Store:   store,
		Journal: journal.New(store, journal.WithBlobStore(blobs)),
		Blobs:   blobs,
		Ctx:     sigCtx,
	}

	// Commands that open, repair or replace the store handle loading themselves
	if needsStore(ctx.Command()) {
		if err := store.Load(); err != nil {
			return err
		}
	}

	return ctx.Run(appCtx)
}

// openStore resolves --store, preferring a keyring connection string when the
// flag was left at its default.
func openStore() (storage.Provider, error) {
	if CLI.Store == constants.DefaultStorePath {
		connStr, err := keyring.GetConnectionString()
		switch {
		case err == nil:
			logger.Debug("Using connection string from keyring")
			return storage.OpenKeyring(connStr), nil
		case !errors.Is(err, keyring.ErrNotFound):
			logger.Debug("Keyring lookup failed", "error", err)
		}
	}

	target := CLI.Store
	if kind := storage.Kind(target); kind == storage.KindSQLite || kind == storage.KindJSON {
		target = kong.ExpandPath(target)
	}
	logger.Debug("Opening store", "kind", storage.Kind(target))
	return storage.Open(target)
}

// openBlobs builds the attachment content store. A nil store disables attachments.
func openBlobs(ctx context.Context, store storage.Provider) (blob.Store, error) {
	switch CLI.BlobBackend {
	case "none":
		return nil, nil
	case "s3":
		if CLI.S3Bucket == "" {
			return nil, fmt.Errorf("--s3-bucket is required with --blob-backend=s3")
		}
		secret := os.Getenv("LEDGER_S3_SECRET_KEY")
		if secret == "" && CLI.S3AccessKey != "" {
			s, err := keyring.GetS3SecretKey()
			if err != nil {
				return nil, fmt.Errorf("no S3 secret key: set LEDGER_S3_SECRET_KEY or run 'ledger keyring s3-secret': %w", err)
			}
			secret = s
		}
		return blob.NewS3Store(ctx, blob.S3Config{
			Bucket:    CLI.S3Bucket,
			Region:    CLI.S3Region,
			Endpoint:  CLI.S3Endpoint,
			AccessKey: CLI.S3AccessKey,
			SecretKey: secret,
			Prefix:    CLI.S3Prefix,
		})
	default:
		return blob.NewLocalStore(attachmentsDir(CLI.AttachmentsDir, store)), nil
	}
}

// attachmentsDir places local attachment content next to a file-backed store.
// Database servers and in-memory stores use the config directory.
func attachmentsDir(override string, store storage.Provider) string {
	if override != "" {
		return kong.ExpandPath(override)
	}
	switch s := store.(type) {
	case *sqlite.Store, *storage.JSONStore:
		return filepath.Join(filepath.Dir(s.GetConfigPath()), constants.AttachmentsDirName)
	default:
		return filepath.Join(kong.ExpandPath(constants.DefaultConfigDir), constants.AttachmentsDirName)
	}
}

// needsStore reports whether the selected command expects a loaded store.
func needsStore(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "init", "migrate", "doctor", "keyring":
		return false
	case "backup":
		return len(fields) < 2 || fields[1] != "restore"
	case "debug":
		return len(fields) < 2 || fields[1] != "path"
	}
	return true
}
