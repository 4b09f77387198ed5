package reports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/export"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/validation"
)

type ExportCmd struct {
	Format string `short:"f" enum:"json,text" default:"json" help:"Output format (json|text)."`
	Output string `short:"o" default:"-" help:"Output file, or - for stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	dataset := ctx.Journal.Snapshot(bg)

	if c.Output == "-" {
		return c.write(ctx, ctx.Stdout(), dataset)
	}

	f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	err = c.write(ctx, f, dataset)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close export file: %w", cerr)
	}
	if err != nil {
		return err
	}

	ctx.Println(cli.Success(fmt.Sprintf("Exported %d entries to %s", len(dataset.Entries), filepath.Base(c.Output))))
	return nil
}

func (c *ExportCmd) write(ctx *cli.Context, w io.Writer, dataset journal.Dataset) error {
	bg := ctx.Background()
	now := ctx.Journal.Now()
	if c.Format == "text" {
		return export.WriteText(w, dataset, now, ctx.Journal.Location(bg))
	}
	return export.WriteJSON(w, export.NewDocument(dataset, now))
}

// ImportCmd replaces every collection with the contents of a JSON export.
type ImportCmd struct {
	File  string `arg:"" type:"existingfile" help:"JSON export to import."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
	Force bool   `help:"Import even when the export fails integrity checks."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	return c.importFrom(ctx, f)
}

func (c *ImportCmd) importFrom(ctx *cli.Context, r io.Reader) error {
	doc, err := export.ReadJSON(r)
	if err != nil {
		return err
	}
	dataset := doc.Dataset()

	result := validation.New().ValidateDataset(dataset)
	if result.HasErrors() {
		fmt.Fprint(ctx.Stdout(), result.FormatReport())
		if !c.Force {
			return fmt.Errorf("export failed integrity checks; use --force to import anyway")
		}
	}

	if !c.Yes {
		ctx.Printf("This replaces all entries, threads, contacts and shares with %d entries from %s.\n",
			len(dataset.Entries), filepath.Base(c.File))
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Import cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	if err := ctx.Journal.Restore(ctx.Background(), dataset); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	ctx.Println(cli.Success(fmt.Sprintf("Imported %d entries, %d threads, %d trusted contacts",
		len(dataset.Entries), len(dataset.Threads), len(dataset.TrustedContacts))))
	return nil
}
