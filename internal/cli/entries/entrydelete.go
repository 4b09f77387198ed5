package entries

import (
	"fmt"

	"github.com/julianstephens/ledger/internal/cli"
)

type EntryDeleteCmd struct {
	ID  string `arg:"" help:"Entry id or unique prefix."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *EntryDeleteCmd) Run(ctx *cli.Context) error {
	entry, err := cli.ResolveEntry(ctx, c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Printf("Deleting %s entry %s removes its addenda, attachments and thread links.\n",
			entry.Type, cli.ShortID(entry.ID))
		ctx.Println("Share history is kept.")
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	deleted, err := ctx.Journal.DeleteEntry(ctx.Background(), entry.ID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if !deleted {
		return fmt.Errorf("entry not found: %s", c.ID)
	}

	ctx.Println(cli.Success(fmt.Sprintf("Deleted entry %s", cli.ShortID(entry.ID))))
	return nil
}
