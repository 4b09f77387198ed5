package entries

import (
	"fmt"
	"strings"

	"github.com/julianstephens/ledger/internal/cli"
)

// EntryAddendumCmd appends a note to an entry. Works on locked entries.
type EntryAddendumCmd struct {
	ID      string   `arg:"" help:"Entry id or unique prefix."`
	Content []string `arg:"" help:"Addendum text."`
}

func (c *EntryAddendumCmd) Run(ctx *cli.Context) error {
	entry, err := cli.ResolveEntry(ctx, c.ID)
	if err != nil {
		return err
	}

	updated, err := ctx.Journal.AddAddendum(ctx.Background(), entry.ID, strings.Join(c.Content, " "))
	if err != nil {
		return fmt.Errorf("failed to add addendum: %w", err)
	}
	if updated == nil {
		return fmt.Errorf("entry not found: %s", c.ID)
	}

	ctx.Println(cli.Success(fmt.Sprintf("Added addendum %d to entry %s", len(updated.Addenda), cli.ShortID(updated.ID))))
	return nil
}
