package entries

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/ledger/internal/cli"
	lerrors "github.com/julianstephens/ledger/internal/errors"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/views"
)

type EntryEditCmd struct {
	ID          string   `arg:"" help:"Entry id or unique prefix."`
	Type        *string  `help:"New entry type (built|helped|learned)."`
	Affected    *string  `short:"a" help:"Who or what was affected."`
	Cost        *string  `short:"c" help:"What it cost."`
	Reflection  *string  `short:"r" help:"Reflection on what happened."`
	Theme       []string `short:"t" help:"Replace the entry's themes. Repeatable or comma separated."`
	ClearThemes bool     `help:"Remove every theme from the entry."`
}

func (c *EntryEditCmd) patch() (models.EntryPatch, error) {
	var p models.EntryPatch
	if c.Type != nil {
		t, err := models.ParseEntryType(*c.Type)
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	p.Affected = c.Affected
	p.Cost = c.Cost
	p.Reflection = c.Reflection
	switch {
	case c.ClearThemes:
		themes := []string{}
		p.Themes = &themes
	case len(c.Theme) > 0:
		themes := splitThemes(strings.Join(c.Theme, ","))
		p.Themes = &themes
	}
	return p, nil
}

func (c *EntryEditCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()

	entry, err := cli.ResolveEntry(ctx, c.ID)
	if err != nil {
		return err
	}

	patch, err := c.patch()
	if err != nil {
		return err
	}
	if patch.Empty() {
		ctx.Println("No changes specified. Use flags such as --reflection to edit the entry.")
		return nil
	}

	updated, err := ctx.Journal.EditEntry(bg, entry.ID, patch)
	if errors.Is(err, lerrors.ErrEntryLocked) {
		loc := ctx.Journal.Location(bg)
		return fmt.Errorf("entry %s locked at %s; use 'ledger entry addendum' to add to it",
			cli.ShortID(entry.ID), views.Timestamp(journal.EditableUntil(entry), loc))
	}
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if updated == nil {
		return fmt.Errorf("entry not found: %s", c.ID)
	}

	ctx.Println(cli.Success(fmt.Sprintf("Updated entry %s", cli.ShortID(updated.ID))))
	return nil
}
