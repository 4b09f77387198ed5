package entries

import (
	"fmt"
	"strings"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/views"
)

type EntryAddCmd struct {
	Type        string   `arg:"" optional:"" help:"Entry type (built|helped|learned)."`
	Affected    string   `short:"a" help:"Who or what was affected."`
	Cost        string   `short:"c" help:"What it cost."`
	Reflection  string   `short:"r" help:"Reflection on what happened."`
	Theme       []string `short:"t" help:"Theme tag. Repeatable or comma separated."`
	Thread      []string `help:"Link the new entry to this thread (id or prefix). Repeatable."`
	Interactive bool     `short:"i" help:"Fill the entry in with an interactive form."`
}

func (c *EntryAddCmd) Validate() error {
	if !c.Interactive && strings.TrimSpace(c.Type) == "" {
		return fmt.Errorf("entry type is required unless --interactive is given")
	}
	return nil
}

func (c *EntryAddCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()

	// Resolve threads up front so a typo doesn't leave an unlinked entry behind
	threads := make([]models.ResponsibilityThread, 0, len(c.Thread))
	for _, ref := range c.Thread {
		t, err := cli.ResolveThread(ctx, ref)
		if err != nil {
			return err
		}
		threads = append(threads, t)
	}

	var input models.EntryInput
	if c.Interactive {
		fm := &EntryFormModel{
			Affected:   c.Affected,
			Cost:       c.Cost,
			Reflection: c.Reflection,
			Themes:     strings.Join(c.Theme, ", "),
		}
		if t, err := models.ParseEntryType(c.Type); err == nil {
			fm.Type = t
		}
		var suggestions []string
		if ctx.Journal.Settings(bg).ThemeSuggestions {
			suggestions = ctx.Journal.UserThemes(bg)
		}
		if err := runForm(NewEntryForm(fm, suggestions)); err != nil {
			return fmt.Errorf("entry form cancelled: %w", err)
		}
		input = fm.Input()
	} else {
		t, err := models.ParseEntryType(c.Type)
		if err != nil {
			return err
		}
		input = models.EntryInput{
			Type:       t,
			Affected:   c.Affected,
			Cost:       c.Cost,
			Reflection: c.Reflection,
			Themes:     splitThemes(strings.Join(c.Theme, ",")),
		}
	}

	entry, err := ctx.Journal.CreateEntry(bg, input)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}

	for _, t := range threads {
		if _, err := ctx.Journal.Link(bg, entry.ID, t.ID); err != nil {
			return fmt.Errorf("entry created but linking to thread %q failed: %w", t.Title, err)
		}
	}

	ctx.Println(cli.Success(fmt.Sprintf("Recorded %s entry %s", strings.ToLower(entry.Type.Label()), cli.ShortID(entry.ID))))
	if len(threads) > 0 {
		titles := make([]string, len(threads))
		for i, t := range threads {
			titles[i] = t.Title
		}
		ctx.Printf("  Linked to: %s\n", strings.Join(titles, ", "))
	}
	ctx.Printf("  Editable until %s\n", views.Timestamp(journal.EditableUntil(*entry), ctx.Journal.Location(bg)))
	return nil
}
