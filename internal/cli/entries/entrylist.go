package entries

import (
	"fmt"
	"strings"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/views"
)

type EntryListCmd struct {
	Type   string `help:"Only show entries of this type."`
	Theme  string `help:"Only show entries tagged with this theme (case-insensitive)."`
	Thread string `help:"Only show entries linked to this thread (id or prefix)."`
	Limit  int    `short:"n" help:"Show at most this many entries (0 for all)." default:"20"`
}

func (c *EntryListCmd) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	return nil
}

func (c *EntryListCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()

	var entries []models.Entry
	if c.Thread != "" {
		t, err := cli.ResolveThread(ctx, c.Thread)
		if err != nil {
			return err
		}
		entries = ctx.Journal.EntriesForThread(bg, t.ID)
	} else {
		entries = ctx.Journal.ListEntries(bg)
	}

	var typ models.EntryType
	if c.Type != "" {
		t, err := models.ParseEntryType(c.Type)
		if err != nil {
			return err
		}
		typ = t
	}

	filtered := entries[:0]
	for _, e := range entries {
		if typ != "" && e.Type != typ {
			continue
		}
		if c.Theme != "" && !hasTheme(e, c.Theme) {
			continue
		}
		filtered = append(filtered, e)
	}

	if len(filtered) == 0 {
		ctx.Println("No entries found.")
		return nil
	}

	total := len(filtered)
	if c.Limit > 0 && total > c.Limit {
		filtered = filtered[:c.Limit]
	}

	loc := ctx.Journal.Location(bg)
	now := ctx.Journal.Now()
	for _, e := range filtered {
		ctx.Printf("%s  %-8s  %-10s  %s\n",
			cli.Muted(cli.ShortID(e.ID)),
			cli.TypeLabel(e.Type),
			views.RelativeTime(e.CreatedAt, now, loc),
			summary(e))
	}
	if len(filtered) < total {
		ctx.Println(cli.Muted(fmt.Sprintf("... %d more (use --limit 0 to show all)", total-len(filtered))))
	}
	return nil
}

func hasTheme(e models.Entry, theme string) bool {
	for _, t := range e.Themes {
		if strings.EqualFold(t, strings.TrimSpace(theme)) {
			return true
		}
	}
	return false
}

// summary is the first line of the affected field, shortened for list output.
func summary(e models.Entry) string {
	s := e.Affected
	if s == "" {
		s = e.Reflection
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 60 {
		s = string(r[:57]) + "..."
	}
	return s
}
