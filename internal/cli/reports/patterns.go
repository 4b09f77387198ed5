package reports

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/views"
)

var barStyles = map[models.EntryType]lipgloss.Style{
	models.EntryBuilt:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	models.EntryHelped:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	models.EntryLearned: lipgloss.NewStyle().Foreground(lipgloss.Color("170")),
}

type PatternCmd struct {
	Group string `short:"g" enum:",week,month" default:"" help:"Group by week or month. Defaults to the pattern_grouping setting."`
	Limit int    `short:"n" default:"8" help:"Number of periods to show (0 for all)."`
}

func (c *PatternCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	grouping := c.Group
	if grouping == "" {
		grouping = ctx.Journal.Settings(bg).PatternGrouping
	}

	entries := ctx.Journal.ListEntries(bg)
	if len(entries) == 0 {
		ctx.Println("No entries yet.")
		return nil
	}

	totals := views.TypeTotals(entries)
	parts := make([]string, 0, len(models.EntryTypes))
	for _, t := range models.EntryTypes {
		parts = append(parts, fmt.Sprintf("%s %d", t.Label(), totals[t]))
	}
	ctx.Println(cli.Header(fmt.Sprintf("Patterns by %s", grouping)))
	ctx.Printf("All time: %s\n\n", strings.Join(parts, "  "))

	buckets := views.Patterns(entries, grouping, ctx.Journal.Location(bg))
	shown := buckets
	if c.Limit > 0 && len(shown) > c.Limit {
		shown = shown[:c.Limit]
	}

	for _, b := range shown {
		counts := make([]string, 0, len(models.EntryTypes))
		for _, t := range models.EntryTypes {
			counts = append(counts, fmt.Sprintf("%s %d", t.Label(), b.Count(t)))
		}
		ctx.Printf("%-10s %-28s %s\n", b.Label, strings.Join(counts, "  "), bar(b))
		if note := ctx.Journal.ReviewNote(bg, b.Key); note != nil {
			ctx.Printf("%-10s %s\n", "", cli.Muted("Review: "+note.Content))
		}
	}
	if len(shown) < len(buckets) {
		ctx.Println(cli.Muted(fmt.Sprintf("... %d earlier periods", len(buckets)-len(shown))))
	}
	return nil
}

// bar draws one block per entry, colored by type.
func bar(b views.Bucket) string {
	var sb strings.Builder
	for _, t := range models.EntryTypes {
		if n := b.Count(t); n > 0 {
			sb.WriteString(barStyles[t].Render(strings.Repeat("█", n)))
		}
	}
	return sb.String()
}

type ArchiveCmd struct {
	Year    int  `help:"Only show this year."`
	Compact bool `help:"Show month counts without listing entries."`
}

func (c *ArchiveCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	loc := ctx.Journal.Location(bg)
	years := views.BuildArchive(ctx.Journal.ListEntries(bg), ctx.Journal.Now(), loc)
	if len(years) == 0 {
		ctx.Println("No entries yet.")
		return nil
	}

	found := false
	for _, y := range years {
		if c.Year != 0 && y.Year != c.Year {
			continue
		}
		found = true
		ctx.Println(cli.Header(fmt.Sprintf("%d (%d)", y.Year, y.Total)))
		for _, m := range y.Months {
			if len(m.Entries) == 0 {
				ctx.Printf("  %s\n", cli.Muted(m.Label+" (0)"))
				continue
			}
			ctx.Printf("  %s (%d)\n", m.Label, len(m.Entries))
			if c.Compact {
				continue
			}
			for _, e := range m.Entries {
				ctx.Printf("    %s  %s  %-8s  %s\n",
					cli.Muted(cli.ShortID(e.ID)),
					e.CreatedAt.In(loc).Format(constants.ShortDateFormat),
					cli.TypeLabel(e.Type),
					firstLine(e.Affected))
			}
		}
		ctx.Println()
	}
	if !found {
		ctx.Printf("No entries in %d.\n", c.Year)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
