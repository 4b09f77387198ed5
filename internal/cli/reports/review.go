package reports

import (
	"fmt"
	"strings"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/views"
)

// ReviewCmd shows or writes the review note for one pattern period.
type ReviewCmd struct {
	Period string `arg:"" optional:"" help:"Period key: YYYY-MM for months, the week's Sunday as YYYY-MM-DD. Defaults to the current period."`
	Group  string `short:"g" enum:",week,month" default:"" help:"Grouping used to pick the current period."`
	Note   string `help:"Write this review note for the period, replacing any existing one."`
	List   bool   `short:"l" help:"List every review note."`
}

func (c *ReviewCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()

	if c.List {
		notes := ctx.Journal.ReviewNotes(bg)
		if len(notes) == 0 {
			ctx.Println("No review notes yet.")
			return nil
		}
		for _, n := range notes {
			ctx.Printf("%s  %s\n", n.Period, n.Content)
		}
		return nil
	}

	grouping := c.Group
	period := strings.TrimSpace(c.Period)
	switch {
	case period != "" && grouping == "":
		grouping = groupingOf(period)
	case grouping == "":
		grouping = ctx.Journal.Settings(bg).PatternGrouping
	}
	loc := ctx.Journal.Location(bg)
	if period == "" {
		period = views.PeriodKey(ctx.Journal.Now(), grouping, loc)
	}

	if c.Note != "" {
		if _, err := ctx.Journal.SetReviewNote(bg, period, c.Note); err != nil {
			return fmt.Errorf("failed to save review note: %w", err)
		}
		ctx.Println(cli.Success(fmt.Sprintf("Saved review note for %s", period)))
		return nil
	}

	var bucket *views.Bucket
	for _, b := range views.Patterns(ctx.Journal.ListEntries(bg), grouping, loc) {
		if b.Key == period {
			bucket = &b
			break
		}
	}

	ctx.Println(cli.Header("Review " + period))
	if bucket == nil {
		ctx.Println("No entries in this period.")
	} else {
		for _, t := range models.EntryTypes {
			ctx.Printf("  %-8s %d\n", t.Label(), bucket.Count(t))
		}
	}

	if note := ctx.Journal.ReviewNote(bg, period); note != nil {
		ctx.Printf("\n%s\n", note.Content)
	} else {
		ctx.Println(cli.Muted("\nNo review note. Add one with --note."))
	}
	return nil
}

// groupingOf infers the grouping from the shape of a period key.
func groupingOf(period string) string {
	if len(period) == len("2006-01") {
		return constants.GroupingMonth
	}
	return constants.GroupingWeek
}

type ThemesCmd struct {
	Prefix string `arg:"" optional:"" help:"Only show known themes starting with this prefix."`
}

func (c *ThemesCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()

	if c.Prefix != "" {
		matches := ctx.Journal.SuggestThemes(bg, c.Prefix)
		if len(matches) == 0 {
			ctx.Printf("No known themes start with %q.\n", c.Prefix)
			return nil
		}
		for _, m := range matches {
			ctx.Println(m)
		}
		return nil
	}

	counts := views.ThemeCounts(ctx.Journal.ListEntries(bg))
	used := make(map[string]bool, len(counts))
	for _, tc := range counts {
		used[strings.ToLower(tc.Theme)] = true
	}

	known := ctx.Journal.UserThemes(bg)
	if len(counts) == 0 && len(known) == 0 {
		ctx.Println("No themes yet. Tag entries with --theme.")
		return nil
	}

	for _, tc := range counts {
		ctx.Printf("%-24s %d\n", tc.Theme, tc.Count)
	}
	for _, th := range known {
		if !used[strings.ToLower(th)] {
			ctx.Printf("%-24s %s\n", th, cli.Muted("0"))
		}
	}
	return nil
}
