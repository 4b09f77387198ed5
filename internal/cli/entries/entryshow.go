package entries

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/views"
)

type EntryShowCmd struct {
	ID string `arg:"" help:"Entry id or unique prefix."`
}

func (c *EntryShowCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()

	entry, err := cli.ResolveEntry(ctx, c.ID)
	if err != nil {
		return err
	}

	loc := ctx.Journal.Location(bg)
	now := ctx.Journal.Now()

	ctx.Printf("%s  %s\n", cli.TypeLabel(entry.Type), cli.Muted(entry.ID))
	ctx.Printf("Recorded %s (%s)\n", views.Timestamp(entry.CreatedAt, loc), views.RelativeTime(entry.CreatedAt, now, loc))
	if journal.IsEditable(entry, now) {
		ctx.Printf("Editable for %s more\n", formatRemaining(journal.EditableUntil(entry).Sub(now)))
	} else {
		ctx.Println(cli.Muted(fmt.Sprintf("Locked since %s; add an addendum to extend it", views.Timestamp(journal.EditableUntil(entry), loc))))
	}
	ctx.Println()

	field(ctx, "Affected", entry.Affected)
	field(ctx, "Cost", entry.Cost)
	field(ctx, "Reflection", entry.Reflection)

	if len(entry.Themes) > 0 {
		ctx.Printf("\nThemes: %s\n", strings.Join(entry.Themes, ", "))
	}

	if threads := ctx.Journal.ThreadsForEntry(bg, entry.ID); len(threads) > 0 {
		ctx.Println()
		ctx.Println(cli.Header("Responsibilities"))
		for _, t := range threads {
			state := "open"
			if !t.IsOpen() {
				state = "closed"
			}
			ctx.Printf("  - %s %s\n", t.Title, cli.Muted(fmt.Sprintf("(%s, %s)", cli.ShortID(t.ID), state)))
		}
	}

	if len(entry.Attachments) > 0 {
		ctx.Println()
		ctx.Println(cli.Header("Attachments"))
		for _, a := range entry.Attachments {
			ctx.Printf("  - %s %s\n", a.Filename, cli.Muted(attachmentDetail(a)))
		}
	}

	if len(entry.Addenda) > 0 {
		ctx.Println()
		ctx.Println(cli.Header("Addenda"))
		for _, a := range entry.Addenda {
			ctx.Printf("  [%s] %s\n", views.Timestamp(a.CreatedAt, loc), a.Content)
		}
	}

	if shares := ctx.Journal.SharesForEntry(bg, entry.ID); len(shares) > 0 {
		ctx.Println()
		ctx.Println(cli.Header("Shared with"))
		for _, s := range shares {
			name := "(unknown contact)"
			if contact := ctx.Journal.GetTrustedContact(bg, s.TrustedContactID); contact != nil {
				name = contact.DisplayName
			}
			ctx.Printf("  - %s on %s %s\n", name, views.Timestamp(s.CreatedAt, loc), cli.Muted(cli.ShortID(s.ID)))
			ctx.Printf("    Reason: %s\n", s.Reason)
			if note := ctx.Journal.NoteForShare(bg, s.ID); note != nil {
				ctx.Printf("    Witness note: %s\n", note.Text)
			}
		}
	}
	return nil
}

func field(ctx *cli.Context, label, value string) {
	if value == "" {
		value = cli.Muted("(empty)")
	}
	ctx.Printf("%s: %s\n", label, value)
}

func attachmentDetail(a models.Attachment) string {
	parts := []string{cli.ShortID(a.ID)}
	if a.MimeType != "" {
		parts = append(parts, a.MimeType)
	}
	if a.Size > 0 {
		parts = append(parts, humanize.Bytes(uint64(a.Size)))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// formatRemaining renders a positive duration as "5h 12m" or "42m".
func formatRemaining(d time.Duration) string {
	d = d.Truncate(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return "less than a minute"
	}
}
