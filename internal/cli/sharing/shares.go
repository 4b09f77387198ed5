package sharing

import (
	"fmt"
	"strings"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/views"
)

type ShareCmd struct {
	Entry   string `arg:"" help:"Entry id or unique prefix."`
	Contact string `arg:"" help:"Trusted contact id or unique prefix."`
	Reason  string `short:"r" required:"" help:"Why you are sharing this entry."`
}

func (c *ShareCmd) Run(ctx *cli.Context) error {
	entry, err := cli.ResolveEntry(ctx, c.Entry)
	if err != nil {
		return err
	}
	contact, err := cli.ResolveContact(ctx, c.Contact)
	if err != nil {
		return err
	}
	if !contact.IsActive() {
		return fmt.Errorf("%s has been revoked and can no longer receive entries", contact.DisplayName)
	}

	share, err := ctx.Journal.ShareEntry(ctx.Background(), entry.ID, contact.ID, c.Reason)
	if err != nil {
		return fmt.Errorf("failed to share entry: %w", err)
	}
	if share == nil {
		return fmt.Errorf("entry or contact no longer available")
	}

	ctx.Println(cli.Success(fmt.Sprintf("Shared entry %s with %s (%s)", cli.ShortID(entry.ID), contact.DisplayName, cli.ShortID(share.ID))))
	if len([]rune(strings.TrimSpace(c.Reason))) > constants.MaxShareReasonLength {
		ctx.Println(cli.Warning(fmt.Sprintf("Reason was shortened to %d characters", constants.MaxShareReasonLength)))
	}
	return nil
}

// NoteCmd records the witness response to a share. One note per share.
type NoteCmd struct {
	Share string   `arg:"" help:"Share id or unique prefix."`
	Text  []string `arg:"" help:"The witness's note."`
}

func (c *NoteCmd) Run(ctx *cli.Context) error {
	share, err := cli.ResolveShare(ctx, c.Share)
	if err != nil {
		return err
	}

	text := strings.Join(c.Text, " ")
	note, err := ctx.Journal.AddTrustedNote(ctx.Background(), share.ID, text)
	if err != nil {
		return fmt.Errorf("failed to add witness note: %w", err)
	}
	if note == nil {
		return fmt.Errorf("share %s already has a witness note", cli.ShortID(share.ID))
	}

	ctx.Println(cli.Success(fmt.Sprintf("Recorded witness note on share %s", cli.ShortID(share.ID))))
	if len([]rune(strings.TrimSpace(text))) > constants.MaxTrustedNoteLength {
		ctx.Println(cli.Warning(fmt.Sprintf("Note was shortened to %d characters", constants.MaxTrustedNoteLength)))
	}
	return nil
}

type SharesCmd struct {
	Entry string `help:"Only show shares of this entry (id or prefix)."`
}

func (c *SharesCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()

	var shares []models.SharedEntry
	if c.Entry != "" {
		entry, err := cli.ResolveEntry(ctx, c.Entry)
		if err != nil {
			return err
		}
		shares = ctx.Journal.SharesForEntry(bg, entry.ID)
	} else {
		shares = ctx.Journal.ListShares(bg)
	}
	if len(shares) == 0 {
		ctx.Println("Nothing shared yet.")
		return nil
	}

	names := make(map[string]string)
	for _, contact := range ctx.Journal.ListTrustedContacts(bg) {
		names[contact.ID] = contact.DisplayName
	}

	loc := ctx.Journal.Location(bg)
	for _, s := range shares {
		name, ok := names[s.TrustedContactID]
		if !ok {
			name = "(unknown contact)"
		}
		entryRef := cli.ShortID(s.EntryID)
		if ctx.Journal.GetEntry(bg, s.EntryID) == nil {
			entryRef += " " + cli.Muted("(deleted)")
		}
		ctx.Printf("%s  %s  entry %s  to %s\n", cli.Muted(cli.ShortID(s.ID)), views.Timestamp(s.CreatedAt, loc), entryRef, name)
		ctx.Printf("    Reason: %s\n", s.Reason)
		if note := ctx.Journal.NoteForShare(bg, s.ID); note != nil {
			ctx.Printf("    Witness note: %s\n", note.Text)
		}
	}
	return nil
}
