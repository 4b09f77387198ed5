package threads

import (
	"fmt"
	"strings"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/views"
)

type ThreadAddCmd struct {
	Title []string `arg:"" help:"Thread title."`
}

func (c *ThreadAddCmd) Run(ctx *cli.Context) error {
	thread, err := ctx.Journal.CreateThread(ctx.Background(), strings.Join(c.Title, " "))
	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}
	ctx.Println(cli.Success(fmt.Sprintf("Started thread %q (%s)", thread.Title, cli.ShortID(thread.ID))))
	return nil
}

type ThreadCloseCmd struct {
	ID string `arg:"" help:"Thread id or unique prefix."`
}

func (c *ThreadCloseCmd) Run(ctx *cli.Context) error {
	thread, err := cli.ResolveThread(ctx, c.ID)
	if err != nil {
		return err
	}
	if !thread.IsOpen() {
		ctx.Printf("Thread %q is already closed.\n", thread.Title)
		return nil
	}

	closed, err := ctx.Journal.CloseThread(ctx.Background(), thread.ID)
	if err != nil {
		return fmt.Errorf("failed to close thread: %w", err)
	}
	if closed == nil {
		return fmt.Errorf("thread not found: %s", c.ID)
	}
	ctx.Println(cli.Success(fmt.Sprintf("Closed thread %q", closed.Title)))
	return nil
}

type ThreadReopenCmd struct {
	ID string `arg:"" help:"Thread id or unique prefix."`
}

func (c *ThreadReopenCmd) Run(ctx *cli.Context) error {
	thread, err := cli.ResolveThread(ctx, c.ID)
	if err != nil {
		return err
	}

	reopened, err := ctx.Journal.ReopenThread(ctx.Background(), thread.ID)
	if err != nil {
		return fmt.Errorf("failed to reopen thread: %w", err)
	}
	if reopened == nil {
		return fmt.Errorf("thread not found: %s", c.ID)
	}
	ctx.Println(cli.Success(fmt.Sprintf("Reopened thread %q", reopened.Title)))
	return nil
}

type ThreadLinkCmd struct {
	Entry  string `arg:"" help:"Entry id or unique prefix."`
	Thread string `arg:"" help:"Thread id or unique prefix."`
}

func (c *ThreadLinkCmd) Run(ctx *cli.Context) error {
	entry, err := cli.ResolveEntry(ctx, c.Entry)
	if err != nil {
		return err
	}
	thread, err := cli.ResolveThread(ctx, c.Thread)
	if err != nil {
		return err
	}

	link, err := ctx.Journal.Link(ctx.Background(), entry.ID, thread.ID)
	if err != nil {
		return fmt.Errorf("failed to link entry: %w", err)
	}
	if link == nil {
		return fmt.Errorf("entry or thread no longer exists")
	}
	ctx.Println(cli.Success(fmt.Sprintf("Linked entry %s to %q", cli.ShortID(entry.ID), thread.Title)))
	return nil
}

type ThreadUnlinkCmd struct {
	Entry  string `arg:"" help:"Entry id or unique prefix."`
	Thread string `arg:"" help:"Thread id or unique prefix."`
}

func (c *ThreadUnlinkCmd) Run(ctx *cli.Context) error {
	entry, err := cli.ResolveEntry(ctx, c.Entry)
	if err != nil {
		return err
	}
	thread, err := cli.ResolveThread(ctx, c.Thread)
	if err != nil {
		return err
	}

	removed, err := ctx.Journal.Unlink(ctx.Background(), entry.ID, thread.ID)
	if err != nil {
		return fmt.Errorf("failed to unlink entry: %w", err)
	}
	if !removed {
		ctx.Printf("Entry %s is not linked to %q.\n", cli.ShortID(entry.ID), thread.Title)
		return nil
	}
	ctx.Println(cli.Success(fmt.Sprintf("Unlinked entry %s from %q", cli.ShortID(entry.ID), thread.Title)))
	return nil
}

type ThreadListCmd struct {
	Open bool `help:"Only show open threads."`
}

func (c *ThreadListCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	threads := ctx.Journal.ListThreads(bg)
	if c.Open {
		threads = models.Active(threads)
	}
	if len(threads) == 0 {
		ctx.Println("No responsibility threads yet. Start one with 'ledger thread add'.")
		return nil
	}

	counts := ctx.Journal.ThreadEntryCounts(bg)
	loc := ctx.Journal.Location(bg)
	for _, t := range threads {
		state := "open"
		if !t.IsOpen() {
			state = "closed " + views.Timestamp(*t.ClosedAt, loc)
		}
		ctx.Printf("%s  %s  %s\n", cli.Muted(cli.ShortID(t.ID)), t.Title,
			cli.Muted(fmt.Sprintf("(%s, %s)", state, entryCount(counts[t.ID]))))
	}
	return nil
}

type ThreadShowCmd struct {
	ID string `arg:"" help:"Thread id or unique prefix."`
}

func (c *ThreadShowCmd) Run(ctx *cli.Context) error {
	thread, err := cli.ResolveThread(ctx, c.ID)
	if err != nil {
		return err
	}

	bg := ctx.Background()
	loc := ctx.Journal.Location(bg)
	now := ctx.Journal.Now()

	ctx.Println(cli.Header(thread.Title))
	ctx.Printf("Started %s\n", views.Timestamp(thread.CreatedAt, loc))
	if thread.IsOpen() {
		ctx.Println("Open")
	} else {
		ctx.Printf("Closed %s\n", views.Timestamp(*thread.ClosedAt, loc))
	}
	ctx.Println()

	entries := ctx.Journal.EntriesForThread(bg, thread.ID)
	if len(entries) == 0 {
		ctx.Println("No entries linked yet.")
		return nil
	}
	ctx.Printf("%s:\n", entryCount(len(entries)))
	for _, e := range entries {
		ctx.Printf("  %s  %-8s  %s\n", cli.Muted(cli.ShortID(e.ID)), cli.TypeLabel(e.Type), views.RelativeTime(e.CreatedAt, now, loc))
	}
	return nil
}

func entryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}
