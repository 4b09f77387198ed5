package threads

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/clock"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/storage"
)

var baseTime = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(baseTime)
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
	store := storage.NewMemoryStore()
	svc := journal.New(store, journal.WithClock(clk), journal.WithIDGenerator(ids))
	if _, err := svc.SetSetting(context.Background(), "timezone", "UTC"); err != nil {
		t.Fatalf("failed to set timezone: %v", err)
	}
	out := &bytes.Buffer{}
	return &cli.Context{Store: store, Journal: svc, Out: out}, out, clk
}

func TestThreadLifecycle(t *testing.T) {
	ctx, out, clk := setupTestContext(t)
	bg := context.Background()

	if err := (&ThreadAddCmd{Title: []string{"Caring", "for", "Dad"}}).Run(ctx); err != nil {
		t.Fatalf("thread add failed: %v", err)
	}
	thread := ctx.Journal.ListThreads(bg)[0]
	if thread.Title != "Caring for Dad" {
		t.Errorf("title = %q", thread.Title)
	}

	clk.Advance(time.Hour)
	if err := (&ThreadCloseCmd{ID: thread.ID}).Run(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	closed := ctx.Journal.GetThread(bg, thread.ID)
	if closed.IsOpen() {
		t.Fatal("thread still open")
	}

	out.Reset()
	if err := (&ThreadCloseCmd{ID: thread.ID}).Run(ctx); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if !strings.Contains(out.String(), "already closed") {
		t.Errorf("unexpected output: %s", out.String())
	}

	if err := (&ThreadReopenCmd{ID: thread.ID}).Run(ctx); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if !ctx.Journal.GetThread(bg, thread.ID).IsOpen() {
		t.Error("thread not reopened")
	}
}

func TestThreadAddCmd_RequiresTitle(t *testing.T) {
	ctx, _, _ := setupTestContext(t)
	if err := (&ThreadAddCmd{Title: []string{"  "}}).Run(ctx); err == nil {
		t.Error("expected blank title to fail")
	}
}

func TestThreadLinkAndShow(t *testing.T) {
	ctx, out, _ := setupTestContext(t)
	bg := context.Background()

	entry, _ := ctx.Journal.CreateEntry(bg, models.EntryInput{Type: models.EntryHelped})
	thread, _ := ctx.Journal.CreateThread(bg, "Platform team")

	for i := 0; i < 2; i++ {
		if err := (&ThreadLinkCmd{Entry: entry.ID, Thread: thread.ID}).Run(ctx); err != nil {
			t.Fatalf("link failed: %v", err)
		}
	}
	if n := ctx.Journal.ThreadEntryCount(bg, thread.ID); n != 1 {
		t.Errorf("linking twice should keep one link, count = %d", n)
	}

	out.Reset()
	if err := (&ThreadShowCmd{ID: thread.ID}).Run(ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"Platform team", "Started Jan 10, 2024 12:00 PM", "Open", "1 entry", entry.ID} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("show output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := (&ThreadListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "(open, 1 entry)") {
		t.Errorf("unexpected list output:\n%s", out.String())
	}

	if err := (&ThreadUnlinkCmd{Entry: entry.ID, Thread: thread.ID}).Run(ctx); err != nil {
		t.Fatalf("unlink failed: %v", err)
	}
	out.Reset()
	if err := (&ThreadUnlinkCmd{Entry: entry.ID, Thread: thread.ID}).Run(ctx); err != nil {
		t.Fatalf("second unlink failed: %v", err)
	}
	if !strings.Contains(out.String(), "is not linked") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestThreadListCmd_OpenOnly(t *testing.T) {
	ctx, out, _ := setupTestContext(t)
	bg := context.Background()

	open, _ := ctx.Journal.CreateThread(bg, "Still going")
	done, _ := ctx.Journal.CreateThread(bg, "Wrapped up")
	if _, err := ctx.Journal.CloseThread(bg, done.ID); err != nil {
		t.Fatal(err)
	}

	if err := (&ThreadListCmd{Open: true}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), open.Title) || strings.Contains(out.String(), done.Title) {
		t.Errorf("unexpected list output:\n%s", out.String())
	}

	out.Reset()
	if err := (&ThreadListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "closed Jan 10, 2024 12:00 PM") {
		t.Errorf("closed thread missing from full list:\n%s", out.String())
	}
}

func TestThreadListCmd_Empty(t *testing.T) {
	ctx, out, _ := setupTestContext(t)
	if err := (&ThreadListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No responsibility threads yet") {
		t.Errorf("unexpected output: %s", out.String())
	}
}
