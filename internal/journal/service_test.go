package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/ledger/internal/clock"
	"github.com/julianstephens/ledger/internal/constants"
	lerrors "github.com/julianstephens/ledger/internal/errors"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/storage"
)

var baseTime = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T, opts ...Option) (*Service, *storage.MemoryStore, *clock.Manual) {
	t.Helper()
	store := storage.NewMemoryStore()
	clk := clock.NewManual(baseTime)
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
	all := append([]Option{WithClock(clk), WithIDGenerator(ids)}, opts...)
	return New(store, all...), store, clk
}

func createEntry(t *testing.T, svc *Service, typ models.EntryType, themes ...string) *models.Entry {
	t.Helper()
	e, err := svc.CreateEntry(context.Background(), models.EntryInput{
		Type:       typ,
		Affected:   "the team",
		Cost:       "an evening",
		Reflection: "worth it",
		Themes:     themes,
	})
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}

func TestCreateEntryPrepends(t *testing.T) {
	ctx := context.Background()
	svc, _, clk := setupService(t)

	first := createEntry(t, svc, models.EntryBuilt)
	clk.Advance(time.Minute)
	second := createEntry(t, svc, models.EntryHelped)

	entries := svc.ListEntries(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.Equal(t, entries[0].CreatedAt, entries[0].UpdatedAt)
	assert.Empty(t, entries[0].Addenda)
	assert.NotNil(t, entries[0].Addenda)
}

func TestCreateEntryRejectsInvalidType(t *testing.T) {
	svc, _, _ := setupService(t)
	_, err := svc.CreateEntry(context.Background(), models.EntryInput{Type: "wandered"})
	assert.ErrorIs(t, err, lerrors.ErrInvalidEntryType)
	assert.Empty(t, svc.ListEntries(context.Background()))
}

func TestCreateEntryMergesThemes(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	createEntry(t, svc, models.EntryBuilt, " Family ", "work", "")
	createEntry(t, svc, models.EntryLearned, "family", "Health")

	assert.Equal(t, []string{"Family", "work", "Health"}, svc.UserThemes(ctx))
	assert.Equal(t, []string{"Family"}, svc.SuggestThemes(ctx, "fa"))
	assert.Len(t, svc.SuggestThemes(ctx, ""), 3)
}

func TestIsEditableBoundary(t *testing.T) {
	svc, _, clk := setupService(t)
	e := createEntry(t, svc, models.EntryBuilt)

	clk.Set(baseTime.Add(23*time.Hour + 59*time.Minute + 59*time.Second))
	assert.True(t, svc.IsEditable(*e))

	clk.Set(baseTime.Add(24 * time.Hour))
	assert.False(t, svc.IsEditable(*e))

	clk.Set(baseTime.Add(24*time.Hour + time.Second))
	assert.False(t, svc.IsEditable(*e))

	assert.Equal(t, baseTime.Add(24*time.Hour), EditableUntil(*e))
}

func TestUpdateEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, clk := setupService(t)
	e := createEntry(t, svc, models.EntryBuilt)

	clk.Advance(2 * time.Hour)
	reflection := "  changed my mind  "
	themes := []string{"Craft"}
	updated, err := svc.UpdateEntry(ctx, e.ID, models.EntryPatch{Reflection: &reflection, Themes: &themes})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "changed my mind", updated.Reflection)
	assert.Equal(t, "the team", updated.Affected)
	assert.Equal(t, []string{"Craft"}, updated.Themes)
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)
	assert.Equal(t, baseTime.Add(2*time.Hour), updated.UpdatedAt)
	assert.Contains(t, svc.UserThemes(ctx), "Craft")

	missing, err := svc.UpdateEntry(ctx, "nope", models.EntryPatch{Reflection: &reflection})
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateEntryIgnoresLock(t *testing.T) {
	ctx := context.Background()
	svc, _, clk := setupService(t)
	e := createEntry(t, svc, models.EntryBuilt)

	clk.Advance(48 * time.Hour)
	cost := "a weekend"
	updated, err := svc.UpdateEntry(ctx, e.ID, models.EntryPatch{Cost: &cost})
	require.NoError(t, err)
	assert.Equal(t, "a weekend", updated.Cost)
}

func TestEditEntryRespectsLock(t *testing.T) {
	ctx := context.Background()
	svc, _, clk := setupService(t)
	e := createEntry(t, svc, models.EntryBuilt)

	cost := "a weekend"
	clk.Advance(time.Hour)
	_, err := svc.EditEntry(ctx, e.ID, models.EntryPatch{Cost: &cost})
	require.NoError(t, err)

	clk.Advance(24 * time.Hour)
	other := "a month"
	_, err = svc.EditEntry(ctx, e.ID, models.EntryPatch{Cost: &other})
	assert.ErrorIs(t, err, lerrors.ErrEntryLocked)
	assert.Equal(t, "a weekend", svc.GetEntry(ctx, e.ID).Cost)

	bad := models.EntryType("nope")
	_, err = svc.EditEntry(ctx, e.ID, models.EntryPatch{Type: &bad})
	assert.ErrorIs(t, err, lerrors.ErrInvalidEntryType)
}

func TestAddAddendum(t *testing.T) {
	ctx := context.Background()
	svc, _, clk := setupService(t)
	e := createEntry(t, svc, models.EntryHelped)

	clk.Advance(72 * time.Hour)
	prev := e.UpdatedAt
	for i := 1; i <= 3; i++ {
		updated, err := svc.AddAddendum(ctx, e.ID, fmt.Sprintf("note %d", i))
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Len(t, updated.Addenda, i)
		assert.Equal(t, e.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(prev), "updatedAt must advance")
		prev = updated.UpdatedAt
	}

	got := svc.GetEntry(ctx, e.ID)
	require.Len(t, got.Addenda, 3)
	for i, a := range got.Addenda {
		assert.Equal(t, fmt.Sprintf("note %d", i+1), a.Content)
	}

	_, err := svc.AddAddendum(ctx, e.ID, "   ")
	assert.ErrorIs(t, err, lerrors.ErrContentRequired)

	missing, err := svc.AddAddendum(ctx, "nope", "text")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteEntryRemovesLinks(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	doomed := createEntry(t, svc, models.EntryBuilt)
	kept := createEntry(t, svc, models.EntryLearned)
	thread, err := svc.CreateThread(ctx, "Caring for Dad")
	require.NoError(t, err)

	_, err = svc.Link(ctx, doomed.ID, thread.ID)
	require.NoError(t, err)
	_, err = svc.Link(ctx, kept.ID, thread.ID)
	require.NoError(t, err)

	ok, err := svc.DeleteEntry(ctx, doomed.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Nil(t, svc.GetEntry(ctx, doomed.ID))
	assert.NotNil(t, svc.GetThread(ctx, thread.ID))
	entries := svc.EntriesForThread(ctx, thread.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, kept.ID, entries[0].ID)

	ok, err = svc.DeleteEntry(ctx, doomed.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteFailurePropagates(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setupService(t)
	e := createEntry(t, svc, models.EntryBuilt)

	store.FailWrites = errors.New("disk full")
	_, err := svc.AddAddendum(ctx, e.ID, "later")
	require.Error(t, err)
	_, err = svc.CreateThread(ctx, "x")
	require.Error(t, err)

	store.FailWrites = nil
	assert.Empty(t, svc.GetEntry(ctx, e.ID).Addenda)
}

func TestCorruptSlotReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setupService(t)
	require.NoError(t, store.Put(ctx, constants.SlotEntries, []byte("{{{")))

	assert.Empty(t, svc.ListEntries(ctx))
	assert.Nil(t, svc.GetEntry(ctx, "anything"))
}

func TestThreadLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, clk := setupService(t)

	_, err := svc.CreateThread(ctx, "   ")
	assert.ErrorIs(t, err, lerrors.ErrTitleRequired)

	a, err := svc.CreateThread(ctx, "  Team lead  ")
	require.NoError(t, err)
	assert.Equal(t, "Team lead", a.Title)
	b, err := svc.CreateThread(ctx, "Garden")
	require.NoError(t, err)

	threads := svc.ListThreads(ctx)
	require.Len(t, threads, 2)
	assert.Equal(t, b.ID, threads[0].ID)

	clk.Advance(time.Hour)
	closed, err := svc.CloseThread(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, baseTime.Add(time.Hour), *closed.ClosedAt)

	clk.Advance(time.Hour)
	again, err := svc.CloseThread(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(time.Hour), *again.ClosedAt)

	reopened, err := svc.ReopenThread(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, reopened.IsOpen())
	assert.True(t, svc.GetThread(ctx, a.ID).IsOpen())

	missing, err := svc.CloseThread(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLinkIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	e1 := createEntry(t, svc, models.EntryBuilt)
	e2 := createEntry(t, svc, models.EntryHelped)
	thread, err := svc.CreateThread(ctx, "Work")
	require.NoError(t, err)
	other, err := svc.CreateThread(ctx, "Home")
	require.NoError(t, err)

	first, err := svc.Link(ctx, e1.ID, thread.ID)
	require.NoError(t, err)
	second, err := svc.Link(ctx, e1.ID, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	_, err = svc.Link(ctx, e2.ID, thread.ID)
	require.NoError(t, err)
	_, err = svc.Link(ctx, e1.ID, other.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, svc.ThreadEntryCount(ctx, thread.ID))
	assert.Len(t, svc.ThreadsForEntry(ctx, e1.ID), 2)

	removed, err := svc.Unlink(ctx, e1.ID, thread.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = svc.Unlink(ctx, e1.ID, thread.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, 1, svc.ThreadEntryCount(ctx, thread.ID))
	assert.Len(t, svc.ThreadsForEntry(ctx, e1.ID), 1)
	assert.Len(t, svc.EntriesForThread(ctx, other.ID), 1)

	dangling, err := svc.Link(ctx, "ghost", thread.ID)
	assert.NoError(t, err)
	assert.Nil(t, dangling)
}

func TestTrustedContactCap(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	var ids []string
	for i := 0; i < constants.MaxActiveContacts; i++ {
		c, err := svc.AddTrustedContact(ctx, fmt.Sprintf("Friend %d", i), "sms")
		require.NoError(t, err)
		require.NotNil(t, c)
		ids = append(ids, c.ID)
	}

	fourth, err := svc.AddTrustedContact(ctx, "One too many", "email")
	require.NoError(t, err)
	assert.Nil(t, fourth)
	assert.Len(t, svc.ListTrustedContacts(ctx), constants.MaxActiveContacts)

	revoked, err := svc.RevokeTrustedContact(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, revoked.RevokedAt)

	replacement, err := svc.AddTrustedContact(ctx, "Replacement", "email")
	require.NoError(t, err)
	require.NotNil(t, replacement)
	assert.Len(t, svc.ListTrustedContacts(ctx), 4)
	assert.Len(t, svc.ActiveContacts(ctx), 3)

	_, err = svc.AddTrustedContact(ctx, " ", "email")
	assert.ErrorIs(t, err, lerrors.ErrNameRequired)
}

func TestShareEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	e := createEntry(t, svc, models.EntryHelped)
	c, err := svc.AddTrustedContact(ctx, "Sam", "sam@example.com")
	require.NoError(t, err)

	_, err = svc.ShareEntry(ctx, e.ID, c.ID, "   ")
	assert.ErrorIs(t, err, lerrors.ErrReasonRequired)

	long := strings.Repeat("é", constants.MaxShareReasonLength+20)
	share, err := svc.ShareEntry(ctx, e.ID, c.ID, long)
	require.NoError(t, err)
	require.NotNil(t, share)
	assert.Equal(t, constants.MaxShareReasonLength, len([]rune(share.Reason)))

	missing, err := svc.ShareEntry(ctx, "ghost", c.ID, "why")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = svc.RevokeTrustedContact(ctx, c.ID)
	require.NoError(t, err)
	toRevoked, err := svc.ShareEntry(ctx, e.ID, c.ID, "why")
	assert.NoError(t, err)
	assert.Nil(t, toRevoked)

	shares := svc.SharesForEntry(ctx, e.ID)
	require.Len(t, shares, 1, "revocation keeps earlier shares")
	assert.Equal(t, share.ID, shares[0].ID)
}

func TestTrustedNoteOncePerShare(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	e := createEntry(t, svc, models.EntryLearned)
	c, err := svc.AddTrustedContact(ctx, "Sam", "")
	require.NoError(t, err)
	share, err := svc.ShareEntry(ctx, e.ID, c.ID, "you were there")
	require.NoError(t, err)

	note, err := svc.AddTrustedNote(ctx, share.ID, strings.Repeat("x", constants.MaxTrustedNoteLength+1))
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Len(t, note.Text, constants.MaxTrustedNoteLength)

	second, err := svc.AddTrustedNote(ctx, share.ID, "again")
	require.NoError(t, err)
	assert.Nil(t, second)

	notes := svc.NotesForEntry(ctx, e.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, note.Text, notes[0].Text)
	assert.Equal(t, note.ID, svc.NoteForShare(ctx, share.ID).ID)

	orphan, err := svc.AddTrustedNote(ctx, "ghost", "hello")
	assert.NoError(t, err)
	assert.Nil(t, orphan)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	assert.Equal(t, DefaultSettings(), svc.Settings(ctx))
	assert.Equal(t, time.Local, svc.Location(ctx))

	_, err := svc.SetSetting(ctx, constants.SettingPatternGrouping, "Month")
	require.NoError(t, err)
	_, err = svc.SetSetting(ctx, constants.SettingTimezone, "America/New_York")
	require.NoError(t, err)
	_, err = svc.SetSetting(ctx, constants.SettingThemeSuggestions, "false")
	require.NoError(t, err)

	got := svc.Settings(ctx)
	assert.Equal(t, constants.GroupingMonth, got.PatternGrouping)
	assert.False(t, got.ThemeSuggestions)
	assert.Equal(t, "America/New_York", svc.Location(ctx).String())

	for _, tc := range []struct{ key, value string }{
		{constants.SettingTimezone, "Mars/Olympus"},
		{constants.SettingPatternGrouping, "year"},
		{constants.SettingThemeSuggestions, "maybe"},
		{"colour", "blue"},
	} {
		_, err := svc.SetSetting(ctx, tc.key, tc.value)
		assert.ErrorIs(t, err, lerrors.ErrInvalidSetting, tc.key)
	}
}

func TestReviewNotesUpsert(t *testing.T) {
	ctx := context.Background()
	svc, _, clk := setupService(t)

	first, err := svc.SetReviewNote(ctx, "2024-01", "busy month")
	require.NoError(t, err)
	clk.Advance(time.Hour)
	second, err := svc.SetReviewNote(ctx, "2024-01", "busy but good")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "busy but good", svc.ReviewNote(ctx, "2024-01").Content)
	assert.Len(t, svc.ReviewNotes(ctx), 1)
	assert.Nil(t, svc.ReviewNote(ctx, "2024-02"))
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	e := createEntry(t, svc, models.EntryBuilt, "Craft")
	th, err := svc.CreateThread(ctx, "Work")
	require.NoError(t, err)
	_, err = svc.Link(ctx, e.ID, th.ID)
	require.NoError(t, err)
	c, err := svc.AddTrustedContact(ctx, "Sam", "")
	require.NoError(t, err)
	sh, err := svc.ShareEntry(ctx, e.ID, c.ID, "proud")
	require.NoError(t, err)
	_, err = svc.AddTrustedNote(ctx, sh.ID, "well done")
	require.NoError(t, err)

	snap := svc.Snapshot(ctx)

	target, _, _ := setupService(t)
	require.NoError(t, target.Restore(ctx, snap))
	assert.Equal(t, snap, target.Snapshot(ctx))
	assert.Equal(t, []string{"Craft"}, target.UserThemes(ctx))
}

type fakeBlobs struct {
	stored    map[string][]byte
	deleted   []string
	deleteErr error
}

func (f *fakeBlobs) Put(_ context.Context, filename string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	uri := "mem://" + filename
	f.stored[uri] = data
	return uri, int64(len(data)), nil
}

func (f *fakeBlobs) Delete(_ context.Context, uri string) error {
	f.deleted = append(f.deleted, uri)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.stored, uri)
	return nil
}

func TestAttachments(t *testing.T) {
	ctx := context.Background()
	blobs := &fakeBlobs{stored: map[string][]byte{}}
	svc, _, clk := setupService(t, WithBlobStore(blobs))
	e := createEntry(t, svc, models.EntryBuilt)

	clk.Advance(time.Minute)
	att, err := svc.AttachFile(ctx, e.ID, "photo.jpg", "image/jpeg", bytes.NewReader([]byte("jpegdata")))
	require.NoError(t, err)
	require.NotNil(t, att)
	assert.Equal(t, int64(8), att.Size)
	assert.Equal(t, "mem://photo.jpg", att.URI)

	got := svc.GetEntry(ctx, e.ID)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, baseTime.Add(time.Minute), got.UpdatedAt)

	orphan, err := svc.AttachFile(ctx, "ghost", "x.txt", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Nil(t, orphan)

	blobs.deleteErr = errors.New("permission denied")
	removed, err := svc.DetachFile(ctx, e.ID, att.ID)
	require.NoError(t, err, "content cleanup is best-effort")
	require.NotNil(t, removed)
	assert.Empty(t, svc.GetEntry(ctx, e.ID).Attachments)
	assert.Contains(t, blobs.deleted, att.URI)

	again, err := svc.RemoveAttachment(ctx, e.ID, att.ID)
	assert.NoError(t, err)
	assert.Nil(t, again)
}

func TestAddAttachmentMetadataOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	e := createEntry(t, svc, models.EntryBuilt)

	att, err := svc.AddAttachment(ctx, e.ID, models.AttachmentInput{Filename: "/tmp/scan.pdf", MimeType: "application/pdf", URI: "file:///tmp/scan.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "scan.pdf", att.Filename)

	_, err = svc.AttachFile(ctx, e.ID, "x", "", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoBlobStore)
}

func TestDeleteEntryCleansAttachmentContent(t *testing.T) {
	ctx := context.Background()
	blobs := &fakeBlobs{stored: map[string][]byte{}}
	svc, _, _ := setupService(t, WithBlobStore(blobs))
	e := createEntry(t, svc, models.EntryBuilt)
	att, err := svc.AttachFile(ctx, e.ID, "a.txt", "text/plain", strings.NewReader("a"))
	require.NoError(t, err)

	_, err = svc.DeleteEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{att.URI}, blobs.deleted)
	assert.Empty(t, blobs.stored)
}
