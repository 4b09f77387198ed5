package journal

import (
	"context"
	"strings"

	"github.com/julianstephens/ledger/internal/constants"
	lerrors "github.com/julianstephens/ledger/internal/errors"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/storage"
)

func (s *Service) loadThreads(ctx context.Context) []models.ResponsibilityThread {
	return storage.LoadCollection[models.ResponsibilityThread](ctx, s.store, constants.SlotThreads)
}

func (s *Service) loadLinks(ctx context.Context) []models.EntryThreadLink {
	return storage.LoadCollection[models.EntryThreadLink](ctx, s.store, constants.SlotThreadLinks)
}

func findThread(threads []models.ResponsibilityThread, id string) int {
	for i := range threads {
		if threads[i].ID == id {
			return i
		}
	}
	return -1
}

// ListThreads returns all threads, newest first, open and closed.
func (s *Service) ListThreads(ctx context.Context) []models.ResponsibilityThread {
	return s.loadThreads(ctx)
}

func (s *Service) GetThread(ctx context.Context, id string) *models.ResponsibilityThread {
	threads := s.loadThreads(ctx)
	if i := findThread(threads, id); i >= 0 {
		return &threads[i]
	}
	return nil
}

func (s *Service) CreateThread(ctx context.Context, title string) (*models.ResponsibilityThread, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, lerrors.ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	thread := models.ResponsibilityThread{
		ID:        s.newID(),
		Title:     title,
		CreatedAt: s.clock.Now(),
	}
	threads := append([]models.ResponsibilityThread{thread}, s.loadThreads(ctx)...)
	if err := storage.SaveCollection(ctx, s.store, constants.SlotThreads, threads); err != nil {
		return nil, err
	}
	return &thread, nil
}

// CloseThread marks the thread closed. Closing an already closed thread keeps its
// original ClosedAt.
func (s *Service) CloseThread(ctx context.Context, id string) (*models.ResponsibilityThread, error) {
	return s.setThreadState(ctx, id, false)
}

// ReopenThread clears ClosedAt.
func (s *Service) ReopenThread(ctx context.Context, id string) (*models.ResponsibilityThread, error) {
	return s.setThreadState(ctx, id, true)
}

func (s *Service) setThreadState(ctx context.Context, id string, open bool) (*models.ResponsibilityThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threads := s.loadThreads(ctx)
	i := findThread(threads, id)
	if i < 0 {
		return nil, nil
	}

	t := &threads[i]
	switch {
	case open && !t.IsOpen():
		t.ClosedAt = nil
	case !open && t.IsOpen():
		now := s.clock.Now()
		t.ClosedAt = &now
	default:
		updated := *t
		return &updated, nil
	}

	if err := storage.SaveCollection(ctx, s.store, constants.SlotThreads, threads); err != nil {
		return nil, err
	}
	updated := *t
	return &updated, nil
}

// Link associates an entry with a thread. Linking an existing pair returns the
// existing link unchanged. Unknown entries or threads yield nil.
func (s *Service) Link(ctx context.Context, entryID, threadID string) (*models.EntryThreadLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if findEntry(s.loadEntries(ctx), entryID) < 0 || findThread(s.loadThreads(ctx), threadID) < 0 {
		return nil, nil
	}

	links := s.loadLinks(ctx)
	want := models.LinkKey{EntryID: entryID, ThreadID: threadID}
	index := make(map[models.LinkKey]int, len(links))
	for i, l := range links {
		index[l.Key()] = i
	}
	if i, ok := index[want]; ok {
		existing := links[i]
		return &existing, nil
	}

	link := models.EntryThreadLink{EntryID: entryID, ThreadID: threadID}
	links = append(links, link)
	if err := storage.SaveCollection(ctx, s.store, constants.SlotThreadLinks, links); err != nil {
		return nil, err
	}
	return &link, nil
}

// Unlink removes the pair and reports whether it existed.
func (s *Service) Unlink(ctx context.Context, entryID, threadID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := s.loadLinks(ctx)
	want := models.LinkKey{EntryID: entryID, ThreadID: threadID}
	kept := make([]models.EntryThreadLink, 0, len(links))
	for _, l := range links {
		if l.Key() != want {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(links) {
		return false, nil
	}

	if err := storage.SaveCollection(ctx, s.store, constants.SlotThreadLinks, kept); err != nil {
		return false, err
	}
	return true, nil
}

// EntriesForThread returns the thread's entries in collection order.
func (s *Service) EntriesForThread(ctx context.Context, threadID string) []models.Entry {
	ids := make(map[string]struct{})
	for _, l := range s.loadLinks(ctx) {
		if l.ThreadID == threadID {
			ids[l.EntryID] = struct{}{}
		}
	}

	out := []models.Entry{}
	for _, e := range s.loadEntries(ctx) {
		if _, ok := ids[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// ThreadsForEntry returns the threads linked to an entry in collection order.
func (s *Service) ThreadsForEntry(ctx context.Context, entryID string) []models.ResponsibilityThread {
	ids := make(map[string]struct{})
	for _, l := range s.loadLinks(ctx) {
		if l.EntryID == entryID {
			ids[l.ThreadID] = struct{}{}
		}
	}

	out := []models.ResponsibilityThread{}
	for _, t := range s.loadThreads(ctx) {
		if _, ok := ids[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ThreadEntryCounts maps thread id to the number of existing entries linked to it.
func (s *Service) ThreadEntryCounts(ctx context.Context) map[string]int {
	entryIDs := make(map[string]struct{})
	for _, e := range s.loadEntries(ctx) {
		entryIDs[e.ID] = struct{}{}
	}

	counts := make(map[string]int)
	for _, l := range s.loadLinks(ctx) {
		if _, ok := entryIDs[l.EntryID]; ok {
			counts[l.ThreadID]++
		}
	}
	return counts
}

func (s *Service) ThreadEntryCount(ctx context.Context, threadID string) int {
	return s.ThreadEntryCounts(ctx)[threadID]
}
