package journal

import (
	"context"
	"strings"
	"time"

	"github.com/julianstephens/ledger/internal/constants"
	lerrors "github.com/julianstephens/ledger/internal/errors"
	"github.com/julianstephens/ledger/internal/logger"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/storage"
)

// IsEditable reports whether e is still inside its edit window at now.
func IsEditable(e models.Entry, now time.Time) bool {
	return now.Sub(e.CreatedAt) < constants.EditWindow
}

// EditableUntil is the instant e locks.
func EditableUntil(e models.Entry) time.Time {
	return e.CreatedAt.Add(constants.EditWindow)
}

// IsEditable reports whether e can still have its primary fields changed.
func (s *Service) IsEditable(e models.Entry) bool {
	return IsEditable(e, s.clock.Now())
}

func (s *Service) loadEntries(ctx context.Context) []models.Entry {
	return storage.LoadCollection[models.Entry](ctx, s.store, constants.SlotEntries)
}

func findEntry(entries []models.Entry, id string) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}

// ListEntries returns every entry, newest first.
func (s *Service) ListEntries(ctx context.Context) []models.Entry {
	return s.loadEntries(ctx)
}

func (s *Service) GetEntry(ctx context.Context, id string) *models.Entry {
	entries := s.loadEntries(ctx)
	if i := findEntry(entries, id); i >= 0 {
		return &entries[i]
	}
	return nil
}

// CreateEntry prepends a new entry and folds its themes into the known theme set.
func (s *Service) CreateEntry(ctx context.Context, in models.EntryInput) (*models.Entry, error) {
	if !in.Type.Valid() {
		return nil, lerrors.ErrInvalidEntryType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	entry := models.Entry{
		ID:          s.newID(),
		Type:        in.Type,
		Affected:    strings.TrimSpace(in.Affected),
		Cost:        strings.TrimSpace(in.Cost),
		Reflection:  strings.TrimSpace(in.Reflection),
		Themes:      NormalizeThemes(in.Themes),
		Attachments: []models.Attachment{},
		Addenda:     []models.Addendum{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	entries := append([]models.Entry{entry}, s.loadEntries(ctx)...)
	slots := map[string]any{constants.SlotEntries: entries}
	if len(entry.Themes) > 0 {
		slots[constants.SlotUserThemes] = MergeThemes(s.loadUserThemes(ctx), entry.Themes)
	}
	if err := s.saveSlots(ctx, slots); err != nil {
		return nil, err
	}

	logger.Debug("Created entry", "id", entry.ID, "type", entry.Type)
	return &entry, nil
}

// UpdateEntry merges patch over the entry and refreshes UpdatedAt. It does not
// check the edit window; use EditEntry for user-initiated changes.
func (s *Service) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateEntry(ctx, id, patch, false)
}

// EditEntry is UpdateEntry guarded by the edit window. Locked entries yield ErrEntryLocked.
func (s *Service) EditEntry(ctx context.Context, id string, patch models.EntryPatch) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateEntry(ctx, id, patch, true)
}

func (s *Service) updateEntry(ctx context.Context, id string, patch models.EntryPatch, guarded bool) (*models.Entry, error) {
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, lerrors.ErrInvalidEntryType
	}

	entries := s.loadEntries(ctx)
	i := findEntry(entries, id)
	if i < 0 {
		return nil, nil
	}

	now := s.clock.Now()
	if guarded && !IsEditable(entries[i], now) {
		return nil, lerrors.ErrEntryLocked
	}

	e := &entries[i]
	if patch.Type != nil {
		e.Type = *patch.Type
	}
	if patch.Affected != nil {
		e.Affected = strings.TrimSpace(*patch.Affected)
	}
	if patch.Cost != nil {
		e.Cost = strings.TrimSpace(*patch.Cost)
	}
	if patch.Reflection != nil {
		e.Reflection = strings.TrimSpace(*patch.Reflection)
	}
	slots := map[string]any{constants.SlotEntries: entries}
	if patch.Themes != nil {
		e.Themes = NormalizeThemes(*patch.Themes)
		if len(e.Themes) > 0 {
			slots[constants.SlotUserThemes] = MergeThemes(s.loadUserThemes(ctx), e.Themes)
		}
	}
	e.UpdatedAt = later(e.UpdatedAt, now)

	if err := s.saveSlots(ctx, slots); err != nil {
		return nil, err
	}
	updated := *e
	return &updated, nil
}

// AddAddendum appends a note to the entry whether or not it is locked.
func (s *Service) AddAddendum(ctx context.Context, entryID, content string) (*models.Entry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, lerrors.ErrContentRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadEntries(ctx)
	i := findEntry(entries, entryID)
	if i < 0 {
		return nil, nil
	}

	now := s.clock.Now()
	e := &entries[i]
	e.Addenda = append(e.Addenda, models.Addendum{
		ID:        s.newID(),
		Content:   content,
		CreatedAt: now,
	})
	e.UpdatedAt = later(e.UpdatedAt, now)

	if err := storage.SaveCollection(ctx, s.store, constants.SlotEntries, entries); err != nil {
		return nil, err
	}
	updated := *e
	return &updated, nil
}

// DeleteEntry removes the entry and every thread link that references it.
// Shares and notes are kept. Attachment content is removed best-effort when a
// blob store is configured.
func (s *Service) DeleteEntry(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadEntries(ctx)
	i := findEntry(entries, id)
	if i < 0 {
		return false, nil
	}
	removed := entries[i]
	entries = append(entries[:i], entries[i+1:]...)

	links := s.loadLinks(ctx)
	kept := links[:0]
	for _, l := range links {
		if l.EntryID != id {
			kept = append(kept, l)
		}
	}

	if err := s.saveSlots(ctx, map[string]any{
		constants.SlotEntries:     entries,
		constants.SlotThreadLinks: kept,
	}); err != nil {
		return false, err
	}

	for _, a := range removed.Attachments {
		s.deleteContent(ctx, a)
	}
	logger.Debug("Deleted entry", "id", id, "links_removed", len(links)-len(kept))
	return true, nil
}

// later keeps UpdatedAt monotonic when the clock goes backwards.
func later(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Nanosecond)
}
