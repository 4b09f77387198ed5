package journal

import (
	"context"

	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/logger"
	"github.com/julianstephens/ledger/internal/models"
)

// Dataset is every modeled collection at one point in time.
type Dataset struct {
	Entries         []models.Entry
	Threads         []models.ResponsibilityThread
	ThreadLinks     []models.EntryThreadLink
	TrustedContacts []models.TrustedContact
	SharedEntries   []models.SharedEntry
	TrustedNotes    []models.TrustedNote
}

// Snapshot reads every modeled collection.
func (s *Service) Snapshot(ctx context.Context) Dataset {
	return Dataset{
		Entries:         s.loadEntries(ctx),
		Threads:         s.loadThreads(ctx),
		ThreadLinks:     s.loadLinks(ctx),
		TrustedContacts: s.loadContacts(ctx),
		SharedEntries:   s.loadShares(ctx),
		TrustedNotes:    s.loadNotes(ctx),
	}
}

// Restore replaces every modeled collection with d in one write. Entry themes are
// merged into the known theme set; settings and review notes are left alone.
func (s *Service) Restore(ctx context.Context, d Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	themes := s.loadUserThemes(ctx)
	for i := range d.Entries {
		d.Entries[i].ApplyDefaults()
		themes = MergeThemes(themes, d.Entries[i].Themes)
	}

	if err := s.saveSlots(ctx, map[string]any{
		constants.SlotEntries:         nonNil(d.Entries),
		constants.SlotThreads:         nonNil(d.Threads),
		constants.SlotThreadLinks:     nonNil(d.ThreadLinks),
		constants.SlotTrustedContacts: nonNil(d.TrustedContacts),
		constants.SlotSharedEntries:   nonNil(d.SharedEntries),
		constants.SlotTrustedNotes:    nonNil(d.TrustedNotes),
		constants.SlotUserThemes:      themes,
	}); err != nil {
		return err
	}

	logger.Info("Restored dataset", "entries", len(d.Entries), "threads", len(d.Threads), "contacts", len(d.TrustedContacts))
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
