package journal

import (
	"context"
	"strings"

	"github.com/julianstephens/ledger/internal/constants"
	lerrors "github.com/julianstephens/ledger/internal/errors"
	"github.com/julianstephens/ledger/internal/logger"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/storage"
)

func (s *Service) loadContacts(ctx context.Context) []models.TrustedContact {
	return storage.LoadCollection[models.TrustedContact](ctx, s.store, constants.SlotTrustedContacts)
}

func (s *Service) loadShares(ctx context.Context) []models.SharedEntry {
	return storage.LoadCollection[models.SharedEntry](ctx, s.store, constants.SlotSharedEntries)
}

func (s *Service) loadNotes(ctx context.Context) []models.TrustedNote {
	return storage.LoadCollection[models.TrustedNote](ctx, s.store, constants.SlotTrustedNotes)
}

// ListTrustedContacts returns every contact, revoked ones included, oldest first.
func (s *Service) ListTrustedContacts(ctx context.Context) []models.TrustedContact {
	return s.loadContacts(ctx)
}

// ActiveContacts returns the contacts that can receive new shares.
func (s *Service) ActiveContacts(ctx context.Context) []models.TrustedContact {
	return models.Active(s.loadContacts(ctx))
}

func (s *Service) GetTrustedContact(ctx context.Context, id string) *models.TrustedContact {
	for _, c := range s.loadContacts(ctx) {
		if c.ID == id {
			return &c
		}
	}
	return nil
}

// AddTrustedContact appends a contact unless MaxActiveContacts are already active,
// in which case it returns nil and leaves the roster unchanged.
func (s *Service) AddTrustedContact(ctx context.Context, name, method string) (*models.TrustedContact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, lerrors.ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contacts := s.loadContacts(ctx)
	if len(models.Active(contacts)) >= constants.MaxActiveContacts {
		logger.Debug("Trusted contact rejected, roster full", "active", len(models.Active(contacts)))
		return nil, nil
	}

	contact := models.TrustedContact{
		ID:            s.newID(),
		DisplayName:   name,
		ContactMethod: strings.TrimSpace(method),
		CreatedAt:     s.clock.Now(),
	}
	contacts = append(contacts, contact)
	if err := storage.SaveCollection(ctx, s.store, constants.SlotTrustedContacts, contacts); err != nil {
		return nil, err
	}
	return &contact, nil
}

// RevokeTrustedContact sets RevokedAt. Past shares to the contact are untouched.
// Revoking an already revoked contact returns it unchanged.
func (s *Service) RevokeTrustedContact(ctx context.Context, id string) (*models.TrustedContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts := s.loadContacts(ctx)
	for i := range contacts {
		if contacts[i].ID != id {
			continue
		}
		c := &contacts[i]
		if c.IsActive() {
			now := s.clock.Now()
			c.RevokedAt = &now
			if err := storage.SaveCollection(ctx, s.store, constants.SlotTrustedContacts, contacts); err != nil {
				return nil, err
			}
		}
		updated := *c
		return &updated, nil
	}
	return nil, nil
}

// ShareEntry records a one-way disclosure of an entry to an active contact. The
// reason is trimmed and bounded to MaxShareReasonLength runes. Unknown entries and
// missing or revoked contacts yield nil.
func (s *Service) ShareEntry(ctx context.Context, entryID, contactID, reason string) (*models.SharedEntry, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, lerrors.ErrReasonRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if findEntry(s.loadEntries(ctx), entryID) < 0 {
		return nil, nil
	}
	var contact *models.TrustedContact
	for _, c := range s.loadContacts(ctx) {
		if c.ID == contactID {
			contact = &c
			break
		}
	}
	if contact == nil || !contact.IsActive() {
		return nil, nil
	}

	share := models.SharedEntry{
		ID:               s.newID(),
		EntryID:          entryID,
		TrustedContactID: contactID,
		Reason:           truncateRunes(reason, constants.MaxShareReasonLength),
		CreatedAt:        s.clock.Now(),
	}
	shares := append(s.loadShares(ctx), share)
	if err := storage.SaveCollection(ctx, s.store, constants.SlotSharedEntries, shares); err != nil {
		return nil, err
	}
	return &share, nil
}

// AddTrustedNote stores the witness response to a share. Only one note is kept
// per share; later attempts return nil and leave the first untouched.
func (s *Service) AddTrustedNote(ctx context.Context, sharedEntryID, text string) (*models.TrustedNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, lerrors.ErrContentRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, sh := range s.loadShares(ctx) {
		if sh.ID == sharedEntryID {
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	notes := s.loadNotes(ctx)
	byShare := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		byShare[n.SharedEntryID] = struct{}{}
	}
	if _, exists := byShare[sharedEntryID]; exists {
		return nil, nil
	}

	note := models.TrustedNote{
		ID:            s.newID(),
		SharedEntryID: sharedEntryID,
		CreatedAt:     s.clock.Now(),
		Text:          truncateRunes(text, constants.MaxTrustedNoteLength),
	}
	notes = append(notes, note)
	if err := storage.SaveCollection(ctx, s.store, constants.SlotTrustedNotes, notes); err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *Service) ListShares(ctx context.Context) []models.SharedEntry {
	return s.loadShares(ctx)
}

func (s *Service) SharesForEntry(ctx context.Context, entryID string) []models.SharedEntry {
	out := []models.SharedEntry{}
	for _, sh := range s.loadShares(ctx) {
		if sh.EntryID == entryID {
			out = append(out, sh)
		}
	}
	return out
}

// NotesForEntry returns the witness notes left on any share of the entry.
func (s *Service) NotesForEntry(ctx context.Context, entryID string) []models.TrustedNote {
	shareIDs := make(map[string]struct{})
	for _, sh := range s.SharesForEntry(ctx, entryID) {
		shareIDs[sh.ID] = struct{}{}
	}

	out := []models.TrustedNote{}
	for _, n := range s.loadNotes(ctx) {
		if _, ok := shareIDs[n.SharedEntryID]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *Service) NoteForShare(ctx context.Context, sharedEntryID string) *models.TrustedNote {
	for _, n := range s.loadNotes(ctx) {
		if n.SharedEntryID == sharedEntryID {
			return &n
		}
	}
	return nil
}
