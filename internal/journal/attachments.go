package journal

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/logger"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/storage"
)

// ErrNoBlobStore is returned by AttachFile and DetachFile when the service has no blob store.
var ErrNoBlobStore = errors.New("no attachment store configured")

// AddAttachment records metadata for content that already lives at meta.URI.
func (s *Service) AddAttachment(ctx context.Context, entryID string, meta models.AttachmentInput) (*models.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAttachment(ctx, entryID, meta)
}

func (s *Service) addAttachment(ctx context.Context, entryID string, meta models.AttachmentInput) (*models.Attachment, error) {
	entries := s.loadEntries(ctx)
	i := findEntry(entries, entryID)
	if i < 0 {
		return nil, nil
	}

	now := s.clock.Now()
	att := models.Attachment{
		ID:        s.newID(),
		Filename:  filepath.Base(strings.TrimSpace(meta.Filename)),
		MimeType:  meta.MimeType,
		URI:       meta.URI,
		Size:      meta.Size,
		CreatedAt: now,
	}
	e := &entries[i]
	e.Attachments = append(e.Attachments, att)
	e.UpdatedAt = later(e.UpdatedAt, now)

	if err := storage.SaveCollection(ctx, s.store, constants.SlotEntries, entries); err != nil {
		return nil, err
	}
	return &att, nil
}

// RemoveAttachment drops the attachment's metadata. It never touches the content;
// the removed record is returned so the caller can clean up.
func (s *Service) RemoveAttachment(ctx context.Context, entryID, attachmentID string) (*models.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadEntries(ctx)
	i := findEntry(entries, entryID)
	if i < 0 {
		return nil, nil
	}

	e := &entries[i]
	var removed *models.Attachment
	kept := make([]models.Attachment, 0, len(e.Attachments))
	for _, a := range e.Attachments {
		if a.ID == attachmentID && removed == nil {
			removed = &a
			continue
		}
		kept = append(kept, a)
	}
	if removed == nil {
		return nil, nil
	}
	e.Attachments = kept
	e.UpdatedAt = later(e.UpdatedAt, s.clock.Now())

	if err := storage.SaveCollection(ctx, s.store, constants.SlotEntries, entries); err != nil {
		return nil, err
	}
	return removed, nil
}

// AttachFile copies r into the blob store and records it on the entry. Content is
// removed again if the entry is missing or the metadata cannot be saved.
func (s *Service) AttachFile(ctx context.Context, entryID, filename, mimeType string, r io.Reader) (*models.Attachment, error) {
	if s.blobs == nil {
		return nil, ErrNoBlobStore
	}
	if s.GetEntry(ctx, entryID) == nil {
		return nil, nil
	}

	uri, size, err := s.blobs.Put(ctx, filename, r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	att, err := s.addAttachment(ctx, entryID, models.AttachmentInput{
		Filename: filename,
		MimeType: mimeType,
		URI:      uri,
		Size:     size,
	})
	s.mu.Unlock()

	if err != nil || att == nil {
		s.deleteContent(ctx, models.Attachment{Filename: filename, URI: uri})
	}
	return att, err
}

// DetachFile removes the attachment record, then its content on a best-effort basis.
func (s *Service) DetachFile(ctx context.Context, entryID, attachmentID string) (*models.Attachment, error) {
	if s.blobs == nil {
		return nil, ErrNoBlobStore
	}
	removed, err := s.RemoveAttachment(ctx, entryID, attachmentID)
	if err != nil || removed == nil {
		return removed, err
	}
	s.deleteContent(ctx, *removed)
	return removed, nil
}

func (s *Service) deleteContent(ctx context.Context, a models.Attachment) {
	if s.blobs == nil || a.URI == "" {
		return
	}
	if err := s.blobs.Delete(ctx, a.URI); err != nil {
		logger.Warn("Failed to delete attachment content", "file", a.Filename, "uri", a.URI, "error", err)
	}
}
