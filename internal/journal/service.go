// Package journal implements the ledger's record lifecycle: entries and their
// addenda and attachments, responsibility threads, trusted contacts, shares and
// witness notes, plus the small settings and review-note collections.
//
// Every operation reads the whole collection it touches, changes it in memory and
// writes it back. Lookups on unknown ids return nil or false with a nil error.
// Capacity rejections (a fourth active contact, a second witness note) also
// return nil with a nil error; callers tell the two apart by context.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/ledger/internal/clock"
	"github.com/julianstephens/ledger/internal/storage"
)

// BlobStore persists attachment content outside the collections.
type BlobStore interface {
	// Put stores r under a name derived from filename and returns its URI.
	Put(ctx context.Context, filename string, r io.Reader) (uri string, size int64, err error)
	// Delete removes the content behind uri.
	Delete(ctx context.Context, uri string) error
}

type Service struct {
	store storage.Provider
	clock clock.Clock
	blobs BlobStore
	newID func() string

	// mu serializes read-modify-write cycles within the process
	mu sync.Mutex
}

type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithBlobStore enables AttachFile, DetachFile and content cleanup on delete.
func WithBlobStore(b BlobStore) Option {
	return func(s *Service) { s.blobs = b }
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: clock.System{},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying provider.
func (s *Service) Store() storage.Provider {
	return s.store
}

// Blobs returns the configured blob store, or nil.
func (s *Service) Blobs() BlobStore {
	return s.blobs
}

// Now reports the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// saveSlots writes several collections in one provider call so related changes
// (an entry and its links) land together.
func (s *Service) saveSlots(ctx context.Context, slots map[string]any) error {
	values := make(map[string][]byte, len(slots))
	for key, v := range slots {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", key, err)
		}
		values[key] = data
	}
	if err := s.store.PutAll(ctx, values); err != nil {
		return fmt.Errorf("failed to save changes: %w", err)
	}
	return nil
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
