package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lerrors "github.com/julianstephens/ledger/internal/errors"
)

// jsonDocument is the on-disk layout of a JSONStore file.
type jsonDocument struct {
	Version int                        `json:"version"`
	Slots   map[string]json.RawMessage `json:"slots"`
}

// JSONStore keeps every slot in a single JSON file, rewritten on each Put.
type JSONStore struct {
	path string

	mu  sync.RWMutex
	doc *jsonDocument
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = &jsonDocument{
		Version: 1,
		Slots:   make(map[string]json.RawMessage),
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'ledger init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &jsonDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Slots == nil {
		doc.Slots = make(map[string]json.RawMessage)
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// save writes the document to a temp file and renames it over the original.
// Callers hold s.mu.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, false, lerrors.ErrStoreNotLoaded
	}
	raw, ok := s.doc.Slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), raw...), true, nil
}

func (s *JSONStore) Put(ctx context.Context, key string, value []byte) error {
	return s.PutAll(ctx, map[string][]byte{key: value})
}

func (s *JSONStore) PutAll(_ context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return lerrors.ErrStoreNotLoaded
	}

	for key, value := range values {
		if !json.Valid(value) {
			return fmt.Errorf("slot %s: value is not valid JSON", key)
		}
	}

	previous := make(map[string]json.RawMessage, len(values))
	for key, value := range values {
		if old, ok := s.doc.Slots[key]; ok {
			previous[key] = old
		}
		s.doc.Slots[key] = append(json.RawMessage(nil), value...)
	}

	if err := s.save(); err != nil {
		// Keep the in-memory view consistent with disk
		for key := range values {
			if old, ok := previous[key]; ok {
				s.doc.Slots[key] = old
			} else {
				delete(s.doc.Slots, key)
			}
		}
		return err
	}
	return nil
}

func (s *JSONStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, lerrors.ErrStoreNotLoaded
	}
	keys := make([]string, 0, len(s.doc.Slots))
	for k := range s.doc.Slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
