package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/ledger/internal/logger"
)

// defaulter is implemented by records that fill fields missing from older data.
type defaulter interface {
	ApplyDefaults()
}

// LoadCollection reads the array stored in key. Missing slots, read failures and
// malformed data all yield an empty, non-nil slice; failures are logged, never returned.
func LoadCollection[T any](ctx context.Context, p Provider, key string) []T {
	raw, ok, err := p.Get(ctx, key)
	if err != nil {
		logger.Warn("Failed to read collection", "slot", key, "error", err)
		return []T{}
	}
	if !ok || len(raw) == 0 {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("Malformed collection, treating as empty", "slot", key, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}

	for i := range items {
		if d, ok := any(&items[i]).(defaulter); ok {
			d.ApplyDefaults()
		}
	}
	return items
}

// SaveCollection serializes items and overwrites key. Write failures are returned.
func SaveCollection[T any](ctx context.Context, p Provider, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	if err := p.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// LoadObject reads a single JSON object from key, returning def on any failure.
func LoadObject[T any](ctx context.Context, p Provider, key string, def T) T {
	raw, ok, err := p.Get(ctx, key)
	if err != nil {
		logger.Warn("Failed to read object", "slot", key, "error", err)
		return def
	}
	if !ok || len(raw) == 0 {
		return def
	}

	obj := def
	if err := json.Unmarshal(raw, &obj); err != nil {
		logger.Warn("Malformed object, using defaults", "slot", key, "error", err)
		return def
	}
	return obj
}

// SaveObject serializes obj and overwrites key.
func SaveObject[T any](ctx context.Context, p Provider, key string, obj T) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	if err := p.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
