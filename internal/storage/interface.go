// Package storage is the persistent collection store. Every record set lives in one
// named slot holding a JSON document; higher layers read a whole slot, change it in
// memory and write it back.
package storage

import "context"

// Provider is a slot-addressed key-value backend.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Get returns the raw slot value. ok is false when the slot has never been written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put overwrites the slot. Readers never observe a partial write.
	Put(ctx context.Context, key string, value []byte) error
	// PutAll overwrites several slots in one atomic step.
	PutAll(ctx context.Context, values map[string][]byte) error
	// Keys lists written slots.
	Keys(ctx context.Context) ([]string, error)

	// Utils
	GetConfigPath() string
}
