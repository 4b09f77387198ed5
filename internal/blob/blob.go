// Package blob stores attachment content outside the collections. Content is
// addressed by URI: file:// for the local directory store, s3:// for object storage.
package blob

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Store is the content side of attachment management.
type Store interface {
	Put(ctx context.Context, filename string, r io.Reader) (uri string, size int64, err error)
	Delete(ctx context.Context, uri string) error
	// List returns the URI of every stored object.
	List(ctx context.Context) ([]string, error)
	// Owns reports whether uri belongs to this store.
	Owns(uri string) bool
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectName prefixes a sanitized base name with a random id so uploads never collide.
func objectName(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "attachment"
	}
	return uuid.NewString()[:8] + "-" + base
}
