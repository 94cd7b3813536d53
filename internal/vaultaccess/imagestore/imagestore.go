// Package imagestore is the boundary to image storage: it accepts an
// image payload under a key and hands back a stable retrievable URL.
// The well-known ReferenceKey slot is overwritten in place; comparison
// images get unique per-submission keys.
package imagestore

import (
	"context"
	"io"
)

// ReferenceKey is the singleton slot holding the current reference
// face. Writing it replaces the previous reference; there is no
// versioning.
const ReferenceKey = "ref.jpg"

// ComparisonKey returns the storage key for a submitted comparison
// image.
func ComparisonKey(id string) string { return "faces/" + id + ".jpg" }

type Store interface {
	// Put writes the image under key, overwriting any prior content,
	// and returns the public URL it will be served from.
	Put(ctx context.Context, key string, r io.Reader) (string, error)

	// URL returns the public URL for a key without writing anything.
	URL(key string) string
}
