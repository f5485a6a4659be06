// Package storage provides blob storage backends for uploaded media.
package storage

import (
	"context"
	"io"
	"strings"
)

// BlobStore writes and removes uploaded objects addressed by a
// slash-separated path. Paths are opaque to callers; the store that wrote an
// object is the store that can delete it.
type BlobStore interface {
	// Put streams the object body to the given path, overwriting any
	// existing object at that path.
	Put(ctx context.Context, path string, body io.Reader, contentType string) error
	// Delete removes the object at path. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, path string) error
	// PublicURL returns the fixed public read address for a stored path.
	PublicURL(path string) string
}

// joinURL concatenates a base URL and a stored path with exactly one slash.
func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
