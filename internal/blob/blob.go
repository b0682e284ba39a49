package blob

import (
	"context"
	"errors"
	"io"
)

// Store persists raw file bytes addressed by opaque keys chosen by the
// caller (the service layer uses "{ownerID}/{fileID}"). Keys decouple
// logical file identity from physical layout, so the backing store can be
// local disk, S3 or an in-memory fake interchangeably.
//
// Implementations wrap ErrNotFound for absent keys:
//
//	rc, err := store.Open(ctx, key)
//	if errors.Is(err, blob.ErrNotFound) { ... }
type Store interface {
	// Save writes the full content for key, creating any missing
	// intermediate containers. Saving an existing key overwrites it.
	Save(ctx context.Context, key string, r io.Reader) error

	// Open returns a reader over the content at key. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content at key.
	Delete(ctx context.Context, key string) error

	// Move relocates content from src to dst, creating missing
	// intermediate containers at the destination.
	Move(ctx context.Context, src, dst string) error

	// Exists reports whether key is present. Absence is not an error.
	Exists(ctx context.Context, key string) (bool, error)
}

var (
	// ErrNotFound indicates the requested key has no content.
	ErrNotFound = errors.New("blob not found")

	// ErrInvalidKey indicates a malformed or unsafe key (empty, absolute,
	// or containing path traversal).
	ErrInvalidKey = errors.New("invalid blob key")
)
