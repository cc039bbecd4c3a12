package domain

import (
	"context"
	"io"
)

// BlobStore is an opaque byte namespace shared by the API process and the
// thumbnail workers. Locations returned by Put are persisted on file entities
// and resolved again by Open; derived blobs are written next to their
// original by suffixing the location.
type BlobStore interface {
	// Put writes data under a freshly allocated location derived from key and
	// returns that location.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// WriteAt writes data to an exact location, overwriting any previous
	// content.
	WriteAt(ctx context.Context, location string, data []byte) error

	// Open returns a reader over the blob at location.
	// Returns ErrNotFound if no blob exists there.
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}
