package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/filedepot/filedepot/internal/domain"
)

// DiskBlobStore implements domain.BlobStore on the local filesystem. Blobs
// live directly under the root directory; locations are absolute paths.
type DiskBlobStore struct {
	root string
}

// NewDiskBlobStore creates a blob store rooted at the given directory. The
// directory is created lazily on the first write.
func NewDiskBlobStore(root string) *DiskBlobStore {
	return &DiskBlobStore{
		root: root,
	}
}

// Put writes data to a new file named key under the root directory and
// returns its absolute path
func (s *DiskBlobStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage root: %w", err)
	}
	location := filepath.Join(s.root, key)
	if err := writeAtomic(location, data); err != nil {
		return "", err
	}
	return location, nil
}

// WriteAt writes data to an exact path, overwriting any existing blob
func (s *DiskBlobStore) WriteAt(ctx context.Context, location string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return writeAtomic(location, data)
}

// Open returns a reader over the blob at location
func (s *DiskBlobStore) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	f, err := os.Open(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// writeAtomic writes data via a temp file and rename so readers never observe
// a partially written blob.
func writeAtomic(location string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(location), ".blob-*")
	if err != nil {
		return fmt.Errorf("failed to create temp blob: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp blob: %w", err)
	}

	if err := os.Rename(tmp.Name(), location); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to finalize blob: %w", err)
	}
	return nil
}
