package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"

	"github.com/filedepot/filedepot/internal/domain"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// pageSize is the fixed window for file listings.
const pageSize = 20

// defaultContentType is served when a file name's extension resolves to
// nothing.
const defaultContentType = "application/octet-stream"

// FileService implements the file hierarchy and blob management operations.
type FileService struct {
	files domain.FileRepository
	blobs domain.BlobStore
	queue domain.JobQueue
}

// NewFileService creates a new file service
func NewFileService(files domain.FileRepository, blobs domain.BlobStore, queue domain.JobQueue) *FileService {
	return &FileService{
		files: files,
		blobs: blobs,
		queue: queue,
	}
}

// CreateFileInput carries the validated-at-the-boundary fields of an upload
// request. Data holds base64-encoded content for non-folder types.
type CreateFileInput struct {
	UserID   string
	Name     string
	Type     string
	Parent   domain.ParentRef
	IsPublic bool
	Data     string
}

// Create validates the request, persists the entity, writes the blob for
// non-folder types, and enqueues a thumbnail job for images once the entity
// is durably stored.
func (s *FileService) Create(ctx context.Context, in CreateFileInput) (*domain.File, error) {
	if in.Name == "" {
		return nil, domain.ErrMissingName
	}
	if !domain.ValidFileType(in.Type) {
		return nil, domain.ErrMissingType
	}
	if in.Type != domain.TypeFolder && in.Data == "" {
		return nil, domain.ErrMissingData
	}

	if !in.Parent.IsRoot() {
		parent, err := s.files.GetByID(ctx, in.Parent.ID())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrInvalidParent
			}
			return nil, fmt.Errorf("failed to resolve parent: %w", err)
		}
		if parent.Type != domain.TypeFolder {
			return nil, domain.ErrInvalidParent
		}
	}

	file := &domain.File{
		UserID:   in.UserID,
		Name:     in.Name,
		Type:     in.Type,
		IsPublic: in.IsPublic,
		ParentID: in.Parent,
	}

	if in.Type == domain.TypeFolder {
		if err := s.files.Create(ctx, file); err != nil {
			return nil, err
		}
		return file, nil
	}

	content, err := base64.StdEncoding.DecodeString(in.Data)
	if err != nil {
		return nil, domain.ErrMissingData
	}

	location, err := s.blobs.Put(ctx, uuid.NewString(), content)
	if err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}
	file.LocalPath = location

	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}

	// The job references the persisted id; a crash between persist and
	// enqueue loses the job, which the at-least-once pipeline accepts.
	if in.Type == domain.TypeImage {
		job := &domain.ThumbnailJob{
			ID:     ulid.Make().String(),
			UserID: file.UserID,
			FileID: file.ID,
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			log.Printf("Warning: failed to enqueue thumbnail job for file %s: %v", file.ID, err)
		}
	}

	return file, nil
}

// Get retrieves a file by id scoped to its owner
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*domain.File, error) {
	return s.files.GetOwned(ctx, fileID, userID)
}

// List returns one page of the owner's files under the given parent
func (s *FileService) List(ctx context.Context, userID string, parent domain.ParentRef, page int) ([]*domain.File, error) {
	if page < 0 {
		page = 0
	}
	return s.files.ListByParent(ctx, userID, parent, int64(page)*pageSize, pageSize)
}

// SetVisibility publishes or unpublishes an owned file and returns the
// updated entity. The operation is idempotent.
func (s *FileService) SetVisibility(ctx context.Context, userID, fileID string, public bool) (*domain.File, error) {
	return s.files.SetPublic(ctx, fileID, userID, public)
}

// Content resolves a file's blob (or one of its thumbnails when size is
// non-zero) and returns a reader plus the content type inferred from the file
// name. callerID may be empty for anonymous access to public files. A file
// that exists but is not visible to the caller yields ErrNotFound, the same
// as a missing file.
func (s *FileService) Content(ctx context.Context, callerID, fileID string, size int) (io.ReadCloser, string, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, "", err
	}

	if !file.IsPublic && (callerID == "" || callerID != file.UserID) {
		return nil, "", domain.ErrNotFound
	}

	if size != 0 && !validThumbnailSize(size) {
		return nil, "", domain.ErrInvalidSize
	}

	if file.Type == domain.TypeFolder {
		return nil, "", domain.ErrFolderNoContent
	}

	location := file.LocalPath
	if size != 0 {
		location = fmt.Sprintf("%s_%d", location, size)
	}

	reader, err := s.blobs.Open(ctx, location)
	if err != nil {
		return nil, "", err
	}
	return reader, ContentTypeForName(file.Name), nil
}

// ContentTypeForName infers a MIME type from a file name's extension,
// defaulting to a generic binary type when the extension resolves to nothing.
func ContentTypeForName(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return defaultContentType
}

func validThumbnailSize(size int) bool {
	for _, w := range domain.ThumbnailWidths {
		if size == w {
			return true
		}
	}
	return false
}
