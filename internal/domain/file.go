package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// File types. A folder carries no storage content; files and images are backed
// by a blob, and images additionally get thumbnails generated for them.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
	TypeImage  = "image"
)

// ValidFileType reports whether t is one of the allowed file types.
func ValidFileType(t string) bool {
	return t == TypeFolder || t == TypeFile || t == TypeImage
}

// ThumbnailWidths are the fixed widths generated for image files, in
// processing order. A derived blob lives at "<localPath>_<width>".
var ThumbnailWidths = []int{500, 250, 100}

// ParentRef identifies the parent of a file: either the root sentinel or a
// reference to a folder by id. Clients send the root sentinel as the number 0
// or the string "0"; both normalize to the same value here so the rest of the
// code never compares raw JSON shapes.
type ParentRef struct {
	id string
}

// RootParent returns the root sentinel.
func RootParent() ParentRef { return ParentRef{} }

// FolderParent returns a reference to the folder with the given id.
func FolderParent(id string) ParentRef { return ParentRef{id: id} }

// ParentRefFromString normalizes a query-string parent value.
func ParentRefFromString(s string) ParentRef {
	if s == "" || s == "0" {
		return ParentRef{}
	}
	return ParentRef{id: s}
}

// IsRoot reports whether the reference is the root sentinel.
func (p ParentRef) IsRoot() bool { return p.id == "" }

// ID returns the referenced folder id, or "" for root.
func (p ParentRef) ID() string { return p.id }

// MarshalJSON emits 0 for root and the folder id otherwise, matching the
// persisted entity shape.
func (p ParentRef) MarshalJSON() ([]byte, error) {
	if p.id == "" {
		return []byte("0"), nil
	}
	return json.Marshal(p.id)
}

// UnmarshalJSON accepts the root sentinel as the number 0 or the string "0",
// and any other string as a folder id. Non-zero numbers are carried through as
// ids and rejected downstream when parent resolution fails.
func (p *ParentRef) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*p = ParentRef{}
	case float64:
		if v == 0 {
			*p = ParentRef{}
		} else {
			*p = ParentRef{id: strconv.FormatFloat(v, 'f', -1, 64)}
		}
	case string:
		*p = ParentRefFromString(v)
	default:
		return fmt.Errorf("invalid parentId: %s", string(data))
	}
	return nil
}

// File represents an entry in the storage hierarchy: a folder, a regular
// file, or an image. LocalPath is set exactly when the type is not folder.
type File struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	IsPublic  bool      `json:"isPublic"`
	ParentID  ParentRef `json:"parentId"`
	LocalPath string    `json:"localPath,omitempty"`
	CreatedAt time.Time `json:"-"`
}

// FileRepository defines persistence operations for files.
type FileRepository interface {
	// Create saves a new file entity and fills in its id.
	Create(ctx context.Context, file *File) error

	// GetByID retrieves a file by id regardless of owner.
	// Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*File, error)

	// GetOwned retrieves a file matching both id and owner.
	// Returns ErrNotFound if absent or owned by someone else.
	GetOwned(ctx context.Context, id, userID string) (*File, error)

	// ListByParent returns the owner's files under the given parent in
	// insertion order, windowed by skip and limit.
	ListByParent(ctx context.Context, userID string, parent ParentRef, skip, limit int64) ([]*File, error)

	// SetPublic updates the visibility flag of an owned file and returns the
	// updated entity. Returns ErrNotFound if absent or owned by someone else.
	SetPublic(ctx context.Context, id, userID string, public bool) (*File, error)

	// Count returns the total number of files.
	Count(ctx context.Context) (int64, error)
}
