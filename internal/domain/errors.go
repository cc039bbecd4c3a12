package domain

import "errors"

// Common errors. The messages are part of the API contract and are returned
// verbatim in error responses.
var (
	ErrUnauthorized = errors.New("Unauthorized")
	ErrNotFound     = errors.New("Not found")

	ErrMissingEmail    = errors.New("Missing email")
	ErrMissingPassword = errors.New("Missing password")
	ErrEmailTaken      = errors.New("Already exist")

	ErrMissingName     = errors.New("Missing name")
	ErrMissingType     = errors.New("Missing type")
	ErrMissingData     = errors.New("Missing data")
	ErrInvalidParent   = errors.New("Parent not found or not a folder")
	ErrInvalidSize     = errors.New("Invalid size")
	ErrFolderNoContent = errors.New("A folder doesn't have content")
)
