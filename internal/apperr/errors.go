// Package apperr holds the sentinel errors shared by the store, storage and API layers.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a resource owned by someone else, like a database locked by another process.
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalid marks input that is skipped rather than saved (empty drafts, unknown tags).
	ErrInvalid = errors.New("invalid")
	// ErrPersistence marks a failed write or delete in the content store or the index.
	ErrPersistence = errors.New("persistence failure")
)
