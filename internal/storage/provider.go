// Package storage is the content collaborator: todo bodies stored out-of-band
// from the in-memory list, keyed by todo id.
package storage

import (
	"context"
	"fmt"
	"regexp"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/models"
)

// Provider is the interface for todo content persistence.
type Provider interface {
	// Get returns the content stored for id, or an error wrapping apperr.ErrNotFound.
	Get(ctx context.Context, id string) (string, error)
	// Put replaces the content stored for id.
	Put(ctx context.Context, id, content string) error
	// Delete removes the content for id. Missing content wraps apperr.ErrNotFound.
	Delete(ctx context.Context, id string) error
	// List returns metadata for every stored entry.
	List(ctx context.Context) ([]models.ContentMeta, error)
}

var idRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidID rejects ids that cannot be used as a file name or key suffix.
func ValidID(id string) error {
	if !idRe.MatchString(id) {
		return fmt.Errorf("storage: invalid id %q: %w", id, apperr.ErrInvalid)
	}
	return nil
}
