package todostore

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/models"
)

const maxTitleLen = 500

// tagIDs lists every id a todo may carry: the catalog plus NoTag.
func (s *Store) tagIDs() []any {
	out := make([]any, 0, len(s.tags)+1)
	out = append(out, models.NoTag)
	for _, t := range s.tags {
		if t.ID != models.NoTag {
			out = append(out, t.ID)
		}
	}
	return out
}

// normalizeTags validates tags against the catalog. An empty list becomes [NoTag].
func (s *Store) normalizeTags(tags []string) ([]string, error) {
	err := validation.Validate(tags,
		validation.Length(0, 1).Error("a todo carries at most one tag"),
		validation.Each(validation.Required, validation.In(s.tagIDs()...).Error("unknown tag")),
	)
	if err != nil {
		return nil, fmt.Errorf("todostore: tags %v: %w: %w", tags, apperr.ErrInvalid, err)
	}
	if len(tags) == 0 {
		return []string{models.NoTag}, nil
	}
	return []string{tags[0]}, nil
}

func validateTitle(title string) error {
	if err := validation.Validate(title, validation.RuneLength(0, maxTitleLen)); err != nil {
		return fmt.Errorf("todostore: title: %w: %w", apperr.ErrInvalid, err)
	}
	return nil
}

// validFilter reports whether tag is usable as a list filter.
func (s *Store) validFilter(tag string) error {
	if tag == "" || tag == models.AllTags {
		return nil
	}
	if err := validation.Validate(tag, validation.In(s.tagIDs()...)); err != nil {
		return fmt.Errorf("todostore: filter %q: %w: %w", tag, apperr.ErrInvalid, err)
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
