package todostore

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/order"
)

// DefaultSearchLimit caps Search when the caller passes no limit.
const DefaultSearchLimit = 20

// Tags returns the full catalog in board order.
func (s *Store) Tags() []models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Tag(nil), s.tags...)
}

// SelectableTags returns the catalog without NoTag.
func (s *Store) SelectableTags() []models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		if t.ID != models.NoTag {
			out = append(out, t)
		}
	}
	return out
}

// ReorderTags moves one tag in the catalog and persists the new order.
func (s *Store) ReorderTags(ctx context.Context, move order.Move) error {
	s.mu.Lock()
	changed, err := s.reorderTagsLocked(ctx, move)
	s.mu.Unlock()
	if err != nil || !changed {
		return err
	}
	s.emit(EventTagsReordered, "")
	return nil
}

func (s *Store) reorderTagsLocked(ctx context.Context, move order.Move) (bool, error) {
	ids := make([]string, len(s.tags))
	for i, t := range s.tags {
		ids[i] = t.ID
	}
	from, to, err := move.Resolve(ids)
	if err != nil {
		return false, fmt.Errorf("todostore: reorder tags %s: %w", move, err)
	}
	if from == to {
		return false, nil
	}
	next, err := order.Apply(s.tags, from, to)
	if err != nil {
		return false, fmt.Errorf("todostore: reorder tags %s: %w", move, err)
	}
	if err := s.db.ReplaceTags(ctx, next); err != nil {
		return false, persistErr("reorder tags", err)
	}
	s.tags = next
	return true, nil
}

// SaveItem is the board shorthand: a titled todo with empty content.
func (s *Store) SaveItem(ctx context.Context, title string, tags []string) (string, error) {
	if err := validation.Validate(title, validation.Required); err != nil {
		return "", fmt.Errorf("todostore: title: %w: %w", apperr.ErrInvalid, err)
	}
	return s.SaveTodo(ctx, models.TempTodo{Title: title, Tags: tags})
}

// Board returns one column per visible tag, each holding its todos in list order.
func (s *Store) Board() []models.Column {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cols := make([]models.Column, 0, len(s.tags))
	for _, tag := range s.tags {
		if tag.IsHidden {
			continue
		}
		items := []models.TodoItem{}
		for _, t := range s.todos {
			if t.Tag() == tag.ID {
				t.Tags = append([]string(nil), t.Tags...)
				items = append(items, t)
			}
		}
		cols = append(cols, models.Column{Tag: tag, Items: items})
	}
	return cols
}

// Search runs a full-text query over titles and content.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if blank(query) {
		return nil, fmt.Errorf("todostore: search: empty query: %w", apperr.ErrInvalid)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	results, err := s.db.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("todostore: search: %w", err)
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	return results, nil
}
