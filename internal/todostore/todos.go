package todostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/order"
)

// SaveTodo persists draft as a new todo and appends it to the list.
// A blank draft ID gets a fresh one; an ID already in the list is rejected.
func (s *Store) SaveTodo(ctx context.Context, draft models.TempTodo) (string, error) {
	s.mu.Lock()
	id, err := s.saveTodoLocked(ctx, draft)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	s.emit(EventTodoCreated, id)
	return id, nil
}

func (s *Store) saveTodoLocked(ctx context.Context, draft models.TempTodo) (string, error) {
	id := draft.ID
	if id == "" {
		id = s.newID()
	} else if s.indexOf(id) >= 0 {
		return "", fmt.Errorf("todostore: todo %q: %w", id, apperr.ErrAlreadyExists)
	}
	if err := validateTitle(draft.Title); err != nil {
		return "", err
	}
	tags, err := s.normalizeTags(draft.Tags)
	if err != nil {
		return "", err
	}
	stamp := draft.Time
	if blank(stamp) {
		stamp = s.now().Format(TimeLayout)
	}

	item := models.TodoItem{
		ID:    id,
		Title: draft.Title,
		Time:  stamp,
		Tags:  tags,
		UID:   s.owner,
	}

	if err := s.content.Put(ctx, id, draft.Content); err != nil {
		return "", persistErr("save content", err)
	}
	if err := s.db.UpsertTodoWithBody(ctx, index.RowFromItem(item, s.nextPos), draft.Content); err != nil {
		s.restore(ctx, id, "", false)
		return "", persistErr("save metadata", err)
	}

	s.todos = append(s.todos, item)
	s.nextPos++
	s.logger.Debug("todostore: saved", slog.String("id", id))
	return id, nil
}

// DeleteTodos removes every listed todo with its content. The batch is
// all-or-nothing: an unknown id or a failed write leaves everything in place.
func (s *Store) DeleteTodos(ctx context.Context, ids []string) error {
	s.mu.Lock()
	deleted, draftReset, err := s.deleteLocked(ctx, ids)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.emitDeleted(deleted, draftReset)
	return nil
}

func (s *Store) emitDeleted(ids []string, draftReset bool) {
	for _, id := range ids {
		s.emit(EventTodoDeleted, id)
	}
	if draftReset {
		s.emit(EventDraftChanged, "")
	}
}

// deleteLocked reports whether the draft was discarded because it had one
// of the deleted todos open. Otherwise a later save would bring it back.
func (s *Store) deleteLocked(ctx context.Context, ids []string) ([]string, bool, error) {
	if len(ids) == 0 {
		return nil, false, fmt.Errorf("todostore: delete: no ids: %w", apperr.ErrInvalid)
	}
	seen := make(map[string]struct{}, len(ids))
	batch := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if s.indexOf(id) < 0 {
			return nil, false, notFound(id)
		}
		seen[id] = struct{}{}
		batch = append(batch, id)
	}

	// Snapshot content so a failed delete can be undone.
	snapshot := make([]string, len(batch))
	exists := make([]bool, len(batch))
	g, gCtx := errgroup.WithContext(ctx)
	for i, id := range batch {
		g.Go(func() error {
			c, err := s.content.Get(gCtx, id)
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				return nil
			case err != nil:
				return err
			}
			snapshot[i], exists[i] = c, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, persistErr("snapshot content", err)
	}

	undo := func(upTo int) {
		for j := 0; j < upTo; j++ {
			if exists[j] {
				s.restore(ctx, batch[j], snapshot[j], true)
			}
		}
	}

	for i, id := range batch {
		if !exists[i] {
			continue
		}
		if err := s.content.Delete(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			undo(i)
			return nil, false, persistErr("delete content", err)
		}
	}
	if err := s.db.DeleteTodos(ctx, batch); err != nil {
		undo(len(batch))
		return nil, false, persistErr("delete metadata", err)
	}

	kept := s.todos[:0:0]
	for _, t := range s.todos {
		if _, gone := seen[t.ID]; !gone {
			kept = append(kept, t)
		}
	}
	s.todos = kept

	draftReset := false
	if _, gone := seen[s.draft.ID]; gone {
		s.draft = models.TempTodo{}
		s.dirty = false
		draftReset = true
	}
	s.logger.Debug("todostore: deleted", slog.Int("count", len(batch)))
	return batch, draftReset, nil
}

// UpdateTodo merges patch into the todo with the given id.
func (s *Store) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) error {
	s.mu.Lock()
	err := s.updateLocked(ctx, id, patch)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.emit(EventTodoUpdated, id)
	return nil
}

func (s *Store) updateLocked(ctx context.Context, id string, patch models.TodoPatch) error {
	i := s.indexOf(id)
	if i < 0 {
		return notFound(id)
	}

	item := s.todos[i]
	item.Tags = append([]string(nil), item.Tags...)
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return err
		}
	}
	if patch.Tags != nil {
		tags, err := s.normalizeTags(*patch.Tags)
		if err != nil {
			return err
		}
		patch.Tags = &tags
	}
	patch.Apply(&item)

	if patch.SelectionOnly() {
		s.todos[i] = item
		return nil
	}

	row := index.RowFromItem(item, i)
	if patch.Content == nil {
		if err := s.db.UpsertTodo(ctx, row); err != nil {
			return persistErr("update metadata", err)
		}
		s.todos[i] = item
		return nil
	}

	old, err := s.content.Get(ctx, id)
	existed := err == nil
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return persistErr("read content", err)
	}
	if err := s.content.Put(ctx, id, *patch.Content); err != nil {
		return persistErr("update content", err)
	}
	if err := s.db.UpsertTodoWithBody(ctx, row, *patch.Content); err != nil {
		s.restore(ctx, id, old, existed)
		return persistErr("update metadata", err)
	}
	s.todos[i] = item
	return nil
}

// GetTodo joins the list entry of id with its stored content. Missing content
// reads as empty.
func (s *Store) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, notFound(id)
	}
	content, err := s.content.Get(ctx, id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, persistErr("read content", err)
	}
	todo := s.todos[i].WithContent(content)
	return &todo, nil
}

// ReorderTodos moves one todo. Index moves are positions in the filtered view.
func (s *Store) ReorderTodos(ctx context.Context, move order.Move) error {
	s.mu.Lock()
	changed, err := s.reorderLocked(ctx, move)
	s.mu.Unlock()
	if err != nil || !changed {
		return err
	}
	s.emit(EventTodosReordered, "")
	return nil
}

func (s *Store) reorderLocked(ctx context.Context, move order.Move) (bool, error) {
	view := make([]string, 0, len(s.todos))
	for _, t := range s.todos {
		if t.Matches(s.filter) {
			view = append(view, t.ID)
		}
	}
	from, to, err := move.Resolve(view)
	if err != nil {
		return false, fmt.Errorf("todostore: reorder %s: %w", move, err)
	}
	if from == to {
		return false, nil
	}

	next, err := order.Apply(s.todos, s.indexOf(view[from]), s.indexOf(view[to]))
	if err != nil {
		return false, fmt.Errorf("todostore: reorder %s: %w", move, err)
	}
	ids := make([]string, len(next))
	for i, t := range next {
		ids[i] = t.ID
	}
	if err := s.db.SetTodoPositions(ctx, ids); err != nil {
		return false, persistErr("reorder", err)
	}
	s.todos = next
	s.nextPos = len(next)
	return true, nil
}

// Todos returns a copy of the full list in order.
func (s *Store) Todos() []models.TodoItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtered(models.AllTags)
}

// FilteredTodos returns the todos visible under the active filter.
func (s *Store) FilteredTodos() []models.TodoItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtered(s.filter)
}

func (s *Store) filtered(filter string) []models.TodoItem {
	out := make([]models.TodoItem, 0, len(s.todos))
	for _, t := range s.todos {
		if t.Matches(filter) {
			t.Tags = append([]string(nil), t.Tags...)
			out = append(out, t)
		}
	}
	return out
}

// Filter returns the active tag filter.
func (s *Store) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilter switches the visible subset. Switching clears every selection,
// even when the filter does not change.
func (s *Store) SetFilter(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validFilter(tag); err != nil {
		return err
	}
	if tag == "" {
		tag = models.AllTags
	}
	s.filter = tag
	s.clearSelectionLocked()
	return nil
}

// ToggleAllSelected sets IsSelected on exactly the filtered subset.
func (s *Store) ToggleAllSelected(status bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].Matches(s.filter) {
			s.todos[i].IsSelected = status
		}
	}
}

func (s *Store) clearSelectionLocked() {
	for i := range s.todos {
		s.todos[i].IsSelected = false
	}
}

// SelectedIDs returns the ids of selected todos in list order.
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLocked()
}

func (s *Store) selectedLocked() []string {
	var ids []string
	for _, t := range s.todos {
		if t.IsSelected {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// DeleteSelected deletes every selected todo. Selection is gone with them.
func (s *Store) DeleteSelected(ctx context.Context) models.Result {
	s.mu.Lock()
	ids := s.selectedLocked()
	if len(ids) == 0 {
		s.mu.Unlock()
		return models.Fail("no todo selected")
	}
	deleted, draftReset, err := s.deleteLocked(ctx, ids)
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("todostore: delete selected failed", slog.Int("count", len(ids)), slog.String("error", err.Error()))
		return models.Fail("delete failed: " + err.Error())
	}
	s.emitDeleted(deleted, draftReset)
	return models.OK(fmt.Sprintf("deleted %d todos", len(deleted)))
}
