package todostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/models"
)

// Draft returns a copy of the draft buffer.
func (s *Store) Draft() models.TempTodo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.draft
	d.Tags = append([]string(nil), d.Tags...)
	return d
}

// UpdateDraft merges patch into the draft buffer. Nothing is persisted.
func (s *Store) UpdateDraft(patch models.DraftPatch) {
	s.mu.Lock()
	patch.Apply(&s.draft)
	s.dirty = true
	id := s.draft.ID
	s.mu.Unlock()
	s.emit(EventDraftChanged, id)
}

// ChangeDraft opens the todo id in the draft buffer. Unsaved edits of the
// current draft are saved first; if that fails the switch is aborted.
func (s *Store) ChangeDraft(ctx context.Context, id string) models.Result {
	s.mu.Lock()
	res, events := s.changeDraftLocked(ctx, id)
	s.mu.Unlock()
	for _, e := range events {
		s.emit(e[0], e[1])
	}
	return res
}

func (s *Store) changeDraftLocked(ctx context.Context, id string) (models.Result, [][2]string) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Fail(notFound(id).Error()), nil
	}

	var events [][2]string
	if s.dirty && !s.draft.IsBlank() {
		savedID, created, err := s.saveDraftLocked(ctx)
		if err != nil {
			s.logger.Warn("todostore: auto-save before switch failed",
				slog.String("from", s.draft.ID), slog.String("to", id), slog.String("error", err.Error()))
			return models.Fail("current draft not saved: " + err.Error()), nil
		}
		events = append(events, [2]string{savedEvent(created), savedID})
		// The save may have appended a todo; i is still valid since appends go to the end.
	}

	content, err := s.content.Get(ctx, id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return models.Fail(persistErr("read content", err).Error()), events
	}
	item := s.todos[i]
	s.draft = models.TempTodo{
		ID:      item.ID,
		Title:   item.Title,
		Time:    item.Time,
		Content: content,
		Tags:    append([]string(nil), item.Tags...),
	}
	s.dirty = false
	events = append(events, [2]string{EventDraftChanged, id})
	return models.OK("opened " + item.Title), events
}

// SaveDraft persists the draft: it creates a todo when the draft id is empty
// or unknown and updates the todo otherwise. After a create the draft adopts
// the new id, so saving twice never duplicates.
func (s *Store) SaveDraft(ctx context.Context) models.Result {
	s.mu.Lock()
	id, created, err := s.saveDraftLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		if !errors.Is(err, apperr.ErrInvalid) {
			s.logger.Error("todostore: save draft failed", slog.String("error", err.Error()))
		}
		return models.Fail(err.Error())
	}
	s.emit(savedEvent(created), id)
	s.emit(EventDraftChanged, id)
	if created {
		return models.OK("created")
	}
	return models.OK("saved")
}

func (s *Store) saveDraftLocked(ctx context.Context) (string, bool, error) {
	d := s.draft
	if d.IsBlank() {
		return "", false, fmt.Errorf("todostore: empty draft: %w", apperr.ErrInvalid)
	}

	if d.ID != "" && s.indexOf(d.ID) >= 0 {
		tags := d.Tags
		patch := models.TodoPatch{
			Title:   &d.Title,
			Time:    &d.Time,
			Content: &d.Content,
			Tags:    &tags,
		}
		if blank(d.Time) {
			patch.Time = nil
		}
		if err := s.updateLocked(ctx, d.ID, patch); err != nil {
			return "", false, err
		}
		s.dirty = false
		return d.ID, false, nil
	}

	d.ID = ""
	id, err := s.saveTodoLocked(ctx, d)
	if err != nil {
		return "", false, err
	}
	saved := s.todos[len(s.todos)-1]
	s.draft.ID = id
	s.draft.Time = saved.Time
	s.draft.Tags = append([]string(nil), saved.Tags...)
	s.dirty = false
	return id, true, nil
}

// CreateDraft saves the draft if it has unsaved edits, then starts a fresh one.
// A failed save keeps the current draft.
func (s *Store) CreateDraft(ctx context.Context) models.Result {
	s.mu.Lock()
	var (
		id      string
		created bool
		saved   bool
	)
	if s.dirty && !s.draft.IsBlank() {
		var err error
		id, created, err = s.saveDraftLocked(ctx)
		if err != nil {
			s.mu.Unlock()
			s.logger.Error("todostore: save before new draft failed", slog.String("error", err.Error()))
			return models.Fail("current draft not saved: " + err.Error())
		}
		saved = true
	}
	s.draft = models.TempTodo{}
	s.dirty = false
	s.mu.Unlock()

	if saved {
		s.emit(savedEvent(created), id)
	}
	s.emit(EventDraftChanged, "")
	if saved {
		return models.OK("saved, new draft")
	}
	return models.OK("new draft")
}

// ResetDraft discards the draft buffer.
func (s *Store) ResetDraft() {
	s.mu.Lock()
	s.draft = models.TempTodo{}
	s.dirty = false
	s.mu.Unlock()
	s.emit(EventDraftChanged, "")
}

func savedEvent(created bool) string {
	if created {
		return EventTodoCreated
	}
	return EventTodoUpdated
}
