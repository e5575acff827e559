// Package todostore is the Data Store: the ordered todo list, the tag catalog,
// the draft buffer and the active filter. Metadata is mirrored to the SQLite
// index and content lives in a storage.Provider.
package todostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/storage"
)

// TimeLayout is the format of Todo.Time stamped on save.
const TimeLayout = "2006-01-02 15:04"

// DefaultOwner is the uid stamped on new todos when no owner is configured.
const DefaultOwner = "guest"

// Event kinds passed to the Notifier.
const (
	EventTodoCreated    = "todo.created"
	EventTodoUpdated    = "todo.updated"
	EventTodoDeleted    = "todo.deleted"
	EventTodosReordered = "todos.reordered"
	EventTagsReordered  = "tags.reordered"
	EventDraftChanged   = "draft.changed"
)

// Notifier receives one call per committed change. It runs after the store
// lock is released.
type Notifier func(kind, id string)

// Store owns the in-memory state. Mutations are serialized by mu, which is held
// across the persistence calls and the in-memory commit so concurrent writes
// land in call order.
type Store struct {
	db      index.TodoIndex
	content storage.Provider
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	owner   string
	seed    []models.Tag
	notify  Notifier

	mu      sync.RWMutex
	todos   []models.TodoItem
	tags    []models.Tag
	draft   models.TempTodo
	dirty   bool
	filter  string
	nextPos int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithOwner sets the uid stamped on new todos.
func WithOwner(uid string) Option {
	return func(s *Store) {
		if uid != "" {
			s.owner = uid
		}
	}
}

// WithCatalog sets the tag catalog seeded into an empty index.
func WithCatalog(tags []models.Tag) Option {
	return func(s *Store) { s.seed = tags }
}

// WithNotifier registers the change callback.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notify = n }
}

// New loads the list and the tag catalog from db. An empty catalog is seeded.
func New(ctx context.Context, db index.TodoIndex, content storage.Provider, opts ...Option) (*Store, error) {
	s := &Store{
		db:      db,
		content: content,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
		owner:   DefaultOwner,
		filter:  models.AllTags,
	}
	for _, opt := range opts {
		opt(s)
	}

	rows, err := db.ListTodos(ctx)
	if err != nil {
		return nil, fmt.Errorf("todostore: load todos: %w", err)
	}
	s.todos = make([]models.TodoItem, 0, len(rows))
	for _, r := range rows {
		s.todos = append(s.todos, r.Item())
		if r.Position >= s.nextPos {
			s.nextPos = r.Position + 1
		}
	}

	tags, err := db.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("todostore: load tags: %w", err)
	}
	if len(tags) == 0 {
		tags = s.seed
		if len(tags) == 0 {
			tags = models.DefaultTags()
		}
		if err := db.ReplaceTags(ctx, tags); err != nil {
			return nil, fmt.Errorf("todostore: seed tags: %w", err)
		}
		s.logger.Info("todostore: seeded tag catalog", slog.Int("tags", len(tags)))
	}
	s.tags = tags

	s.logger.Info("todostore: loaded", slog.Int("todos", len(s.todos)), slog.Int("tags", len(s.tags)))
	return s, nil
}

func (s *Store) emit(kind, id string) {
	if s.notify != nil {
		s.notify(kind, id)
	}
}

// indexOf returns the list position of id, or -1.
func (s *Store) indexOf(id string) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func persistErr(op string, err error) error {
	return fmt.Errorf("todostore: %s: %w: %w", op, apperr.ErrPersistence, err)
}

func notFound(id string) error {
	return fmt.Errorf("todostore: todo %q: %w", id, apperr.ErrNotFound)
}

// restore puts back the previous content of id, or removes it when there was none.
func (s *Store) restore(ctx context.Context, id, content string, existed bool) {
	var err error
	if existed {
		err = s.content.Put(ctx, id, content)
	} else {
		err = s.content.Delete(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			err = nil
		}
	}
	if err != nil {
		s.logger.Error("todostore: rollback failed", slog.String("id", id), slog.String("error", err.Error()))
	}
}
