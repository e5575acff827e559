package index

import (
	"context"

	"github.com/starford/jera/internal/models"
)

// TodoIndex defines the persistence operations the todo store relies on.
// Consumers should depend on this interface rather than the concrete *DB type
// so failure paths can be exercised with fakes.
type TodoIndex interface {
	ListTodos(ctx context.Context) ([]TodoRow, error)
	UpsertTodo(ctx context.Context, row TodoRow) error
	UpsertTodoWithBody(ctx context.Context, row TodoRow, body string) error
	SetBody(ctx context.Context, id, body string) (bool, error)
	DeleteTodos(ctx context.Context, ids []string) error
	SetTodoPositions(ctx context.Context, ids []string) error
	GetChecksum(ctx context.Context, id string) (string, error)
	AllChecksums(ctx context.Context) (map[string]string, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ReplaceTags(ctx context.Context, tags []models.Tag) error
	Close() error
}

// Verify *DB satisfies TodoIndex at compile time.
var _ TodoIndex = (*DB)(nil)
