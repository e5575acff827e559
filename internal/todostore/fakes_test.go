package todostore_test

import (
	"context"
	"errors"
	"sync"

	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/storage"
)

var errBoom = errors.New("boom")

// flakyIndex wraps a real index and fails the operations whose flag is set.
type flakyIndex struct {
	index.TodoIndex
	failUpsert    bool
	failDelete    bool
	failPositions bool
	failTags      bool
}

func (f *flakyIndex) UpsertTodo(ctx context.Context, row index.TodoRow) error {
	if f.failUpsert {
		return errBoom
	}
	return f.TodoIndex.UpsertTodo(ctx, row)
}

func (f *flakyIndex) UpsertTodoWithBody(ctx context.Context, row index.TodoRow, body string) error {
	if f.failUpsert {
		return errBoom
	}
	return f.TodoIndex.UpsertTodoWithBody(ctx, row, body)
}

func (f *flakyIndex) DeleteTodos(ctx context.Context, ids []string) error {
	if f.failDelete {
		return errBoom
	}
	return f.TodoIndex.DeleteTodos(ctx, ids)
}

func (f *flakyIndex) SetTodoPositions(ctx context.Context, ids []string) error {
	if f.failPositions {
		return errBoom
	}
	return f.TodoIndex.SetTodoPositions(ctx, ids)
}

func (f *flakyIndex) ReplaceTags(ctx context.Context, tags []models.Tag) error {
	if f.failTags {
		return errBoom
	}
	return f.TodoIndex.ReplaceTags(ctx, tags)
}

// flakyContent wraps a real provider. failPut fails every Put; failDeleteOn
// fails Delete for one id only.
type flakyContent struct {
	storage.Provider
	mu           sync.Mutex
	failPut      bool
	failDeleteOn string
}

func (f *flakyContent) Put(ctx context.Context, id, content string) error {
	f.mu.Lock()
	fail := f.failPut
	f.mu.Unlock()
	if fail {
		return errBoom
	}
	return f.Provider.Put(ctx, id, content)
}

func (f *flakyContent) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	fail := f.failDeleteOn == id
	f.mu.Unlock()
	if fail {
		return errBoom
	}
	return f.Provider.Delete(ctx, id)
}

// recordingContent wraps a real provider and remembers every Put in call order.
type recordingContent struct {
	storage.Provider
	mu   sync.Mutex
	puts map[string][]string
}

func (r *recordingContent) Put(ctx context.Context, id, content string) error {
	if err := r.Provider.Put(ctx, id, content); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.puts == nil {
		r.puts = make(map[string][]string)
	}
	r.puts[id] = append(r.puts[id], content)
	return nil
}

func (r *recordingContent) putsFor(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.puts[id]...)
}
