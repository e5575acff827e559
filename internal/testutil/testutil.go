// Package testutil provides shared test helpers for setting up content
// directories, databases and stores.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/storage"
	"github.com/starford/jera/internal/todostore"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "jera-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content directory with an FS provider.
func TestContent(t *testing.T) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// QuietLogger drops everything below error.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// FixedClock always returns 2026-10-17 09:30 UTC.
func FixedClock() time.Time {
	return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
}

// TestStore builds a store over db and content with a quiet logger and a
// fixed clock. Extra options are applied last.
func TestStore(t *testing.T, db index.TodoIndex, content storage.Provider, opts ...todostore.Option) *todostore.Store {
	t.Helper()
	base := []todostore.Option{
		todostore.WithLogger(QuietLogger()),
		todostore.WithClock(FixedClock),
	}
	s, err := todostore.New(context.Background(), db, content, append(base, opts...)...)
	if err != nil {
		t.Fatalf("todostore.New: %v", err)
	}
	return s
}
