package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/storage"
)

// watcherTestEnv sets up a content dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (*storage.FS, *DB) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store, testDB(t)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestSync_RefreshesChangedAndMissing(t *testing.T) {
	store, db := watcherTestEnv(t)
	ctx := context.Background()

	_ = db.UpsertTodoWithBody(ctx, TodoRow{ID: "edited"}, "old")
	_ = db.UpsertTodoWithBody(ctx, TodoRow{ID: "gone", Position: 1}, "was here")
	_ = store.Put(ctx, "edited", "new")
	_ = store.Put(ctx, "orphan", "no todo")

	if err := Sync(ctx, db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	all, _ := db.AllChecksums(ctx)
	if all["edited"] != checksum.String("new") {
		t.Error("changed content not reindexed")
	}
	if all["gone"] != checksum.String("") {
		t.Error("missing content not cleared")
	}
	if _, ok := all["orphan"]; ok {
		t.Error("orphan content must not create a todo")
	}
}

func TestWatcher_ExternalEditReindexed(t *testing.T) {
	store, db := watcherTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = db.UpsertTodoWithBody(ctx, TodoRow{ID: "note"}, "before")

	var mu sync.Mutex
	var events []string
	go Watch(ctx, db, store, quietLogger(), func(kind, id string) {
		mu.Lock()
		events = append(events, kind+":"+id)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(store.Root(), "note.md"), []byte("after"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum(ctx, "note")
		return cs == checksum.String("after")
	}, "external edit not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "updated:note" {
				return true
			}
		}
		return false
	}, "expected updated:note callback")
}

func TestWatcher_DeleteClearsBody(t *testing.T) {
	store, db := watcherTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = store.Put(ctx, "del", "delete me")
	_ = db.UpsertTodoWithBody(ctx, TodoRow{ID: "del"}, "delete me")

	go Watch(ctx, db, store, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(store.Root(), "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum(ctx, "del")
		return cs == checksum.String("")
	}, "deleted content still indexed")
}
