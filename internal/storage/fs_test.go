package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/jera/internal/apperr"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestPutAndGet(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	if err := s.Put(ctx, "todo-1", "# Hello\nWorld\n"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "todo-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "# Hello\nWorld\n" {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestGet_Missing(t *testing.T) {
	s := tempStore(t)
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_ = s.Put(ctx, "del", "bye")
	if err := s.Delete(ctx, "del"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "del"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "del"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_ = s.Put(ctx, "a", "a")
	_ = s.Put(ctx, "b", "b")
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.txt"), []byte("not content"), 0o644)
	_ = os.MkdirAll(filepath.Join(s.Root(), "sub"), 0o755)

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Checksum == "" {
			t.Errorf("%s: empty checksum", it.ID)
		}
	}
}

func TestInvalidIDsRejected(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	cases := []string{
		"../../etc/passwd",
		"../outside",
		"/etc/shadow",
		"",
		"a b",
	}
	for _, id := range cases {
		if _, err := s.Get(ctx, id); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("Get(%q) err = %v, want ErrInvalid", id, err)
		}
		if err := s.Put(ctx, id, "x"); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("Put(%q) err = %v, want ErrInvalid", id, err)
		}
	}
}

func TestAtomicPutNoLeftovers(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_ = s.Put(ctx, "atomic", "original content")

	if err := s.Put(ctx, "atomic", "updated content"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := s.Get(ctx, "atomic")
	if got != "updated content" {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".jera-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestIDFromPath(t *testing.T) {
	s := tempStore(t)
	if id, ok := s.IDFromPath(filepath.Join(s.Root(), "abc.md")); !ok || id != "abc" {
		t.Errorf("IDFromPath = %q, %v", id, ok)
	}
	if _, ok := s.IDFromPath(filepath.Join(s.Root(), "sub", "abc.md")); ok {
		t.Error("nested file should not map to an id")
	}
	if _, ok := s.IDFromPath(filepath.Join(s.Root(), ".jera-tmp-123")); ok {
		t.Error("temp file should not map to an id")
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/jera-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "jera-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
