package internal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/testutil"
)

func TestOpenBackends_SecondProcessRefused(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Content.Path = filepath.Join(dir, "todos")
	cfg.SQLite.Path = filepath.Join(dir, "jera.db")
	ctx := context.Background()
	logger := testutil.QuietLogger()

	first, err := openBackends(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}

	if _, err := openBackends(ctx, cfg, logger); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second open err = %v, want ErrConflict", err)
	}

	first.Close()
	again, err := openBackends(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("open after close: %v", err)
	}
	again.Close()
}
