package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/models"
)

// Ext is the file extension of content files.
const Ext = ".md"

// FS implements Provider with one file per todo under a root directory.
type FS struct {
	root string // absolute path to the content directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute content directory.
func (f *FS) Root() string {
	return f.root
}

// IDFromPath maps a content file path back to its todo id.
// ok is false for anything that is not a direct child content file.
func (f *FS) IDFromPath(path string) (string, bool) {
	if filepath.Dir(path) != f.root || !strings.HasSuffix(path, Ext) {
		return "", false
	}
	id := strings.TrimSuffix(filepath.Base(path), Ext)
	if ValidID(id) != nil {
		return "", false
	}
	return id, true
}

func (f *FS) pathFor(id string) (string, error) {
	if err := ValidID(id); err != nil {
		return "", err
	}
	return filepath.Join(f.root, id+Ext), nil
}

// Get returns the content of a todo.
func (f *FS) Get(_ context.Context, id string) (string, error) {
	p, err := f.pathFor(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("storage: get %s: %w", id, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("storage: get %s: %w", id, err)
	}
	return string(data), nil
}

// Put atomically writes content: tmp file → fsync → rename.
func (f *FS) Put(_ context.Context, id, content string) error {
	p, err := f.pathFor(id)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".jera-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the content file of a todo.
func (f *FS) Delete(_ context.Context, id string) error {
	p, err := f.pathFor(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage: delete %s: %w", id, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", id, err)
	}
	return nil
}

// List returns metadata for every content file in the root directory.
func (f *FS) List(_ context.Context) ([]models.ContentMeta, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.ContentMeta
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := f.IDFromPath(filepath.Join(f.root, e.Name()))
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		out = append(out, models.ContentMeta{
			ID:        id,
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

var _ Provider = (*FS)(nil)
