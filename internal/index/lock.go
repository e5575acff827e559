package index

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/starford/jera/internal/apperr"
)

// Lock is an exclusive advisory lock next to the database file. The store
// keeps its list in memory, so only one process may own a database at a time.
type Lock struct {
	f *os.File
}

// AcquireLock takes the lock at dbPath+".lock" without blocking. It fails
// with apperr.ErrConflict when another process holds it.
func AcquireLock(dbPath string) (*Lock, error) {
	path := dbPath + ".lock"
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("index: open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, fmt.Errorf("index: %s is used by another jera process: %w", dbPath, apperr.ErrConflict)
		}
		return nil, fmt.Errorf("index: acquire lock: %w", err)
	}
	return &Lock{f: f}, nil
}

// Close releases the lock.
func (l *Lock) Close() error {
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	return l.f.Close()
}
