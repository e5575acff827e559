// Package order implements the drag-reorder contract: moving one element of
// a sequence to a new position is always a permutation of the input.
package order

import (
	"fmt"

	"github.com/starford/jera/internal/apperr"
)

type kind int

const (
	byIndex kind = iota
	byID
)

// Move identifies a reorder either by a pair of positions or by a pair of ids.
// Build one with ByIndex or ByID.
type Move struct {
	kind     kind
	from, to int
	fromID   string
	toID     string
}

// ByIndex moves the element at position from to position to.
func ByIndex(from, to int) Move {
	return Move{kind: byIndex, from: from, to: to}
}

// ByID moves the element with id from to the position currently held by id to.
func ByID(from, to string) Move {
	return Move{kind: byID, fromID: from, toID: to}
}

func (m Move) String() string {
	if m.kind == byID {
		return fmt.Sprintf("id %s -> %s", m.fromID, m.toID)
	}
	return fmt.Sprintf("index %d -> %d", m.from, m.to)
}

// Resolve turns m into a positional pair over ids.
func (m Move) Resolve(ids []string) (int, int, error) {
	if m.kind == byIndex {
		if err := checkBounds(len(ids), m.from, m.to); err != nil {
			return 0, 0, err
		}
		return m.from, m.to, nil
	}
	from, to := indexOf(ids, m.fromID), indexOf(ids, m.toID)
	if from < 0 {
		return 0, 0, fmt.Errorf("order: id %q: %w", m.fromID, apperr.ErrNotFound)
	}
	if to < 0 {
		return 0, 0, fmt.Errorf("order: id %q: %w", m.toID, apperr.ErrNotFound)
	}
	return from, to, nil
}

// Apply returns a copy of s with the element at from moved to to, shifting
// the elements in between. s itself is never modified.
func Apply[T any](s []T, from, to int) ([]T, error) {
	if err := checkBounds(len(s), from, to); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(s))
	out = append(out, s[:from]...)
	out = append(out, s[from+1:]...)
	moved := s[from]
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, nil
}

// IsPermutation reports whether a and b hold the same multiset of keys.
func IsPermutation[T any, K comparable](a, b []T, key func(T) K) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[K]int, len(a))
	for _, v := range a {
		counts[key(v)]++
	}
	for _, v := range b {
		k := key(v)
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}

func checkBounds(n, from, to int) error {
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("order: move %d -> %d out of range [0,%d): %w", from, to, n, apperr.ErrInvalid)
	}
	return nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
