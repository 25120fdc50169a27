package collection

import (
	"iter"
	"slices"

	"github.com/Iron-Ham/conclist/internal/errors"
	"github.com/Iron-Ham/conclist/internal/guard"
	"github.com/Iron-Ham/conclist/internal/logging"
)

// base holds the guarded sequence and the read surface shared by List and
// ObservableList.
type base[T any] struct {
	seq    *guard.Sequence[T]
	equal  func(a, b T) bool
	logger *logging.Logger
}

func newBase[T any](equal func(a, b T) bool, o options, items []T) base[T] {
	return base[T]{
		seq:    guard.NewSequence(o.capacity, items...),
		equal:  equal,
		logger: o.logger,
	}
}

func equalComparable[T comparable](a, b T) bool { return a == b }

// Count returns the number of elements.
func (b *base[T]) Count() int {
	return b.seq.Len()
}

// Get returns the element at index.
func (b *base[T]) Get(index int) (T, error) {
	return guard.WithReadLock(b.seq, func(items []T) (T, error) {
		if index < 0 || index >= len(items) {
			var zero T
			return zero, errors.NewRangeError("get", index, len(items))
		}
		return items[index], nil
	})
}

// Contains reports whether an element equal to item is present.
func (b *base[T]) Contains(item T) bool {
	return b.IndexOf(item) >= 0
}

// IndexOf returns the position of the first element equal to item, or -1.
func (b *base[T]) IndexOf(item T) int {
	idx, _ := guard.WithReadLock(b.seq, func(items []T) (int, error) {
		return b.indexIn(items, item), nil
	})
	return idx
}

func (b *base[T]) indexIn(items []T, item T) int {
	return slices.IndexFunc(items, func(v T) bool { return b.equal(v, item) })
}

// CopyTo copies every element into dst starting at offset. Nothing is copied
// when offset lies outside [0, len(dst)] or when dst has fewer than Count
// slots after offset.
func (b *base[T]) CopyTo(dst []T, offset int) error {
	_, err := guard.WithReadLock(b.seq, func(items []T) (struct{}, error) {
		if offset < 0 || offset > len(dst) {
			return struct{}{}, errors.NewRangeError("copy_to", offset, len(dst))
		}
		if len(dst)-offset < len(items) {
			return struct{}{}, errors.NewRangeError("copy_to", offset, len(dst)).
				WithCause(errors.ErrInsufficientCapacity)
		}
		copy(dst[offset:], items)
		return struct{}{}, nil
	})
	return err
}

// Iterate opens a cursor holding the read lock. The caller must Close it;
// writers block until then.
func (b *base[T]) Iterate() *guard.Cursor[T] {
	return b.seq.Open()
}

// All returns a range-over-func iterator backed by a cursor. The loop body
// must not mutate the list.
func (b *base[T]) All() iter.Seq[T] {
	return b.seq.All()
}

// Snapshot returns a copy of the elements taken under a single read lock.
// Unlike Iterate, it does not block writers while the copy is consumed.
func (b *base[T]) Snapshot() []T {
	out, _ := guard.WithReadLock(b.seq, func(items []T) ([]T, error) {
		return slices.Clone(items), nil
	})
	return out
}
