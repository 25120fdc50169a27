// Package collection provides ordered lists that many goroutines may read
// and write at once. Every operation runs under one reader-writer lock, so
// each one is atomic with respect to the others.
//
// List is the plain variant. ObservableList additionally publishes a change
// event for every structural mutation and forwards field changes reported by
// contained items.
package collection

import (
	"iter"
	"slices"

	"github.com/Iron-Ham/conclist/internal/errors"
	"github.com/Iron-Ham/conclist/internal/guard"
)

// List is a thread-safe ordered collection.
type List[T any] struct {
	base[T]
}

// New creates an empty List comparing elements with ==.
func New[T comparable](opts ...Option) *List[T] {
	return NewFunc(equalComparable[T], opts...)
}

// NewFunc creates an empty List that uses equal for Contains, IndexOf and
// Remove.
func NewFunc[T any](equal func(a, b T) bool, opts ...Option) *List[T] {
	return &List[T]{base: newBase(equal, buildOptions(opts), nil)}
}

// From creates a List holding a copy of items.
func From[T comparable](items []T, opts ...Option) *List[T] {
	return &List[T]{base: newBase(equalComparable[T], buildOptions(opts), items)}
}

// Set replaces the element at index.
func (l *List[T]) Set(index int, item T) error {
	_, err := guard.WithWriteLock(l.seq, func(items *[]T) (struct{}, error) {
		if index < 0 || index >= len(*items) {
			return struct{}{}, errors.NewRangeError("set", index, len(*items))
		}
		(*items)[index] = item
		return struct{}{}, nil
	})
	return err
}

// Add appends item.
func (l *List[T]) Add(item T) {
	l.seq.Write(func(items *[]T) {
		*items = append(*items, item)
	})
}

// AddRange appends items in order as one atomic step.
func (l *List[T]) AddRange(items ...T) {
	if len(items) == 0 {
		return
	}
	l.seq.Write(func(s *[]T) {
		*s = append(*s, items...)
	})
}

// AddSeq drains seq and appends the collected values as one atomic step.
// seq is consumed before the lock is taken, so it may read this list.
func (l *List[T]) AddSeq(seq iter.Seq[T]) {
	l.AddRange(slices.Collect(seq)...)
}

// Insert places item at index, shifting later elements up. index may equal
// Count.
func (l *List[T]) Insert(index int, item T) error {
	_, err := guard.WithWriteLock(l.seq, func(items *[]T) (struct{}, error) {
		if index < 0 || index > len(*items) {
			return struct{}{}, errors.NewRangeError("insert", index, len(*items))
		}
		*items = slices.Insert(*items, index, item)
		return struct{}{}, nil
	})
	return err
}

// RemoveAt deletes the element at index.
func (l *List[T]) RemoveAt(index int) error {
	_, err := guard.WithWriteLock(l.seq, func(items *[]T) (struct{}, error) {
		if index < 0 || index >= len(*items) {
			return struct{}{}, errors.NewRangeError("remove_at", index, len(*items))
		}
		*items = slices.Delete(*items, index, index+1)
		return struct{}{}, nil
	})
	return err
}

// Remove deletes the first element equal to item and reports whether one
// was found.
func (l *List[T]) Remove(item T) bool {
	removed, _ := guard.WithWriteLock(l.seq, func(items *[]T) (bool, error) {
		idx := l.indexIn(*items, item)
		if idx < 0 {
			return false, nil
		}
		*items = slices.Delete(*items, idx, idx+1)
		return true, nil
	})
	return removed
}

// Clear removes every element.
func (l *List[T]) Clear() {
	l.seq.Write(func(items *[]T) {
		clear(*items)
		*items = (*items)[:0]
	})
}
