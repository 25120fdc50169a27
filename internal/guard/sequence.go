package guard

import "iter"

// Sequence is an ordered slice owned by a single RWMutex. The slice is never
// exposed outside a lock scope; callbacks receive it only for the duration
// of the call and must not retain it.
type Sequence[T any] struct {
	mu    RWMutex
	items []T
}

// NewSequence creates a Sequence holding a copy of items, with room for at
// least capacity elements.
func NewSequence[T any](capacity int, items ...T) *Sequence[T] {
	capacity = max(capacity, len(items))
	s := &Sequence[T]{items: make([]T, 0, capacity)}
	s.items = append(s.items, items...)
	return s
}

// WithReadLock runs fn with the read lock held and returns its result.
// The lock is released on every exit path, including a panic in fn.
func WithReadLock[T, R any](s *Sequence[T], fn func(items []T) (R, error)) (R, error) {
	owner := s.mu.RLock()
	defer s.mu.RUnlock(owner)
	return fn(s.items)
}

// WithWriteLock runs fn with the write lock held and returns its result.
// fn may replace the slice through the pointer it receives.
func WithWriteLock[T, R any](s *Sequence[T], fn func(items *[]T) (R, error)) (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.items)
}

// Read runs fn with the read lock held.
func (s *Sequence[T]) Read(fn func(items []T)) {
	owner := s.mu.RLock()
	defer s.mu.RUnlock(owner)
	fn(s.items)
}

// Write runs fn with the write lock held.
func (s *Sequence[T]) Write(fn func(items *[]T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.items)
}

// Len returns the number of elements.
func (s *Sequence[T]) Len() int {
	owner := s.mu.RLock()
	defer s.mu.RUnlock(owner)
	return len(s.items)
}

// Open acquires the read lock and returns a cursor over the sequence. The
// lock is held until the cursor is closed, so writers block in the meantime.
func (s *Sequence[T]) Open() *Cursor[T] {
	owner := s.mu.RLock()
	return &Cursor[T]{seq: s, owner: owner, index: -1}
}

// All returns an iterator over the elements for use with range. The
// underlying cursor is closed when the loop ends, breaks, or panics.
// The loop body must not mutate the sequence.
func (s *Sequence[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		c := s.Open()
		defer func() { _ = c.Close() }()
		for c.Next() {
			if !yield(c.seq.items[c.index]) {
				return
			}
		}
	}
}
