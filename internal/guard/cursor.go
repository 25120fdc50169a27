package guard

import (
	"sync/atomic"

	"github.com/Iron-Ham/conclist/internal/errors"
)

// Cursor traverses a Sequence while holding its read lock. It observes a
// consistent snapshot: no writer can run between Open and Close.
//
// A Cursor is not safe for concurrent use, but it may be closed from a
// goroutine other than the one that opened it.
type Cursor[T any] struct {
	seq    *Sequence[T]
	owner  Owner
	index  int
	closed atomic.Bool
}

// Next advances to the next element. It returns false at the end of the
// sequence or once the cursor is closed.
func (c *Cursor[T]) Next() bool {
	if c.closed.Load() {
		return false
	}
	if c.index < len(c.seq.items) {
		c.index++
	}
	return c.index < len(c.seq.items)
}

// Current returns the element the cursor is positioned on.
// It fails with errors.ErrCursorPosition before the first Next, after Next
// returned false, or after Close.
func (c *Cursor[T]) Current() (T, error) {
	var zero T
	if c.closed.Load() || c.index < 0 || c.index >= len(c.seq.items) {
		return zero, errors.ErrCursorPosition
	}
	return c.seq.items[c.index], nil
}

// Reset rewinds the cursor to before the first element.
func (c *Cursor[T]) Reset() {
	if !c.closed.Load() {
		c.index = -1
	}
}

// Close releases the read lock. Only the first call has an effect.
func (c *Cursor[T]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.seq.mu.RUnlock(c.owner)
	return nil
}
