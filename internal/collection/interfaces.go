package collection

import (
	"iter"

	"github.com/Iron-Ham/conclist/internal/guard"
	"github.com/Iron-Ham/conclist/internal/notify"
)

// Reader is the read surface shared by List and ObservableList.
type Reader[T any] interface {
	Count() int
	Get(index int) (T, error)
	Contains(item T) bool
	IndexOf(item T) int
	CopyTo(dst []T, offset int) error
	Iterate() *guard.Cursor[T]
	All() iter.Seq[T]
	Snapshot() []T
}

// Notifying is satisfied by comparable item types that report their own
// field changes. Use it with NewNotifying.
type Notifying interface {
	comparable
	notify.Source
}

var (
	_ Reader[int] = (*List[int])(nil)
	_ Reader[int] = (*ObservableList[int])(nil)
)
