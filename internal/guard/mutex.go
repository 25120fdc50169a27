// Package guard pairs a slice with a reader-writer lock and enforces the
// locking discipline every collection in conclist relies on: all reads under
// the read lock, all writes under the write lock, no recursive acquisition.
package guard

import (
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/conclist/internal/errors"
	"github.com/petermattis/goid"
)

// Lock modes reported in errors.LockError.
const (
	ModeRead  = "read"
	ModeWrite = "write"
)

// goroutineID is replaced in tests to simulate a runtime goid cannot read.
var goroutineID = goid.Get

// Owner identifies the goroutine that acquired a read lock. It is returned by
// RLock and must be handed back to RUnlock, which lets a read lock be
// released from a goroutine other than the one that acquired it.
type Owner int64

// RWMutex is a sync.RWMutex that refuses recursive acquisition.
//
// A goroutine that already holds the mutex in either mode and tries to
// acquire it again panics with *errors.LockError instead of deadlocking.
// Readers are concurrent, writers exclusive; fairness is sync.RWMutex's.
//
// Detection needs a goroutine id. If the runtime does not yield one (goid
// reports 0) the mutex still locks correctly but does not detect recursion.
//
// The zero value is an unlocked mutex.
type RWMutex struct {
	mu      sync.RWMutex
	writer  atomic.Int64 // goroutine id of the writer, 0 when none or unknown
	readers sync.Map     // goroutine id -> struct{}
}

// RLock acquires the read lock.
func (m *RWMutex) RLock() Owner {
	id := goroutineID()
	m.checkRecursion(id, ModeRead)
	m.mu.RLock()
	if id != 0 {
		m.readers.Store(id, struct{}{})
	}
	return Owner(id)
}

// RUnlock releases a read lock acquired by owner.
func (m *RWMutex) RUnlock(owner Owner) {
	if owner != 0 {
		m.readers.Delete(int64(owner))
	}
	m.mu.RUnlock()
}

// Lock acquires the write lock.
func (m *RWMutex) Lock() {
	id := goroutineID()
	m.checkRecursion(id, ModeWrite)
	m.mu.Lock()
	m.writer.Store(id)
}

// Unlock releases the write lock.
func (m *RWMutex) Unlock() {
	m.writer.Store(0)
	m.mu.Unlock()
}

func (m *RWMutex) checkRecursion(id int64, mode string) {
	if id == 0 {
		return
	}
	if m.writer.Load() == id {
		panic(errors.NewLockError(mode, ModeWrite))
	}
	if _, ok := m.readers.Load(id); ok {
		panic(errors.NewLockError(mode, ModeRead))
	}
}
