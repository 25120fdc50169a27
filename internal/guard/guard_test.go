package guard

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/conclist/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recoverLockError runs fn and returns the *errors.LockError it panicked
// with, or nil if it did not panic.
func recoverLockError(t *testing.T, fn func()) (lockErr *errors.LockError) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := errors.FromPanic(r)
		require.True(t, errors.As(err, &lockErr), "unexpected panic value %v", r)
	}()
	fn()
	return nil
}

// assertReleased fails if the calling goroutine still holds s: a held lock
// makes the write below panic with a recursion error.
func assertReleased[T any](t *testing.T, s *Sequence[T], msgAndArgs ...any) {
	t.Helper()
	assert.NotPanics(t, func() { s.Write(func(*[]T) {}) }, msgAndArgs...)
}

func TestNewSequence(t *testing.T) {
	s := NewSequence(0, "a", "b")
	assert.Equal(t, 2, s.Len())

	src := []int{1, 2, 3}
	s2 := NewSequence(10, src...)
	src[0] = 99
	got, err := WithReadLock(s2, func(items []int) (int, error) {
		return items[0], nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got, "sequence must own a copy of its initial items")
}

func TestWithWriteLock(t *testing.T) {
	s := NewSequence[int](0)

	n, err := WithWriteLock(s, func(items *[]int) (int, error) {
		*items = append(*items, 1, 2, 3)
		return len(*items), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, s.Len())

	_, err = WithWriteLock(s, func(items *[]int) (struct{}, error) {
		return struct{}{}, errors.ErrOutOfRange
	})
	assert.ErrorIs(t, err, errors.ErrOutOfRange)
}

func TestRecursionPanics(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(s *Sequence[int])
		wantMode string
		wantHeld string
	}{
		{
			name:     "read inside read",
			fn:       func(s *Sequence[int]) { s.Read(func([]int) { s.Len() }) },
			wantMode: ModeRead,
			wantHeld: ModeRead,
		},
		{
			name:     "write inside read",
			fn:       func(s *Sequence[int]) { s.Read(func([]int) { s.Write(func(*[]int) {}) }) },
			wantMode: ModeWrite,
			wantHeld: ModeRead,
		},
		{
			name:     "read inside write",
			fn:       func(s *Sequence[int]) { s.Write(func(*[]int) { s.Len() }) },
			wantMode: ModeRead,
			wantHeld: ModeWrite,
		},
		{
			name:     "write inside write",
			fn:       func(s *Sequence[int]) { s.Write(func(*[]int) { s.Write(func(*[]int) {}) }) },
			wantMode: ModeWrite,
			wantHeld: ModeWrite,
		},
		{
			name: "write while cursor open",
			fn: func(s *Sequence[int]) {
				c := s.Open()
				defer func() { _ = c.Close() }()
				s.Write(func(*[]int) {})
			},
			wantMode: ModeWrite,
			wantHeld: ModeRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSequence(0, 1, 2, 3)

			lockErr := recoverLockError(t, func() { tt.fn(s) })
			require.NotNil(t, lockErr, "expected a lock recursion panic")
			assert.Equal(t, tt.wantMode, lockErr.Mode)
			assert.Equal(t, tt.wantHeld, lockErr.Held)
			assert.ErrorIs(t, lockErr, errors.ErrLockRecursion)
			assert.True(t, errors.IsProgrammingError(lockErr))

			// The outer scope released its lock while unwinding.
			assertReleased(t, s)
			done := make(chan struct{})
			go func() {
				s.Write(func(items *[]int) { *items = append(*items, 4) })
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("lock was not released after panic")
			}
		})
	}
}

func TestGoroutineIDs(t *testing.T) {
	main := goroutineID()
	require.NotZero(t, main, "goid cannot read this runtime's goroutine id")

	const workers = 4
	ids := make([]int64, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Go(func() { ids[i] = goroutineID() })
	}
	wg.Wait()

	seen := map[int64]bool{main: true}
	for _, id := range ids {
		assert.NotZero(t, id)
		assert.False(t, seen[id], "goroutine id %d reused", id)
		seen[id] = true
	}
}

func TestFirstAcquisitionSucceeds(t *testing.T) {
	s := NewSequence(0, 1, 2)

	assert.NotPanics(t, func() {
		s.Write(func(items *[]int) { *items = append(*items, 3) })
		s.Read(func(items []int) { assert.Len(t, items, 4) })
	})
	c := s.Open()
	require.NoError(t, c.Close())
	assertReleased(t, s)
}

func TestUnknownGoroutineIDDisablesDetection(t *testing.T) {
	saved := goroutineID
	goroutineID = func() int64 { return 0 }
	t.Cleanup(func() { goroutineID = saved })

	s := NewSequence(0, 1, 2)

	// Without ids every goroutine looks alike, so nothing may be reported
	// as recursion and concurrent readers must not disturb each other.
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			c := s.Open()
			defer func() { _ = c.Close() }()
			for c.Next() {
			}
		})
	}
	wg.Wait()

	assert.NotPanics(t, func() {
		s.Write(func(items *[]int) { *items = append(*items, 3) })
	})
	assert.Equal(t, 4, s.Len())
}

func TestConcurrentReaders(t *testing.T) {
	s := NewSequence(0, 1, 2, 3)

	const readers = 8
	var inside atomic.Int32
	var peak atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for range readers {
		wg.Go(func() {
			s.Read(func([]int) {
				n := inside.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				<-release
				inside.Add(-1)
			})
		})
	}

	require.Eventually(t, func() bool { return peak.Load() == readers },
		2*time.Second, 5*time.Millisecond, "readers should share the lock")
	close(release)
	wg.Wait()
}

func TestCursor(t *testing.T) {
	t.Run("traverses in order", func(t *testing.T) {
		s := NewSequence(0, "a", "b", "c")
		c := s.Open()
		defer func() { _ = c.Close() }()

		var got []string
		for c.Next() {
			v, err := c.Current()
			require.NoError(t, err)
			got = append(got, v)
		}
		assert.Equal(t, []string{"a", "b", "c"}, got)
		assert.False(t, c.Next(), "Next stays false at the end")
	})

	t.Run("current outside elements", func(t *testing.T) {
		s := NewSequence(0, 1)
		c := s.Open()
		defer func() { _ = c.Close() }()

		_, err := c.Current()
		assert.ErrorIs(t, err, errors.ErrCursorPosition, "before first Next")

		require.True(t, c.Next())
		require.False(t, c.Next())
		_, err = c.Current()
		assert.ErrorIs(t, err, errors.ErrCursorPosition, "after end")
	})

	t.Run("empty sequence", func(t *testing.T) {
		c := NewSequence[int](0).Open()
		defer func() { _ = c.Close() }()
		assert.False(t, c.Next())
	})

	t.Run("reset rewinds", func(t *testing.T) {
		s := NewSequence(0, 1, 2)
		c := s.Open()
		defer func() { _ = c.Close() }()

		for c.Next() {
		}
		c.Reset()
		require.True(t, c.Next())
		v, err := c.Current()
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		s := NewSequence(0, 1, 2)
		c := s.Open()
		require.True(t, c.Next())

		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
		assert.False(t, c.Next())
		_, err := c.Current()
		assert.ErrorIs(t, err, errors.ErrCursorPosition)

		// A second release would have panicked in sync.RWMutex.
		s.Write(func(items *[]int) { *items = append(*items, 3) })
		assert.Equal(t, 3, s.Len())
	})

	t.Run("blocks writers until closed", func(t *testing.T) {
		s := NewSequence(0, 1)
		c := s.Open()

		var written atomic.Bool
		done := make(chan struct{})
		go func() {
			s.Write(func(items *[]int) { *items = append(*items, 2) })
			written.Store(true)
			close(done)
		}()

		time.Sleep(50 * time.Millisecond)
		assert.False(t, written.Load(), "writer ran while cursor was open")

		require.NoError(t, c.Close())
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("writer did not proceed after Close")
		}
		assert.Equal(t, 2, s.Len())
	})

	t.Run("closed from another goroutine", func(t *testing.T) {
		s := NewSequence(0, 1)
		c := s.Open()

		done := make(chan struct{})
		go func() {
			_ = c.Close()
			close(done)
		}()
		<-done

		assertReleased(t, s, "ownership released by the closing goroutine")
		s.Write(func(items *[]int) { *items = nil })
		assert.Equal(t, 0, s.Len())
	})
}

func TestAll(t *testing.T) {
	s := NewSequence(0, 1, 2, 3, 4)

	var sum int
	for v := range s.All() {
		sum += v
	}
	assert.Equal(t, 10, sum)

	for v := range s.All() {
		if v == 2 {
			break
		}
	}
	assertReleased(t, s, "break must close the cursor")

	assert.Panics(t, func() {
		for range s.All() {
			panic("boom")
		}
	})
	assertReleased(t, s, "panic must close the cursor")
}

func TestConcurrentWritersAndCursors(t *testing.T) {
	s := NewSequence[int](0)

	const writers, perWriter = 20, 50
	var wg sync.WaitGroup
	for w := range writers {
		wg.Go(func() {
			for i := range perWriter {
				s.Write(func(items *[]int) { *items = append(*items, w*perWriter+i) })
			}
		})
	}
	for range 10 {
		wg.Go(func() {
			for range 20 {
				seen := make(map[int]bool)
				for v := range s.All() {
					if seen[v] {
						t.Errorf("duplicate %d in traversal", v)
					}
					seen[v] = true
				}
			}
		})
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, s.Len())
}
