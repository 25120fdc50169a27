package collection

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/conclist/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_Basics(t *testing.T) {
	l := New[string](WithCapacity(4))

	assert.Equal(t, 0, l.Count())
	l.Add("a")
	l.AddRange("b", "c")
	assert.Equal(t, 3, l.Count())
	assert.Equal(t, []string{"a", "b", "c"}, l.Snapshot())

	v, err := l.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	require.NoError(t, l.Set(1, "B"))
	assert.True(t, l.Contains("B"))
	assert.False(t, l.Contains("b"))
	assert.Equal(t, 2, l.IndexOf("c"))
	assert.Equal(t, -1, l.IndexOf("zzz"))

	l.Clear()
	assert.Equal(t, 0, l.Count())
}

func TestList_From(t *testing.T) {
	src := []int{1, 2, 3}
	l := From(src)
	src[0] = 100

	assert.Equal(t, []int{1, 2, 3}, l.Snapshot())
}

func TestList_NewFunc(t *testing.T) {
	l := NewFunc(strings.EqualFold)
	l.AddRange("Alpha", "Beta")

	assert.True(t, l.Contains("alpha"))
	assert.Equal(t, 1, l.IndexOf("BETA"))
	assert.True(t, l.Remove("ALPHA"))
	assert.Equal(t, []string{"Beta"}, l.Snapshot())
}

func TestList_InsertOrdering(t *testing.T) {
	l := New[string]()
	l.Add("A")
	l.Add("B")
	require.NoError(t, l.Insert(1, "C"))
	assert.Equal(t, []string{"A", "C", "B"}, l.Snapshot())

	require.NoError(t, l.Insert(3, "D"), "insert at Count appends")
	require.NoError(t, l.Insert(0, "Z"))
	assert.Equal(t, []string{"Z", "A", "C", "B", "D"}, l.Snapshot())
}

func TestList_RangeErrors(t *testing.T) {
	l := From([]int{1, 2, 3})

	tests := []struct {
		name string
		fn   func() error
	}{
		{"get negative", func() error { _, err := l.Get(-1); return err }},
		{"get at count", func() error { _, err := l.Get(3); return err }},
		{"set at count", func() error { return l.Set(3, 0) }},
		{"insert past count", func() error { return l.Insert(4, 0) }},
		{"insert negative", func() error { return l.Insert(-1, 0) }},
		{"remove at count", func() error { return l.RemoveAt(3) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrOutOfRange)

			var rangeErr *errors.RangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Equal(t, 3, rangeErr.Count)
		})
	}

	assert.Equal(t, []int{1, 2, 3}, l.Snapshot(), "failed operations must not mutate")
}

func TestList_Remove(t *testing.T) {
	l := From([]string{"x", "y", "x"})

	assert.False(t, l.Remove("absent"))
	assert.Equal(t, 3, l.Count())

	assert.True(t, l.Remove("x"))
	assert.Equal(t, []string{"y", "x"}, l.Snapshot(), "only the first occurrence is removed")

	require.NoError(t, l.RemoveAt(1))
	assert.Equal(t, []string{"y"}, l.Snapshot())
}

func TestList_CopyTo(t *testing.T) {
	l := From([]int{1, 2, 3})

	t.Run("fits at offset", func(t *testing.T) {
		dst := make([]int, 5)
		require.NoError(t, l.CopyTo(dst, 2))
		assert.Equal(t, []int{0, 0, 1, 2, 3}, dst)
	})

	t.Run("offset out of range", func(t *testing.T) {
		dst := make([]int, 5)
		err := l.CopyTo(dst, 6)
		assert.ErrorIs(t, err, errors.ErrOutOfRange)
		err = l.CopyTo(dst, -1)
		assert.ErrorIs(t, err, errors.ErrOutOfRange)
		assert.Equal(t, make([]int, 5), dst)
	})

	t.Run("insufficient capacity", func(t *testing.T) {
		dst := make([]int, 4)
		err := l.CopyTo(dst, 2)
		assert.ErrorIs(t, err, errors.ErrInsufficientCapacity)
		assert.NotErrorIs(t, err, errors.ErrOutOfRange)
		assert.Equal(t, make([]int, 4), dst)
	})

	t.Run("empty list at end offset", func(t *testing.T) {
		dst := make([]int, 2)
		assert.NoError(t, New[int]().CopyTo(dst, 2))
	})
}

func TestList_AddSeq(t *testing.T) {
	l := From([]int{1, 2})
	l.AddSeq(slices.Values([]int{3, 4}))
	assert.Equal(t, []int{1, 2, 3, 4}, l.Snapshot())

	// The source may read the destination list.
	l.AddSeq(l.All())
	assert.Equal(t, []int{1, 2, 3, 4, 1, 2, 3, 4}, l.Snapshot())
}

func TestList_Iterate(t *testing.T) {
	l := From([]string{"a", "b"})

	c := l.Iterate()
	var got []string
	for c.Next() {
		v, err := c.Current()
		require.NoError(t, err)
		got = append(got, v)
	}
	require.NoError(t, c.Close())
	assert.Equal(t, []string{"a", "b"}, got)

	got = got[:0]
	for v := range l.All() {
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestList_MutationDuringIterationPanics(t *testing.T) {
	l := From([]int{1, 2, 3})

	assert.Panics(t, func() {
		for range l.All() {
			l.Add(4)
		}
	})
	assert.Equal(t, 3, l.Count(), "the aborted traversal must release its lock")
}

func TestList_ConcurrentAdds(t *testing.T) {
	l := New[int]()

	const goroutines, perGoroutine = 50, 200
	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Go(func() {
			for i := range perGoroutine {
				l.Add(g*perGoroutine + i)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, l.Count())
}

func TestList_ConcurrentAddAndIterate(t *testing.T) {
	l := New[string]()

	const writers, perWriter, readers = 100, 5, 50

	var writersWG, readersWG sync.WaitGroup
	done := make(chan struct{})

	for range readers {
		readersWG.Go(func() {
			last := 0
			for {
				select {
				case <-done:
					return
				default:
				}
				seen := make(map[string]bool)
				for v := range l.All() {
					if seen[v] {
						t.Errorf("duplicate %q in traversal", v)
					}
					seen[v] = true
				}
				if len(seen) < last {
					t.Errorf("traversal shrank from %d to %d", last, len(seen))
				}
				last = len(seen)
			}
		})
	}

	for w := range writers {
		writersWG.Go(func() {
			for j := range perWriter {
				l.Add(fmt.Sprintf("%d_%d", w, j))
			}
		})
	}

	writersWG.Wait()
	close(done)
	readersWG.Wait()

	require.Equal(t, writers*perWriter, l.Count())
	seen := make(map[string]int)
	for _, v := range l.Snapshot() {
		seen[v]++
	}
	for w := range writers {
		for j := range perWriter {
			assert.Equal(t, 1, seen[fmt.Sprintf("%d_%d", w, j)])
		}
	}
}
