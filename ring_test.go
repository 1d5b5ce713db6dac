package ringbuffer_test

import (
	"bytes"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rb "github.com/sushydev/ringbuffer"
)

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

func TestNewIsEmpty(t *testing.T) {
	buf := rb.New[int](8)

	assert.Equal(t, 8, buf.Cap())
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 8, buf.Free())
	assert.True(t, buf.IsEmpty())
	assert.False(t, buf.IsFull())
	assert.Equal(t, 0, buf.Head())
	assert.Equal(t, 0, buf.Tail())
}

func TestNewInvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { rb.New[int](0) })
	assert.Panics(t, func() { rb.New[int](-1) })
	assert.Panics(t, func() { rb.NewView[int](nil) })
}

func TestEnqueueShorterThanCapacity(t *testing.T) {
	for capacity := 1; capacity <= 9; capacity++ {
		for n := 0; n < capacity; n++ {
			buf := rb.New[int](capacity)
			buf.Enqueue(seq(1, n))

			require.Equal(t, n, buf.Len())
			require.Equal(t, capacity-n, buf.Free())
			for i := 0; i < n; i++ {
				require.Equal(t, i+1, buf.At(i))
			}
		}
	}
}

func TestEnqueueBeyondCapacityKeepsNewest(t *testing.T) {
	tests := []struct {
		name   string
		cap    int
		chunks [][]int
		want   []int
	}{
		{"overflow by three", 8, [][]int{seq(1, 8), {9, 10, 11}}, seq(4, 11)},
		{"single oversized write", 4, [][]int{seq(1, 10)}, seq(7, 10)},
		{"exactly capacity", 4, [][]int{{1, 2}, seq(3, 6)}, seq(3, 6)},
		{"many small writes", 5, [][]int{{1, 2}, {3, 4}, {5, 6}, {7}}, seq(3, 7)},
		{"capacity one", 1, [][]int{{1}, {2}, {3, 4}}, []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := rb.New[int](tt.cap)
			for _, c := range tt.chunks {
				buf.Enqueue(c)
			}

			assert.Equal(t, tt.cap, buf.Len())
			assert.True(t, buf.IsFull())
			assert.Equal(t, tt.want, buf.Snapshot())
		})
	}
}

func TestEnqueueEmptyIsNoop(t *testing.T) {
	buf := rb.New[int](4)
	buf.Enqueue([]int{1, 2})
	buf.Enqueue(nil)
	buf.Enqueue([]int{})

	assert.Equal(t, []int{1, 2}, buf.Snapshot())
	assert.Equal(t, 1, buf.Tail())
}

func TestSingleElementIsNotEmpty(t *testing.T) {
	buf := rb.New[int](4)
	buf.Enqueue([]int{7})

	assert.Equal(t, buf.Head(), buf.Tail())
	assert.Equal(t, 1, buf.Len())
	assert.False(t, buf.IsEmpty())
	assert.Equal(t, 7, buf.At(0))

	out := buf.DequeueAll()
	assert.Equal(t, []int{7}, out)
	assert.True(t, buf.IsEmpty())
	assert.Equal(t, buf.Head(), buf.Tail())
}

func TestHeadAndTailWrap(t *testing.T) {
	buf := rb.New[int](4)
	buf.Enqueue([]int{1, 2, 3})
	require.NoError(t, buf.Remove(2))
	buf.Enqueue([]int{4, 5, 6})

	assert.Equal(t, 2, buf.Head())
	assert.Equal(t, 1, buf.Tail())
	assert.Equal(t, []int{3, 4, 5, 6}, buf.Snapshot())
}

func TestSafeEnqueueRejectsWithoutMutation(t *testing.T) {
	buf := rb.New[int](8)
	require.NoError(t, buf.SafeEnqueue(seq(1, 6)))

	err := buf.SafeEnqueue([]int{7, 8, 9})
	require.ErrorIs(t, err, rb.ErrWouldOverwrite)

	assert.Equal(t, 6, buf.Len())
	assert.Equal(t, seq(1, 6), buf.Snapshot())
	assert.Equal(t, 0, buf.Head())

	require.NoError(t, buf.SafeEnqueue([]int{7, 8}))
	assert.True(t, buf.IsFull())

	err = buf.SafeEnqueue([]int{9})
	require.ErrorIs(t, err, rb.ErrWouldOverwrite)
	assert.Equal(t, seq(1, 8), buf.Snapshot())

	assert.NoError(t, buf.SafeEnqueue(nil))
}

func TestDequeueAllAcrossWrites(t *testing.T) {
	buf := rb.New[int](20)
	buf.Enqueue(seq(1, 5))
	buf.Enqueue(seq(1, 8))
	buf.Enqueue(seq(1, 3))

	out := buf.DequeueAll()
	assert.Equal(t, []int{1, 2, 3, 4, 5, 1, 2, 3, 4, 5, 6, 7, 8, 1, 2, 3}, out)
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, []int{}, buf.DequeueAll())
}

func TestDequeue(t *testing.T) {
	buf := rb.New[int](6)
	buf.Enqueue(seq(1, 6))
	require.NoError(t, buf.Remove(4))
	buf.Enqueue([]int{7, 8, 9})

	out, err := buf.Dequeue(3)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 7}, out)
	assert.Equal(t, []int{8, 9}, buf.Snapshot())

	out, err = buf.Dequeue(0)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = buf.Dequeue(-3)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = buf.Dequeue(3)
	require.ErrorIs(t, err, rb.ErrInsufficientData)
	assert.Equal(t, []int{8, 9}, buf.Snapshot(), "failed dequeue must not consume")
}

func TestDequeueResultIsIndependent(t *testing.T) {
	buf := rb.New[int](3)
	buf.Enqueue([]int{1, 2, 3})

	out, err := buf.Dequeue(2)
	require.NoError(t, err)
	buf.Enqueue([]int{4, 5})

	assert.Equal(t, []int{1, 2}, out)
}

func TestDequeueInto(t *testing.T) {
	buf := rb.New[byte](4)
	buf.Enqueue([]byte("abcdef"))

	p := make([]byte, 3)
	assert.Equal(t, 3, buf.DequeueInto(p))
	assert.Equal(t, "cde", string(p))

	p = make([]byte, 3)
	assert.Equal(t, 1, buf.DequeueInto(p))
	assert.Equal(t, byte('f'), p[0])
	assert.Equal(t, 0, buf.DequeueInto(p))
}

func TestRemove(t *testing.T) {
	buf := rb.New[int](8)
	buf.Enqueue(seq(1, 8))

	require.NoError(t, buf.Remove(3))
	assert.Equal(t, 5, buf.Len())
	assert.Equal(t, 4, buf.At(0))

	require.NoError(t, buf.Remove(0))
	require.NoError(t, buf.Remove(-1))
	assert.Equal(t, 5, buf.Len())

	require.ErrorIs(t, buf.Remove(6), rb.ErrInsufficientData)
	assert.Equal(t, 5, buf.Len())
}

func TestResetBehavesLikeFresh(t *testing.T) {
	buf := rb.New[int](5)
	buf.Enqueue(seq(1, 7))
	require.NoError(t, buf.Remove(1))

	buf.Reset()
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 5, buf.Free())

	buf.Reset()
	assert.Equal(t, 0, buf.Len())

	fresh := rb.New[int](5)
	for _, b := range []*rb.RingBuffer[int]{buf, fresh} {
		b.Enqueue([]int{10, 20, 30})
	}
	assert.Equal(t, fresh.Head(), buf.Head())
	assert.Equal(t, fresh.Tail(), buf.Tail())
	assert.Equal(t, fresh.Snapshot(), buf.Snapshot())
}

func TestResetKeepsPhysicalSlots(t *testing.T) {
	backing := []int{0, 0, 0}
	buf := rb.NewView(backing)
	buf.Enqueue([]int{1, 2, 3})
	buf.Reset()

	assert.Equal(t, []int{1, 2, 3}, backing)
}

func TestAtAndSet(t *testing.T) {
	buf := rb.New[string](3)
	buf.Enqueue([]string{"a", "b", "c", "d"})

	assert.Equal(t, "b", buf.At(0))
	assert.Equal(t, "d", buf.At(2))

	buf.Set(1, "C")
	assert.Equal(t, []string{"b", "C", "d"}, buf.Snapshot())
}

func TestIndexOutOfRangePanics(t *testing.T) {
	buf := rb.New[int](4)
	buf.Enqueue([]int{1, 2})

	for _, i := range []int{-1, 2, 3, 4} {
		assert.PanicsWithError(t, (&rb.IndexError{Lo: i, Hi: i + 1, Len: 2}).Error(), func() { buf.At(i) })
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, rb.ErrIndexOutOfRange)
	}()
	buf.Set(5, 0)
}

func TestSliceWritesThrough(t *testing.T) {
	buf := rb.New[int](6)
	buf.Enqueue(seq(1, 6))
	require.NoError(t, buf.Remove(3))
	buf.Enqueue([]int{7, 8, 9}) // 4 5 6 7 8 9, physically wrapped

	w := buf.Slice(1, 5)
	assert.Equal(t, 4, w.Len())
	assert.Equal(t, []int{5, 6, 7, 8}, w.Copy())
	assert.Equal(t, []int{5, 6, 7, 8}, slices.Collect(w.Values()))

	w.Set(2, 70)
	assert.Equal(t, 70, buf.At(3))

	assert.Panics(t, func() { w.At(4) })
	assert.Panics(t, func() { buf.Slice(2, 7) })
	assert.Panics(t, func() { buf.Slice(3, 2) })
	assert.Equal(t, 0, buf.Slice(6, 6).Len())
}

func TestSetRange(t *testing.T) {
	buf := rb.New[int](8)
	buf.Enqueue(seq(1, 8))
	require.NoError(t, buf.Remove(5))
	buf.Enqueue(seq(9, 13)) // 6..13, wrapped

	head, tail := buf.Head(), buf.Tail()
	buf.SetRange(2, 6, []int{-1, -2, -3, -4})

	assert.Equal(t, []int{-1, -2, -3, -4}, buf.Slice(2, 6).Copy())
	assert.Equal(t, []int{6, 7, -1, -2, -3, -4, 12, 13}, buf.Snapshot())
	assert.Equal(t, head, buf.Head())
	assert.Equal(t, tail, buf.Tail())
	assert.Equal(t, 8, buf.Len())

	assert.Panics(t, func() { buf.SetRange(0, 2, []int{1}) })
	assert.Panics(t, func() { buf.SetRange(7, 9, []int{1, 2}) })
}

func TestWindowCopyFromShortSource(t *testing.T) {
	buf := rb.New[int](4)
	buf.Enqueue([]int{1, 2, 3, 4})

	w := buf.Slice(0, 4)
	assert.Equal(t, 2, w.CopyFrom([]int{9, 9}))
	assert.Equal(t, []int{9, 9, 3, 4}, buf.Snapshot())
}

func TestIterator(t *testing.T) {
	buf := rb.New[int](4)
	buf.Enqueue(seq(1, 6))

	it := buf.Iter()
	assert.Equal(t, 4, it.Remaining())

	var got []int
	for v, ok := it.Next(); ok; v, ok = it.Next() {
		got = append(got, v)
	}
	assert.Equal(t, seq(3, 6), got)
	_, ok := it.Next()
	assert.False(t, ok)

	it.Reset()
	v, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestIteratorSnapshotsLength(t *testing.T) {
	buf := rb.New[int](8)
	buf.Enqueue([]int{1, 2, 3})

	it := buf.Iter()
	buf.Enqueue([]int{4, 5})

	n := 0
	for _, ok := it.Next(); ok; _, ok = it.Next() {
		n++
	}
	assert.Equal(t, 3, n)
}

func TestRangeOverFunc(t *testing.T) {
	buf := rb.New[int](4)
	buf.Enqueue(seq(1, 5))

	assert.Equal(t, seq(2, 5), slices.Collect(buf.Values()))
	assert.Equal(t, seq(2, 5), slices.Collect(buf.Values()), "each range restarts")

	for i, v := range buf.All() {
		assert.Equal(t, buf.At(i), v)
		if i == 1 {
			break
		}
	}

	empty := rb.New[int](2)
	assert.Empty(t, slices.Collect(empty.Values()))
}

func TestViewAliasesBacking(t *testing.T) {
	backing := make([]int, 4)
	buf := rb.NewView(backing)
	alias := buf

	buf.Enqueue([]int{1, 2, 3})
	buf.Enqueue([]int{4, 5})
	assert.Equal(t, []int{5, 2, 3, 4}, backing)
	assert.Equal(t, 2, alias.At(0))
}

func TestCleanUp(t *testing.T) {
	backing := make([]int, 4)
	released := 0
	buf := rb.NewView(backing, rb.WithRelease(func() error {
		released++
		return nil
	}))
	buf.Enqueue([]int{1, 2})

	require.NoError(t, buf.CleanUp())
	assert.Equal(t, []int{0, 0, 0, 0}, backing, "every slot is zeroed, not only used ones")
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, buf.Cap())

	assert.ErrorIs(t, buf.CleanUp(), rb.ErrReleased)
	assert.Equal(t, 1, released)
	assert.PanicsWithError(t, rb.ErrReleased.Error(), func() { buf.Enqueue([]int{1}) })
}

func TestCleanUpReleaseError(t *testing.T) {
	buf := rb.New[int](2, rb.WithRelease(func() error { return assert.AnError }))

	err := buf.CleanUp()
	assert.ErrorIs(t, err, assert.AnError)
}

func TestEvictionIsLogged(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	buf := rb.New[int](4, rb.WithLogger(logger))
	buf.Enqueue([]int{1, 2, 3})
	assert.Empty(t, out.String())

	buf.Enqueue([]int{4, 5, 6})
	assert.Contains(t, out.String(), "evicted oldest elements")
	assert.Contains(t, out.String(), "evicted=2")
}
