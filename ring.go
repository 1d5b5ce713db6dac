// Package ringbuffer provides a fixed-capacity circular buffer over a
// contiguous []T region, and a synchronised byte stream built on top of it.
//
// RingBuffer is not safe for concurrent use. Callers sharing one across
// goroutines must provide their own mutual exclusion (LockingRingBuffer does
// exactly that for byte streams).
package ringbuffer

import (
	"fmt"
	"iter"
	"log/slog"
)

// RingBuffer is a logical FIFO queue over a fixed physical capacity. Writes
// that do not fit evict the oldest elements.
//
// A *RingBuffer is a handle to its backing region: every copy of the pointer,
// every Window and every Iterator obtained from it alias the same storage,
// and a mutation through any of them is visible through all the others.
type RingBuffer[T any] struct {
	data  []T
	head  int // physical slot of the oldest element
	count int

	logger  *slog.Logger
	release func() error
}

// New allocates a buffer that owns its storage. capacity must be positive.
func New[T any](capacity int, opts ...Option) *RingBuffer[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("ringbuffer: capacity must be positive, got %d", capacity))
	}
	return newRingBuffer(make([]T, capacity), opts)
}

// NewView wraps a caller-owned region without copying it. Every slot of
// backing must already hold a valid T; the capacity is len(backing).
//
// The buffer never frees the region by itself. The owner calls CleanUp at end
// of life, which zeroes the region and runs the WithRelease hook.
func NewView[T any](backing []T, opts ...Option) *RingBuffer[T] {
	if len(backing) == 0 {
		panic("ringbuffer: backing region is empty")
	}
	return newRingBuffer(backing[:len(backing):len(backing)], opts)
}

func newRingBuffer[T any](data []T, opts []Option) *RingBuffer[T] {
	o := buildOptions(opts)
	return &RingBuffer[T]{
		data:    data,
		logger:  o.logger,
		release: o.release,
	}
}

// CleanUp zeroes every physical slot, drops the region and runs the release
// hook. The buffer is unusable afterwards.
func (b *RingBuffer[T]) CleanUp() error {
	if b.data == nil {
		return ErrReleased
	}

	capacity := len(b.data)
	clear(b.data)
	b.data = nil
	b.head = 0
	b.count = 0

	b.logger.Debug("ring buffer cleaned up", "capacity", capacity)

	if b.release == nil {
		return nil
	}
	release := b.release
	b.release = nil
	if err := release(); err != nil {
		return fmt.Errorf("ringbuffer: release backing region: %w", err)
	}
	return nil
}

func (b *RingBuffer[T]) live() {
	if b.data == nil {
		panic(ErrReleased)
	}
}

// phys maps a logical index to its physical slot.
func (b *RingBuffer[T]) phys(i int) int {
	return (b.head + i) % len(b.data)
}

func (b *RingBuffer[T]) Cap() int { return len(b.data) }

// Len returns the number of stored elements (used space).
func (b *RingBuffer[T]) Len() int { return b.count }

// Free returns the number of elements that can be enqueued without eviction.
func (b *RingBuffer[T]) Free() int { return len(b.data) - b.count }

func (b *RingBuffer[T]) IsEmpty() bool { return b.count == 0 }

func (b *RingBuffer[T]) IsFull() bool { return b.count == len(b.data) }

// Head returns the physical slot of the oldest element.
func (b *RingBuffer[T]) Head() int { return b.head }

// Tail returns the physical slot of the newest element, or Head when empty.
func (b *RingBuffer[T]) Tail() int {
	if b.count == 0 {
		return b.head
	}
	return b.phys(b.count - 1)
}

// Enqueue appends src. When src does not fit, the oldest elements are
// overwritten; when len(src) >= Cap only the last Cap elements of src remain.
func (b *RingBuffer[T]) Enqueue(src []T) {
	b.live()

	n := len(src)
	if n == 0 {
		return
	}

	capacity := len(b.data)
	if n >= capacity {
		evicted := b.count + n - capacity
		copy(b.data, src[n-capacity:])
		b.head = 0
		b.count = capacity
		b.logEviction(evicted)
		return
	}

	w := b.phys(b.count)
	first := copy(b.data[w:], src)
	copy(b.data, src[first:])

	b.count += n
	if b.count > capacity {
		evicted := b.count - capacity
		b.head = (b.head + evicted) % capacity
		b.count = capacity
		b.logEviction(evicted)
	}
}

// SafeEnqueue appends src only if it fits into the free space. Otherwise it
// returns an error wrapping ErrWouldOverwrite and leaves the buffer untouched.
func (b *RingBuffer[T]) SafeEnqueue(src []T) error {
	b.live()

	if len(src) > b.Free() {
		return fmt.Errorf("%w: need %d, free %d", ErrWouldOverwrite, len(src), b.Free())
	}
	b.Enqueue(src)
	return nil
}

func (b *RingBuffer[T]) logEviction(evicted int) {
	b.logger.Debug("evicted oldest elements",
		"evicted", evicted,
		"head", b.head,
		"capacity", len(b.data),
	)
}

// Dequeue removes the n oldest elements and returns them, oldest first, in a
// newly allocated slice. n <= 0 returns an empty slice. Asking for more than
// Len returns an error wrapping ErrInsufficientData and removes nothing.
func (b *RingBuffer[T]) Dequeue(n int) ([]T, error) {
	b.live()

	if n <= 0 {
		return []T{}, nil
	}
	if n > b.count {
		return nil, fmt.Errorf("%w: requested %d, have %d", ErrInsufficientData, n, b.count)
	}

	out := make([]T, n)
	b.copyOut(out)
	b.advance(n)
	return out, nil
}

// DequeueAll drains the buffer.
func (b *RingBuffer[T]) DequeueAll() []T {
	out, _ := b.Dequeue(b.count)
	return out
}

// DequeueInto moves up to len(dst) of the oldest elements into dst and
// returns how many were moved.
func (b *RingBuffer[T]) DequeueInto(dst []T) int {
	b.live()

	n := b.copyOut(dst)
	b.advance(n)
	return n
}

// Remove discards the n oldest elements. Same rules for n as Dequeue.
func (b *RingBuffer[T]) Remove(n int) error {
	b.live()

	if n <= 0 {
		return nil
	}
	if n > b.count {
		return fmt.Errorf("%w: requested %d, have %d", ErrInsufficientData, n, b.count)
	}
	b.advance(n)
	return nil
}

// Reset empties the buffer logically. Slot contents are left as they are.
func (b *RingBuffer[T]) Reset() {
	b.live()

	b.head = 0
	b.count = 0
}

// copyOut copies the oldest elements into dst without consuming them.
func (b *RingBuffer[T]) copyOut(dst []T) int {
	n := min(len(dst), b.count)
	first := copy(dst[:n], b.data[b.head:])
	copy(dst[first:n], b.data)
	return n
}

func (b *RingBuffer[T]) advance(n int) {
	b.head = (b.head + n) % len(b.data)
	b.count -= n
}

// Snapshot returns a copy of the stored elements, oldest first, without
// consuming them.
func (b *RingBuffer[T]) Snapshot() []T {
	out := make([]T, b.count)
	if b.count > 0 {
		b.copyOut(out)
	}
	return out
}

func (b *RingBuffer[T]) checkIndex(i int) {
	if i < 0 || i >= b.count {
		panic(&IndexError{Lo: i, Hi: i + 1, Len: b.count})
	}
}

func (b *RingBuffer[T]) checkRange(lo, hi int) {
	if lo < 0 || hi < lo || hi > b.count {
		panic(&IndexError{Lo: lo, Hi: hi, Len: b.count})
	}
}

// At returns the element at logical index i (0 is the oldest).
// It panics if i is outside [0, Len).
func (b *RingBuffer[T]) At(i int) T {
	b.live()
	b.checkIndex(i)
	return b.data[b.phys(i)]
}

// Set overwrites the element at logical index i in place.
func (b *RingBuffer[T]) Set(i int, v T) {
	b.live()
	b.checkIndex(i)
	b.data[b.phys(i)] = v
}

// Slice returns a view over the logical range [lo, hi). The view writes
// through to the buffer's storage. Its physical position is fixed when Slice
// is called, so it keeps pointing at the same slots after later dequeues.
func (b *RingBuffer[T]) Slice(lo, hi int) *Window[T] {
	b.live()
	b.checkRange(lo, hi)
	return &Window[T]{
		data:  b.data,
		start: b.phys(lo),
		n:     hi - lo,
	}
}

// SetRange overwrites the occupied logical range [lo, hi) with src. It does
// not change Len, Head or Tail. len(src) must equal hi-lo.
func (b *RingBuffer[T]) SetRange(lo, hi int, src []T) {
	b.live()
	b.checkRange(lo, hi)
	if len(src) != hi-lo {
		panic(fmt.Sprintf("ringbuffer: SetRange [%d, %d) needs %d elements, got %d", lo, hi, hi-lo, len(src)))
	}
	b.Slice(lo, hi).CopyFrom(src)
}

// Iter returns an iterator over the elements present now, oldest first.
func (b *RingBuffer[T]) Iter() *Iterator[T] {
	return &Iterator[T]{
		data:  b.data,
		head:  b.head,
		count: b.count,
	}
}

// All yields (logical index, element) pairs. Each range statement starts a
// new traversal bounded by the length at that moment.
func (b *RingBuffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		it := b.Iter()
		for i := 0; ; i++ {
			v, ok := it.Next()
			if !ok || !yield(i, v) {
				return
			}
		}
	}
}

func (b *RingBuffer[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := b.Iter()
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
