package ringbuffer

import "iter"

// Window is a fixed-length view into a RingBuffer's storage. It does not copy:
// Set and CopyFrom write into the parent buffer's slots.
//
// A Window must not be used after the parent's CleanUp.
type Window[T any] struct {
	data  []T
	start int // physical slot of element 0
	n     int
}

func (w *Window[T]) Len() int { return w.n }

func (w *Window[T]) index(i int) int {
	if i < 0 || i >= w.n {
		panic(&IndexError{Lo: i, Hi: i + 1, Len: w.n})
	}
	return (w.start + i) % len(w.data)
}

func (w *Window[T]) At(i int) T {
	return w.data[w.index(i)]
}

func (w *Window[T]) Set(i int, v T) {
	w.data[w.index(i)] = v
}

// CopyFrom overwrites the window with src, starting at element 0, and returns
// the number of elements copied, min(len(src), Len).
func (w *Window[T]) CopyFrom(src []T) int {
	n := min(len(src), w.n)
	if n == 0 {
		return 0
	}
	first := copy(w.data[w.start:], src[:n])
	copy(w.data, src[first:n])
	return n
}

// Copy returns the window's elements in a new slice.
func (w *Window[T]) Copy() []T {
	out := make([]T, w.n)
	if w.n == 0 {
		return out
	}
	first := copy(out, w.data[w.start:])
	copy(out[first:], w.data)
	return out
}

func (w *Window[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < w.n; i++ {
			if !yield(i, w.data[(w.start+i)%len(w.data)]) {
				return
			}
		}
	}
}

func (w *Window[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < w.n; i++ {
			if !yield(w.data[(w.start+i)%len(w.data)]) {
				return
			}
		}
	}
}

// Iterator walks a RingBuffer from oldest to newest. It remembers the head
// and length the buffer had when the iterator was created and never reads
// past that length. Slot contents are read lazily.
type Iterator[T any] struct {
	data  []T
	head  int
	count int
	pos   int
}

// Next returns the next element, or false once the snapshot is exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	if it.pos >= it.count {
		var zero T
		return zero, false
	}
	v := it.data[(it.head+it.pos)%len(it.data)]
	it.pos++
	return v, true
}

func (it *Iterator[T]) Remaining() int { return it.count - it.pos }

// Reset rewinds the iterator to the first element of its snapshot.
func (it *Iterator[T]) Reset() { it.pos = 0 }
