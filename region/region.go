// Package region hands out raw, caller-owned memory regions that live outside
// the Go heap. They back ringbuffer.NewView when a buffer must not be moved or
// scanned by the garbage collector, and must be released explicitly.
package region

import (
	"errors"
	"unsafe"
)

var (
	ErrReleased    = errors.New("region: already released")
	ErrUnsupported = errors.New("region: anonymous mappings not supported on this platform")
	ErrInvalidSize = errors.New("region: size must be positive")
)

// Scalar lists the element types a region may hold. They carry no pointers,
// so the collector never has to look inside foreign memory.
type Scalar interface {
	~byte | ~int8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~int | ~uint | ~uintptr | ~float32 | ~float64
}

// Region is a zero-filled block of n elements of T.
type Region[T Scalar] struct {
	mem   []byte
	elems []T
}

// Slice returns the region as a []T. The slice is invalid after Release.
func (r *Region[T]) Slice() []T { return r.elems }

func (r *Region[T]) Len() int { return len(r.elems) }

// Bytes returns the size of the mapping.
func (r *Region[T]) Bytes() int { return len(r.mem) }

func byteSize[T Scalar](n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidSize
	}
	var zero T
	return n * int(unsafe.Sizeof(zero)), nil
}

func elements[T Scalar](mem []byte, n int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(mem))), n)
}
