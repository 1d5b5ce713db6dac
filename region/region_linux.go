//go:build linux

package region

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Map creates an anonymous private mapping large enough for n elements of T.
// The kernel zero-fills it, so every slot starts initialised.
func Map[T Scalar](n int) (*Region[T], error) {
	size, err := byteSize[T](n)
	if err != nil {
		return nil, err
	}

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %d bytes: %w", size, err)
	}

	return &Region[T]{
		mem:   mem,
		elems: elements[T](mem, n),
	}, nil
}

// Release unmaps the region. A second call returns ErrReleased.
func (r *Region[T]) Release() error {
	if r.mem == nil {
		return ErrReleased
	}

	mem := r.mem
	r.mem = nil
	r.elems = nil

	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("region: munmap: %w", err)
	}
	return nil
}
