package ringbuffer

import (
	"errors"
	"fmt"
)

var (
	// ErrWouldOverwrite is returned by SafeEnqueue when the write does not fit
	// into the free space and would evict unread elements.
	ErrWouldOverwrite = errors.New("ringbuffer: write would overwrite unread data")

	// ErrInsufficientData is returned when more elements are requested than the
	// buffer currently holds.
	ErrInsufficientData = errors.New("ringbuffer: not enough data")

	// ErrIndexOutOfRange is wrapped by the panic value of every out of range
	// logical index or sub-range access.
	ErrIndexOutOfRange = errors.New("ringbuffer: index out of range")

	// ErrReleased is returned (or panicked with) once CleanUp has run.
	ErrReleased = errors.New("ringbuffer: buffer released")

	// ErrOutOfRange indicates the requested position is no longer available in the
	// buffer window (it is behind the read cursor and cannot be re-read) or has
	// not been written yet.
	ErrOutOfRange = errors.New("ringbuffer: position out of range")

	ErrClosed   = errors.New("ringbuffer: buffer is closed")
	ErrTooLarge = errors.New("ringbuffer: write exceeds buffer size")
)

// IndexError describes a logical index or range outside [0, Len).
type IndexError struct {
	Lo, Hi int // Hi == Lo+1 for single element access
	Len    int
}

func (e *IndexError) Error() string {
	if e.Hi == e.Lo+1 {
		return fmt.Sprintf("ringbuffer: index %d out of range [0, %d)", e.Lo, e.Len)
	}
	return fmt.Sprintf("ringbuffer: range [%d, %d) out of range [0, %d)", e.Lo, e.Hi, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
