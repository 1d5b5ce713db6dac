package ringbuffer

import (
	"context"
	"io"
)

// LockingRingBufferInterface defines the public API of the synchronised byte
// stream.
//
// Absolute positions are measured from startPosition; internally the buffer
// operates on normalized offsets (position - startPosition). The read cursor
// is the write cursor minus the bytes still held, so both only ever grow.
//
// Notes on semantics:
//   - IsPositionAvailable reports whether a position lies inside the current
//     readable window [lastReadPosition, lastWritePosition], with an inclusive
//     upper bound at the write boundary.
//   - ReadAt advances the shared read cursor; attempts to read behind the
//     cursor return ErrOutOfRange, and reads at or beyond the write cursor
//     return io.EOF. Reading ahead of the cursor discards the skipped bytes.
//   - IsPositionInCapacity indicates whether a position is within a window that
//     can be represented by the current buffer capacity, allowing a tolerance.
//     It does not assert that the data is currently available to read.
//   - Write blocks when there is insufficient space (to avoid overwrite) and
//     unblocks when readers advance.
//   - Writing EOFMarker marks logical end-of-stream and causes subsequent reads
//     to return io.EOF when fewer bytes than requested are available.
//
// All methods are safe for concurrent use.
type LockingRingBufferInterface interface {
	GetCapacity() int64
	GetSize() int64
	GetStartPosition() int64
	ReadAt(p []byte, position int64) (n int, err error)
	Write(p []byte) (n int, err error)
	GetBytesToOverwrite() int64
	IsPositionAvailable(position int64) bool
	IsPositionInCapacity(position int64, tolerance int64) bool
	WaitForPosition(ctx context.Context, position int64) bool
	ResetToPosition(position int64)
	Close() error
}

var _ LockingRingBufferInterface = &LockingRingBuffer{}
var _ io.WriteCloser = &LockingRingBuffer{}
var _ io.ReaderAt = &LockingRingBuffer{}

// Queue is the element-level API of RingBuffer.
type Queue[T any] interface {
	Cap() int
	Len() int
	Free() int
	Enqueue(src []T)
	SafeEnqueue(src []T) error
	Dequeue(n int) ([]T, error)
	DequeueAll() []T
	Remove(n int) error
	Reset()
	At(i int) T
	Set(i int, v T)
}

var _ Queue[byte] = (*RingBuffer[byte])(nil)
