package ringbuffer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// LockingRingBuffer is a blocking byte stream over a RingBuffer[byte].
// Writers wait for readers instead of overwriting unread data.
type LockingRingBuffer struct {
	ring          *RingBuffer[byte]
	capacity      int64
	startPosition int64

	lastWritePosition int64 // Stores normalized position

	mu      sync.Mutex
	notFull *sync.Cond

	eof    atomic.Bool
	closed atomic.Bool

	logger *slog.Logger
}

var EOFMarker = []byte("__EOF__")

const waitPollInterval = 50 * time.Millisecond

// Calculates the nearest bigger power of 2 for the given size.
func calculateBufferSize(size int64) int64 {
	if size > 0 && (size&(size-1)) == 0 {
		return size
	}

	power := int64(1)
	for power < size {
		power *= 2
	}

	return power
}

func NewLockingRingBuffer(size int64, startPosition int64, opts ...Option) *LockingRingBuffer {
	bufferSize := calculateBufferSize(size)
	o := buildOptions(opts)

	buffer := &LockingRingBuffer{
		ring:          New[byte](int(bufferSize), opts...),
		capacity:      bufferSize,
		startPosition: startPosition,
		logger:        o.logger,
	}
	buffer.notFull = sync.NewCond(&buffer.mu)

	return buffer
}

func (buffer *LockingRingBuffer) GetCapacity() int64 {
	return buffer.capacity
}

// GetSize returns the number of unread bytes.
func (buffer *LockingRingBuffer) GetSize() int64 {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	return int64(buffer.ring.Len())
}

func (buffer *LockingRingBuffer) GetStartPosition() int64 {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	return buffer.startPosition
}

// Returns the number of bytes that can be written to the buffer without overwriting any data.
func (buffer *LockingRingBuffer) GetBytesToOverwrite() int64 {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	return buffer.bytesToOverwrite()
}

func (buffer *LockingRingBuffer) bytesToOverwrite() int64 {
	return buffer.capacity - int64(buffer.ring.Len())
}

func (buffer *LockingRingBuffer) lastReadPosition() int64 {
	return buffer.lastWritePosition - int64(buffer.ring.Len())
}

func (buffer *LockingRingBuffer) getNormalizedPosition(position int64) int64 {
	return position - buffer.startPosition
}

func (buffer *LockingRingBuffer) IsPositionAvailable(position int64) bool {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	if buffer.closed.Load() || buffer.ring.IsEmpty() {
		return false
	}

	normalizedPosition := buffer.getNormalizedPosition(position)
	if normalizedPosition < 0 {
		return false
	}

	return normalizedPosition >= buffer.lastReadPosition() && normalizedPosition <= buffer.lastWritePosition
}

func (buffer *LockingRingBuffer) IsPositionInCapacity(position int64, tolerance int64) bool {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	normalizedPosition := buffer.getNormalizedPosition(position)
	earliest := buffer.lastReadPosition()

	return normalizedPosition >= earliest && normalizedPosition < earliest+buffer.capacity+tolerance
}

func (buffer *LockingRingBuffer) Write(p []byte) (n int, err error) {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	if buffer.closed.Load() {
		return 0, ErrClosed
	}

	if bytes.Equal(p, EOFMarker) {
		buffer.eof.Store(true)
		return 0, nil
	}

	requestedSize := int64(len(p))
	if requestedSize > buffer.capacity {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooLarge, requestedSize, buffer.capacity)
	}

	for requestedSize > buffer.bytesToOverwrite() {
		buffer.notFull.Wait()

		if buffer.closed.Load() {
			return 0, ErrClosed
		}
	}

	if err := buffer.ring.SafeEnqueue(p); err != nil {
		return 0, err
	}
	buffer.lastWritePosition += requestedSize

	return len(p), nil
}

func (buffer *LockingRingBuffer) ReadAt(p []byte, position int64) (int, error) {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	if buffer.closed.Load() {
		return 0, ErrClosed
	}

	normalizedPosition := buffer.getNormalizedPosition(position)
	earliest := buffer.lastReadPosition()

	if normalizedPosition < earliest {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, position)
	}
	if normalizedPosition >= buffer.lastWritePosition {
		return 0, io.EOF
	}

	if skip := normalizedPosition - earliest; skip > 0 {
		if err := buffer.ring.Remove(int(skip)); err != nil {
			return 0, err
		}
	}

	bytesRead := buffer.ring.DequeueInto(p)
	buffer.notFull.Broadcast()

	if bytesRead < len(p) && buffer.eof.Load() {
		return bytesRead, io.EOF
	}

	return bytesRead, nil
}

// WaitForPosition polls until position becomes readable. It gives up when ctx
// is done, the buffer is closed, or the stream hit EOF short of position.
func (buffer *LockingRingBuffer) WaitForPosition(ctx context.Context, position int64) bool {
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		if buffer.closed.Load() {
			return false
		}

		if buffer.IsPositionAvailable(position) {
			return true
		}

		if buffer.eof.Load() {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func (buffer *LockingRingBuffer) ResetToPosition(position int64) {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	if buffer.closed.Load() {
		return
	}

	buffer.startPosition = position
	buffer.lastWritePosition = 0
	buffer.ring.Reset()
	buffer.eof.Store(false)

	buffer.notFull.Broadcast()

	buffer.logger.Debug("stream reset", "position", position)
}

func (buffer *LockingRingBuffer) Close() error {
	if buffer.closed.Swap(true) {
		return nil
	}

	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	buffer.notFull.Broadcast()

	return buffer.ring.CleanUp()
}
