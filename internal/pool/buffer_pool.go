package pool

import (
	"sync"
)

// BufferPool implements a pool of byte slices for efficient memory reuse
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with buffers of the specified size
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves a buffer from the pool or creates a new one if none are available
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool for reuse. Buffers that grew past four
// times the pool size are dropped so one large request does not pin memory.
func (bp *BufferPool) Put(buffer *[]byte) {
	if cap(*buffer) > 4*bp.size {
		return
	}
	// Reset buffer length but keep capacity
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}

// AppendLines appends every line to the buffer and returns the grown slice.
func AppendLines(buffer []byte, lines []string) []byte {
	for _, line := range lines {
		buffer = append(buffer, line...)
	}
	return buffer
}
