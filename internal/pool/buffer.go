package pool

import (
	"sync"
)

// Tier capacities. Buffers above LargeBufferSize are allocated directly
// and never pooled, so one oversized run cannot pin memory.
const (
	// SmallBufferSize covers chunk sizes up to 64KB
	SmallBufferSize = 64 * 1024
	// MediumBufferSize covers chunk sizes up to 1MB
	MediumBufferSize = 1024 * 1024
	// LargeBufferSize covers chunk sizes up to 16MB
	LargeBufferSize = 16 * 1024 * 1024
)

// BufferPool hands out byte buffers from capacity tiers to reduce
// allocations across upload sessions.
type BufferPool struct {
	small  sync.Pool
	medium sync.Pool
	large  sync.Pool
}

// NewBufferPool creates a buffer pool with the default tier sizes.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		small:  newTier(SmallBufferSize),
		medium: newTier(MediumBufferSize),
		large:  newTier(LargeBufferSize),
	}
}

func newTier(size int) sync.Pool {
	return sync.Pool{
		New: func() interface{} {
			buf := make([]byte, size)
			return &buf
		},
	}
}

// Get returns a buffer with length exactly size. The caller must hand the
// buffer back with Put once it is no longer referenced.
func (bp *BufferPool) Get(size int) []byte {
	var tier *sync.Pool
	switch {
	case size <= SmallBufferSize:
		tier = &bp.small
	case size <= MediumBufferSize:
		tier = &bp.medium
	case size <= LargeBufferSize:
		tier = &bp.large
	default:
		return make([]byte, size)
	}

	bufPtr := tier.Get().(*[]byte)
	return (*bufPtr)[:size]
}

// Put returns a buffer to its tier based on capacity. Buffers that did not
// come from a tier are dropped. The buffer must not be used after Put.
func (bp *BufferPool) Put(buf []byte) {
	buf = buf[:cap(buf)]
	switch cap(buf) {
	case SmallBufferSize:
		bp.small.Put(&buf)
	case MediumBufferSize:
		bp.medium.Put(&buf)
	case LargeBufferSize:
		bp.large.Put(&buf)
	}
}

// Global pool shared by upload sessions.
var defaultPool = NewBufferPool()

// Get returns a buffer of length size from the global pool.
func Get(size int) []byte {
	return defaultPool.Get(size)
}

// Put returns a buffer to the global pool.
func Put(buf []byte) {
	defaultPool.Put(buf)
}
