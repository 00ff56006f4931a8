package relay

import "sync"

var copyBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultBufferSize)

		return &buf
	},
}

// acquireCopyBuffer returns a buffer of exactly size bytes. Buffers of
// default size are taken from the pool.
func acquireCopyBuffer(size int) *[]byte {
	buf := copyBufferPool.Get().(*[]byte) //nolint: forcetypeassert
	if cap(*buf) < size {
		copyBufferPool.Put(buf)

		newBuf := make([]byte, size)

		return &newBuf
	}

	*buf = (*buf)[:size]

	return buf
}

func releaseCopyBuffer(buf *[]byte) {
	if cap(*buf) > maxPooledBufferSize {
		return
	}

	copyBufferPool.Put(buf)
}
