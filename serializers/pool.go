// pool.go: pooled scratch buffers for the compressed serializer

package serializers

import (
	"bytes"
	"sync"
)

var bufferPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// getBuffer retrieves a scratch *bytes.Buffer from the shared pool. Callers
// must putBuffer it back when done; Compressed uses this to avoid growing a
// fresh destination slice on every encode/decode call.
func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// putBuffer resets and returns buf to the pool.
func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}
