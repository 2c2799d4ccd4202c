package fernet

import "sync"

// bytePool holds reusable byte slices to minimize allocations on the
// serialize path, where token bytes are assembled before encoding.
var bytePool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 4096)
		return &b
	},
}

func acquireBuffer() *[]byte {
	ptr := bytePool.Get().(*[]byte)
	*ptr = (*ptr)[:0]
	return ptr
}

// releaseBuffer zeros whatever was written before the slice goes back to the
// pool, so key-adjacent material never lingers in reused buffers.
func releaseBuffer(ptr *[]byte) {
	if ptr == nil {
		return
	}
	buf := (*ptr)[:cap(*ptr)]
	wipe(buf)
	*ptr = buf[:0]
	bytePool.Put(ptr)
}

// wipe overwrites b in place. Best-effort hardening only: the runtime may
// have copied the data earlier, and Go offers no way to chase those copies.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
