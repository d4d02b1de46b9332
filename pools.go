package farmstore

import "sync"

var keyBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, keySize)
	},
}

var dataBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 4096)
	},
}

func releaseBytes(pool *sync.Pool, b []byte) {
	pool.Put(b[:0])
}
