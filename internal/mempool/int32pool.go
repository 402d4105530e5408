package mempool

import (
	"sync"
)

// A simple sized pool for the []int32 scratch buffers used by the labeler:
// label rows and the pixel chain grid.

var int32Pools sync.Map // key: size class (int), value: *sync.Pool

// sizeClass rounds n up to the next multiple of 1024 to reduce churn.
func sizeClass(n int) int {
	if n <= 1024 {
		return 1024
	}
	const step = 1024
	r := (n + step - 1) / step
	return r * step
}

func poolFor(cls int) *sync.Pool {
	pAny, _ := int32Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]int32, cls) }})
	p, _ := pAny.(*sync.Pool)
	return p
}

// GetInt32 retrieves an []int32 buffer of length n with every element set to
// fill. The capacity may be larger. Return it via PutInt32 when done.
func GetInt32(n int, fill int32) []int32 {
	if n < 0 {
		n = 0
	}
	cls := sizeClass(n)
	var buf []int32
	if p := poolFor(cls); p != nil {
		buf, _ = p.Get().([]int32)
	}
	if cap(buf) < cls {
		buf = make([]int32, cls)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = fill
	}
	return buf
}

// PutInt32 returns a buffer to the pool. It is safe to pass a nil slice.
func PutInt32(buf []int32) {
	if cap(buf) == 0 {
		return
	}
	cls := sizeClass(cap(buf))
	if cls != cap(buf) {
		// Foreign slice that does not match a size class; let the GC have it.
		return
	}
	if p := poolFor(cls); p != nil {
		p.Put(buf[:cap(buf)]) //nolint:staticcheck
	}
}

// GetInt32Multiple retrieves one buffer per requested size, all set to fill.
func GetInt32Multiple(sizes []int, fill int32) [][]int32 {
	if len(sizes) == 0 {
		return nil
	}
	buffers := make([][]int32, len(sizes))
	for i, size := range sizes {
		buffers[i] = GetInt32(size, fill)
	}
	return buffers
}

// PutInt32Multiple returns multiple buffers to the pool.
func PutInt32Multiple(bufs [][]int32) {
	for _, buf := range bufs {
		PutInt32(buf)
	}
}
