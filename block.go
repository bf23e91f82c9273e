package cowbuf

import "github.com/rawbytedev/cowbuf/internal/refcount"

// baseGranularity is the allocation granularity: every grown capacity is
// rounded up to a multiple of it, and it is the capacity of a
// default-constructed handle.
const baseGranularity = 4

// roundToMultiple rounds n up to the nearest multiple of factor.
func roundToMultiple(n, factor int) int {
	if factor == 0 {
		return 0
	}
	return n - 1 - (n-1)%factor + factor
}

// block is the shared data block: one growable buffer, its logical size,
// and the refcount state deciding who may write and who frees. Handles
// share blocks by pointer; the buffer is owned by exactly one block and
// replaced only by reserve.
type block struct {
	buf  []byte // len(buf) is the capacity; content past size is unspecified
	size int
	rc   refcount.Counter

	synchronized bool
	onFree       func()
}

// newBlock returns a fresh Shared(1) block with at least the requested
// capacity and size zero.
func newBlock(capacity int, synchronized bool, onFree func()) *block {
	b := &block{
		rc:           refcount.New(synchronized),
		synchronized: synchronized,
		onFree:       onFree,
	}
	b.reserve(capacity)
	return b
}

func (b *block) capacity() int {
	return len(b.buf)
}

// reserve ensures capacity for at least required bytes, growing by 1.5x
// (rounded up to the granularity) so repeated appends reallocate O(log n)
// times. Content up to size is preserved; size itself never changes here.
func (b *block) reserve(required int) {
	if required <= len(b.buf) {
		return
	}
	grownCap := len(b.buf) * 3 / 2
	if required > grownCap {
		grownCap = required
	}
	grown := make([]byte, roundToMultiple(grownCap, baseGranularity))
	copy(grown, b.buf[:b.size])
	b.buf = grown
}

// copyData writes src at offset pos and extends size to cover it. The
// caller must hold the block uniquely and must have reserved enough
// capacity; violations are contract failures, not recoverable errors.
func (b *block) copyData(src []byte, pos int) {
	if !b.rc.Unique() {
		panic("cowbuf: copyData on a shared block")
	}
	if pos > b.size || pos+len(src) > len(b.buf) {
		panic("cowbuf: copyData out of range")
	}
	copy(b.buf[pos:], src)
	if end := pos + len(src); end > b.size {
		b.size = end
	}
}

// clone deep-copies the first size bytes into a fresh Shared(1) block
// with capacity at least max(newCapacity, current capacity), carrying the
// same policy and free hook.
func (b *block) clone(newCapacity int) *block {
	if c := len(b.buf); c > newCapacity {
		newCapacity = c
	}
	fresh := newBlock(newCapacity, b.synchronized, b.onFree)
	fresh.copyData(b.buf[:b.size], 0)
	return fresh
}

// free runs at the exact point a Release call reports last owner. Never
// deferred, never called twice.
func (b *block) free() {
	b.buf = nil
	b.size = 0
	if b.onFree != nil {
		b.onFree()
	}
}
