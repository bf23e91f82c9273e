package cowbuf

import (
	"bytes"
	"io"
	"unsafe"
)

// Options selects the refcount policy and instruments deallocation.
type Options struct {
	// Synchronized uses the atomic refcount policy so independent handles
	// backed by one block may be copied, read and released from different
	// goroutines. It does not license concurrent mutation; see String.
	Synchronized bool

	// OnFree, when set, runs exactly once per block at the point the last
	// holder releases it.
	OnFree func()
}

// String is a byte-string value handle over a shared, reference-counted
// block. Copies share the block; the first mutation through a shared
// handle detaches onto a private clone (copy-on-write), so mutating one
// handle never changes what another observes.
//
// Handles are not values: pass *String, call Copy to take an owning
// share, and call Release exactly once per handle when done. Using a
// handle after releasing it is a contract violation.
//
// Concurrency contract, under either policy: a handle must not be mutated
// concurrently with being copied or read through another goroutine. The
// synchronized policy only makes sharing itself safe (concurrent Copy,
// Release, and reads across independent handles); the window between the
// uniqueness check and the in-place write is deliberately not locked.
type String struct {
	data *block
}

// New returns an empty handle with a small initial capacity.
func New(opts Options) *String {
	return &String{data: newBlock(baseGranularity, opts.Synchronized, opts.OnFree)}
}

// FromBytes copies b into a fresh block sized exactly to it.
func FromBytes(b []byte, opts Options) *String {
	s := &String{data: newBlock(len(b), opts.Synchronized, opts.OnFree)}
	s.data.copyData(b, 0)
	return s
}

// FromString copies the content of str without an intermediate []byte
// conversion; copyData only reads src, so aliasing the string is safe.
func FromString(str string, opts Options) *String {
	return FromBytes(unsafe.Slice(unsafe.StringData(str), len(str)), opts)
}

// Copy returns a new handle over the same block, or over a private clone
// when the block is unsharedable: a block that handed out a live mutable
// reference is never aliased again.
func (s *String) Copy() *String {
	d := s.data
	if d.rc.Unsharedable() {
		return &String{data: d.clone(d.size)}
	}
	d.rc.AddRef()
	return &String{data: d}
}

// Release drops this handle's share and frees the block when it was the
// last one. Exactly one Release across all handles of a block frees it.
func (s *String) Release() {
	if s.data.rc.Release() {
		s.data.free()
	}
	s.data = nil
}

// prepareToModify is the single gate in front of every mutation: detach
// onto a private clone when the block is shared, otherwise grow in place,
// then settle the sharability for the mutation about to happen.
func (s *String) prepareToModify(requiredCap int, makeExclusive bool) {
	d := s.data
	if !d.rc.Unique() {
		detached := d.clone(requiredCap)
		if d.rc.Release() {
			d.free()
		}
		s.data = detached
		d = detached
	} else {
		d.reserve(requiredCap)
	}

	// A block that handed out a live mutable reference stays unsharedable
	// for the rest of its life; no mutation lifts the pin.
	if makeExclusive {
		d.rc.MakeUnsharedable()
	} else if !d.rc.Unsharedable() {
		d.rc.ResetSharedable()
	}
}

// Append appends b, detaching first when the block is shared.
func (s *String) Append(b []byte) {
	newSize := s.data.size + len(b)
	s.prepareToModify(newSize, false)
	s.data.copyData(b, s.data.size)
}

// AppendString appends the content of str.
func (s *String) AppendString(str string) {
	s.Append(unsafe.Slice(unsafe.StringData(str), len(str)))
}

// Data returns the current content as a read view into the block. The
// view is invalidated by any later mutation of this handle; callers that
// need to retain content use String.
func (s *String) Data() []byte {
	return s.data.buf[:s.data.size]
}

// Len returns the logical size in bytes.
func (s *String) Len() int {
	return s.data.size
}

// Empty reports whether the content has zero length.
func (s *String) Empty() bool {
	return s.data.size == 0
}

// At returns the byte at position i without any copy-on-write gating.
func (s *String) At(i int) byte {
	return s.Data()[i]
}

// MutableAt returns a live reference to the byte at position i. Because
// the reference stays valid for the handle's lifetime, the block becomes
// permanently unsharedable: every later Copy clones even when no other
// sharer exists. No public operation resets this.
func (s *String) MutableAt(i int) *byte {
	s.prepareToModify(s.data.size, true)
	return &s.Data()[i]
}

// MutableBytes returns a live writable view of the whole content, with
// the same permanence consequence as MutableAt.
func (s *String) MutableBytes() []byte {
	s.prepareToModify(s.data.size, true)
	return s.Data()
}

// Equal reports whether both handles hold the same bytes.
func (s *String) Equal(other *String) bool {
	return bytes.Equal(s.Data(), other.Data())
}

// Unique reports whether this handle is the block's only sharer (or the
// block is exclusive). Only valid until the next Copy elsewhere.
func (s *String) Unique() bool {
	return s.data.rc.Unique()
}

// String returns the content as an owned Go string.
func (s *String) String() string {
	return string(s.Data())
}

// WriteTo writes the raw content bytes to w when there are any.
func (s *String) WriteTo(w io.Writer) (int64, error) {
	if s.Empty() {
		return 0, nil
	}
	n, err := w.Write(s.Data())
	return int64(n), err
}
