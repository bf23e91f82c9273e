// Package cowbuf implements copy-on-write byte strings over shared,
// reference-counted blocks. Copying a handle is O(1) and shares the
// backing buffer; the first mutation through a shared handle detaches
// onto a private clone. Taking a live mutable reference into a buffer
// (MutableAt, MutableBytes) permanently disables sharing for that block
// so the reference can never be invalidated by a later copy.
package cowbuf
