// Package refcount provides the share-counting state machine behind the
// copy-on-write blocks. A counter is either Shared(n) for n >= 1 holders,
// or Exclusive: a terminal-ish state meaning the block may never be shared
// again because a caller holds a live reference into its buffer.
//
// Two policies implement the same contract: a plain counter for
// goroutine-confined use and an atomic one for cross-goroutine sharing.
package refcount

import "sync/atomic"

// Counter tracks how many holders observe one block.
//
// A true result from Unique is only guaranteed until the next operation
// that can share the block (AddRef from another holder); callers must not
// assume it holds across yield points.
type Counter interface {
	// Unique reports Shared(1) or Exclusive.
	Unique() bool
	// Unsharedable reports Exclusive.
	Unsharedable() bool
	// MakeUnsharedable transitions to Exclusive. Requires Unique.
	MakeUnsharedable()
	// ResetSharedable transitions Exclusive back to Shared(1). Requires Unique.
	ResetSharedable()
	// AddRef adds a holder. Must never be called on an Exclusive counter.
	AddRef()
	// Release drops a holder and reports whether the caller must free the
	// block: always true when Exclusive (sole owner by definition),
	// otherwise true iff the count reaches zero. Exactly one Release call
	// across all holders returns true.
	Release() bool
}

// New returns a counter starting at Shared(1). The synchronized policy
// makes every operation atomic with respect to the others.
func New(synchronized bool) Counter {
	if synchronized {
		c := &atomicCounter{}
		c.state.Store(1)
		return c
	}
	return &plainCounter{shared: 1}
}

// plainCounter is the non-synchronized policy: a tagged state held in two
// plain fields, no cross-goroutine safety of any kind.
type plainCounter struct {
	shared    uint64
	exclusive bool
}

func (c *plainCounter) Unique() bool {
	return c.exclusive || c.shared == 1
}

func (c *plainCounter) Unsharedable() bool {
	return c.exclusive
}

func (c *plainCounter) MakeUnsharedable() {
	if !c.Unique() {
		panic("refcount: MakeUnsharedable on a shared counter")
	}
	c.exclusive = true
}

func (c *plainCounter) ResetSharedable() {
	if !c.Unique() {
		panic("refcount: ResetSharedable on a shared counter")
	}
	c.exclusive = false
	c.shared = 1
}

func (c *plainCounter) AddRef() {
	if c.exclusive {
		panic("refcount: AddRef on an exclusive counter")
	}
	if c.shared == 0 {
		panic("refcount: AddRef after release")
	}
	c.shared++
}

func (c *plainCounter) Release() bool {
	if c.exclusive {
		return true
	}
	if c.shared == 0 {
		panic("refcount: Release after release")
	}
	c.shared--
	return c.shared == 0
}

// exclusiveBit tags the Exclusive state in the atomic policy's single
// state word. A tagged bit cannot collide with a legitimate count, unlike
// a sentinel count value.
const exclusiveBit = uint64(1) << 63

// atomicCounter is the synchronized policy: the whole tagged state lives
// in one atomic word so every operation is a single load, store or RMW.
type atomicCounter struct {
	state atomic.Uint64
}

func (c *atomicCounter) Unique() bool {
	s := c.state.Load()
	return s == 1 || s&exclusiveBit != 0
}

func (c *atomicCounter) Unsharedable() bool {
	return c.state.Load()&exclusiveBit != 0
}

func (c *atomicCounter) MakeUnsharedable() {
	s := c.state.Load()
	if s&exclusiveBit != 0 {
		return
	}
	if s != 1 {
		panic("refcount: MakeUnsharedable on a shared counter")
	}
	c.state.Store(exclusiveBit | 1)
}

func (c *atomicCounter) ResetSharedable() {
	s := c.state.Load()
	if s != 1 && s&exclusiveBit == 0 {
		panic("refcount: ResetSharedable on a shared counter")
	}
	c.state.Store(1)
}

func (c *atomicCounter) AddRef() {
	n := c.state.Add(1)
	if n&exclusiveBit != 0 {
		panic("refcount: AddRef on an exclusive counter")
	}
	if n == 1 {
		panic("refcount: AddRef after release")
	}
}

func (c *atomicCounter) Release() bool {
	if c.state.Load()&exclusiveBit != 0 {
		return true
	}
	n := c.state.Add(^uint64(0))
	if n == ^uint64(0) {
		panic("refcount: Release after release")
	}
	return n == 0
}
