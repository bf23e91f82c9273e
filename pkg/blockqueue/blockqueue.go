// Package blockqueue is a generic blocking FIFO for cross-goroutine
// handoff: producers append without blocking, consumers block until an
// item arrives. It is independent of the copy-on-write engine.
package blockqueue

import "sync"

// Queue is an unbounded thread-safe FIFO. The zero value is not usable;
// construct with New.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	items    []T
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends v and wakes one blocked Dequeue. It never blocks.
func (q *Queue[T]) Enqueue(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.notEmpty.Signal()
}

// Dequeue removes and returns the oldest item, blocking the calling
// goroutine until one is available.
func (q *Queue[T]) Dequeue() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		q.notEmpty.Wait()
	}

	v := q.items[0]
	var zero T
	q.items[0] = zero // drop the reference so the queue never pins items
	q.items = q.items[1:]
	return v
}

// Len returns an instantaneous snapshot of the queued item count.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
