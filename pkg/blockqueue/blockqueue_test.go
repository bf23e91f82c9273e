package blockqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFIFOOrder(t *testing.T) {
	q := New[int]()
	q.Enqueue(1)
	q.Enqueue(2)
	q.Enqueue(3)

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 1, q.Dequeue())
	assert.Equal(t, 2, q.Dequeue())
	assert.Equal(t, 3, q.Dequeue())
	assert.Equal(t, 0, q.Len())
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	q := New[string]()

	got := make(chan string, 1)
	go func() { got <- q.Dequeue() }()

	select {
	case v := <-got:
		t.Fatalf("Dequeue returned %q from an empty queue", v)
	case <-time.After(50 * time.Millisecond):
		// still blocked, as it should be
	}

	q.Enqueue("wakeup")
	select {
	case v := <-got:
		assert.Equal(t, "wakeup", v)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake after Enqueue")
	}
}

func TestConcurrentProducersConsumers(t *testing.T) {
	const producers = 8
	const perProducer = 500

	q := New[int]()

	var producerGroup errgroup.Group
	for p := 0; p < producers; p++ {
		base := p * perProducer
		producerGroup.Go(func() error {
			for i := 0; i < perProducer; i++ {
				q.Enqueue(base + i)
			}
			return nil
		})
	}

	seen := make(chan int, producers*perProducer)
	var consumerGroup errgroup.Group
	for c := 0; c < 4; c++ {
		consumerGroup.Go(func() error {
			for i := 0; i < producers*perProducer/4; i++ {
				seen <- q.Dequeue()
			}
			return nil
		})
	}

	require.NoError(t, producerGroup.Wait())
	require.NoError(t, consumerGroup.Wait())
	close(seen)

	got := make(map[int]bool, producers*perProducer)
	for v := range seen {
		require.False(t, got[v], "item %d delivered twice", v)
		got[v] = true
	}
	assert.Len(t, got, producers*perProducer)
	assert.Equal(t, 0, q.Len())
}

func TestSingleProducerOrderPreserved(t *testing.T) {
	q := New[int]()

	var g errgroup.Group
	g.Go(func() error {
		for i := 0; i < 1000; i++ {
			q.Enqueue(i)
		}
		return nil
	})

	for i := 0; i < 1000; i++ {
		require.Equal(t, i, q.Dequeue())
	}
	require.NoError(t, g.Wait())
}

func BenchmarkEnqueueDequeue(b *testing.B) {
	q := New[int]()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		q.Enqueue(i)
		_ = q.Dequeue()
	}
}
