package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDropPolicyDiscardsWhenFull(t *testing.T) {
	q := New[int](2, Drop)
	require.NoError(t, q.Put(context.Background(), 1))
	require.NoError(t, q.Put(context.Background(), 2))
	require.NoError(t, q.Put(context.Background(), 3))
	assert.Equal(t, []int{1, 2}, q.Snapshot())
}

func TestPopPolicyDiscardsOldest(t *testing.T) {
	q := New[int](2, Pop)
	require.NoError(t, q.Put(context.Background(), 1))
	require.NoError(t, q.Put(context.Background(), 2))
	require.NoError(t, q.Put(context.Background(), 3))
	assert.Equal(t, []int{2, 3}, q.Snapshot())
}

func TestRaisePolicyFailsWhenFull(t *testing.T) {
	q := New[int](1, Raise)
	require.NoError(t, q.Put(context.Background(), 1))
	err := q.Put(context.Background(), 2)
	assert.ErrorIs(t, err, ErrQueueFull)
}

// TestDrainOldestScenario is the exact scenario from spec.md §8.1:
// capacity=10, populate with items 0..9, put items 10..13 with DrainOldest;
// final FIFO contents must be [5,6,7,8,9,10,11,12,13].
func TestDrainOldestScenario(t *testing.T) {
	q := New[int](10, DrainOldest)
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Put(context.Background(), i))
	}
	for i := 10; i < 14; i++ {
		require.NoError(t, q.Put(context.Background(), i))
	}
	assert.Equal(t, []int{5, 6, 7, 8, 9, 10, 11, 12, 13}, q.Snapshot())
}

func TestBlockPolicyWaitsForSpace(t *testing.T) {
	q := New[int](1, Block)
	require.NoError(t, q.Put(context.Background(), 1))

	putDone := make(chan error, 1)
	go func() {
		putDone <- q.Put(context.Background(), 2)
	}()

	select {
	case <-putDone:
		t.Fatal("Put should have blocked while queue was full")
	case <-time.After(20 * time.Millisecond):
	}

	v, err := q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, <-putDone)
	assert.Equal(t, []int{2}, q.Snapshot())
}

func TestBlockPolicyRespectsContextCancellation(t *testing.T) {
	q := New[int](1, Block)
	require.NoError(t, q.Put(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := q.Put(ctx, 2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetBlocksUntilItemAvailable(t *testing.T) {
	q := New[int](4, Drop)
	getDone := make(chan int, 1)
	go func() {
		v, err := q.Get(context.Background())
		require.NoError(t, err)
		getDone <- v
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Put(context.Background(), 99))

	select {
	case v := <-getDone:
		assert.Equal(t, 99, v)
	case <-time.After(time.Second):
		t.Fatal("Get never returned")
	}
}

func TestTryGetEmpty(t *testing.T) {
	q := New[int](4, Drop)
	_, err := q.TryGet()
	assert.ErrorIs(t, err, ErrEmpty)
}

// TestConcurrentDrainsDoNotInterleave verifies the queue-wide exclusive
// drain lock: many goroutines racing DrainOldest puts on a full queue never
// leave the queue over capacity nor corrupt its contents.
func TestConcurrentDrainsDoNotInterleave(t *testing.T) {
	const capacity = 20
	q := New[int](capacity, DrainOldest)
	for i := 0; i < capacity; i++ {
		require.NoError(t, q.Put(context.Background(), i))
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_ = q.Put(context.Background(), 1000+v)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, q.Len(), capacity)
}

// TestFIFOOrderProperty checks that, absent any full-queue policy firing,
// Get always returns items in the order they were Put.
func TestFIFOOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "n")
		items := rapid.SliceOfN(rapid.Int(), n, n).Draw(t, "items")

		q := New[int](n, Drop)
		for _, v := range items {
			require.NoError(t, q.Put(context.Background(), v))
		}
		for _, want := range items {
			got, err := q.TryGet()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})
}
