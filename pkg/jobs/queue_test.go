package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	done := make(chan Job, 1)
	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		done <- job
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "1", Type: "coverage.result"}))

	select {
	case job := <-done:
		assert.Equal(t, 2, job.Attempt)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to completion")
	}
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var mu sync.Mutex
	var gaveUp []Job
	finished := make(chan struct{})
	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		return errors.New("permanent")
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond, OnGiveUp: func(job Job, err error) {
		mu.Lock()
		gaveUp = append(gaveUp, job)
		mu.Unlock()
		close(finished)
	}})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "1"}))

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("give-up hook not called")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, gaveUp, 1)
	assert.Equal(t, 2, gaveUp[0].Attempt)
}

func TestQueueTryEnqueueReportsFullBuffer(t *testing.T) {
	block := make(chan struct{})
	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	assert.ErrorIs(t, queue.TryEnqueue(Job{ID: "early"}), ErrQueueStopped)

	queue.Start(context.Background())
	defer queue.Stop()
	defer close(block)

	require.NoError(t, queue.Enqueue(Job{ID: "1"}))
	require.Eventually(t, func() bool { return len(queue.jobs) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, queue.TryEnqueue(Job{ID: "2"}))
	assert.ErrorIs(t, queue.TryEnqueue(Job{ID: "3"}), ErrQueueFull)
}

func TestQueueDrainWaitsForRetries(t *testing.T) {
	var calls int32
	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 2 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 2, RetryDelay: 20 * time.Millisecond})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, queue.Drain(ctx))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Zero(t, queue.Pending())
}

func TestQueueDrainHonoursContext(t *testing.T) {
	block := make(chan struct{})
	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{})
	queue.Start(context.Background())
	defer queue.Stop()
	defer close(block)

	require.NoError(t, queue.TryEnqueue(Job{ID: "1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, queue.Drain(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, queue.Pending())
}

func TestQueueStopReleasesDroppedJobs(t *testing.T) {
	running := make(chan struct{}, 4)
	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		running <- struct{}{}
		<-ctx.Done()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	queue.Start(context.Background())

	require.NoError(t, queue.TryEnqueue(Job{ID: "1"}))
	<-running
	require.NoError(t, queue.TryEnqueue(Job{ID: "2"}))
	require.NoError(t, queue.TryEnqueue(Job{ID: "3"}))
	assert.Equal(t, 3, queue.Pending())

	queue.Stop()

	assert.Zero(t, queue.Pending())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.NoError(t, queue.Drain(ctx))
}
