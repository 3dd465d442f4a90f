package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJob(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "generate"}))

	select {
	case job := <-done:
		assert.Equal(t, "job-1", job.ID)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesThenReportsExhaustion(t *testing.T) {
	var calls int32
	exhausted := make(chan Job, 1)
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, QueueConfig{
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
		OnExhausted: func(job Job, _ error) { exhausted <- job },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-2"}))

	select {
	case job := <-exhausted:
		assert.Equal(t, 3, job.Attempt)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("job was not exhausted")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "x"}))
}

func TestQueueEnqueueShedsLoadWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewQueue("test", func(context.Context, Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(release)

	require.NoError(t, q.Enqueue(Job{ID: "running"}))
	<-started
	require.NoError(t, q.Enqueue(Job{ID: "buffered"}))

	err := q.Enqueue(Job{ID: "overflow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
}
