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

func TestQueueProcessesTasks(t *testing.T) {
	done := make(chan Task, 3)
	q := NewQueue("test", func(ctx context.Context, task Task) error {
		done <- task
		return nil
	}, Options{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(Task{Kind: "noop"}))
	}

	for i := 0; i < 3; i++ {
		select {
		case task := <-done:
			assert.Equal(t, "noop", task.Kind)
			assert.NotEmpty(t, task.ID)
			assert.False(t, task.Enqueued.IsZero())
		case <-time.After(2 * time.Second):
			t.Fatal("task not processed in time")
		}
	}
}

func TestQueueRetriesFailedTask(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, task Task) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, Options{Workers: 1, MaxRetries: 3, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task{Kind: "flaky"}))

	select {
	case <-done:
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("task was not retried")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, task Task) error { return nil }, Options{})
	require.Error(t, q.Enqueue(Task{Kind: "noop"}))
}
