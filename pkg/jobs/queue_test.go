package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("reports", func(context.Context, Job) error { return nil }, QueueConfig{})
	require.Error(t, q.Enqueue(Job{ID: "job-1"}))
}

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("reports", func(_ context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "inventory"}))
	select {
	case id := <-done:
		require.Equal(t, "job-1", id)
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueGivesUpAfterRetries(t *testing.T) {
	var calls int32
	gaveUp := make(chan Job, 1)
	q := NewQueue("reports", func(context.Context, Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("render failed")
	}, QueueConfig{
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
		OnGiveUp:   func(j Job, _ error) { gaveUp <- j },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-2"}))
	select {
	case job := <-gaveUp:
		require.Equal(t, "job-2", job.ID)
		require.Equal(t, 3, job.Attempt)
		require.EqualValues(t, 3, atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("queue never gave up")
	}
}

func TestQueueLenCountsBufferedJobs(t *testing.T) {
	picked := make(chan struct{}, 1)
	release := make(chan struct{})
	q := NewQueue("reports", func(context.Context, Job) error {
		select {
		case picked <- struct{}{}:
		default:
		}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())
	defer q.Stop()
	defer close(release)

	require.Zero(t, q.Len())
	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	<-picked
	require.NoError(t, q.Enqueue(Job{ID: "job-2"}))
	require.NoError(t, q.Enqueue(Job{ID: "job-3"}))
	require.Equal(t, 2, q.Len())
}
