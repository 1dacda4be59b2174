package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitValidation(t *testing.T) {
	q := NewQueue(NewMemoryBroker())
	ctx := context.Background()

	t.Run("user export requires a user id", func(t *testing.T) {
		_, err := q.Submit(ctx, KindUserExport, UserExportArgs{})
		assert.Error(t, err)

		_, err = q.Submit(ctx, KindUserExport, nil)
		assert.Error(t, err)
	})

	t.Run("argless kinds reject arguments", func(t *testing.T) {
		_, err := q.Submit(ctx, KindAllExport, UserExportArgs{UserID: 1})
		assert.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := q.Submit(ctx, Kind("mystery"), nil)
		assert.Error(t, err)
	})

	t.Run("valid submissions return distinct handles", func(t *testing.T) {
		h1, err := q.Submit(ctx, KindUserExport, UserExportArgs{UserID: 7})
		require.NoError(t, err)
		h2, err := q.Submit(ctx, KindAllExport, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, h1)
		assert.NotEmpty(t, h2)
		assert.NotEqual(t, h1, h2)
	})
}

func TestSubmitCreatesPendingJob(t *testing.T) {
	broker := NewMemoryBroker()
	q := NewQueue(broker)
	ctx := context.Background()

	handle, err := q.Submit(ctx, KindDailyReminder, nil)
	require.NoError(t, err)

	job, err := q.Status(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, StatePending, job.State)
	assert.Equal(t, KindDailyReminder, job.Kind)
	assert.Empty(t, job.Result)
	assert.Empty(t, job.Error)
}

func TestStatusUnknownHandle(t *testing.T) {
	q := NewQueue(NewMemoryBroker())

	_, err := q.Status(context.Background(), "no-such-handle")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestMemoryBrokerDequeue(t *testing.T) {
	broker := NewMemoryBroker()
	ctx := context.Background()

	require.NoError(t, broker.Enqueue(ctx, Task{ID: "t1", Kind: KindAllExport}))

	task, err := broker.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "t1", task.ID)

	// Empty queue times out with no task and no error.
	task, err = broker.Dequeue(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestTerminalStateIsImmutable(t *testing.T) {
	broker := NewMemoryBroker()
	ctx := context.Background()

	require.NoError(t, broker.Enqueue(ctx, Task{ID: "t1", Kind: KindUserExport}))
	require.NoError(t, broker.SetState(ctx, "t1", StateRunning, "", ""))
	require.NoError(t, broker.SetState(ctx, "t1", StateSuccess, "file.csv", ""))

	// Late transitions are silently ignored.
	require.NoError(t, broker.SetState(ctx, "t1", StateFailure, "", "too late"))
	require.NoError(t, broker.SetState(ctx, "t1", StateRunning, "", ""))

	job, err := broker.Job(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, job.State)
	assert.Equal(t, "file.csv", job.Result)
	assert.Empty(t, job.Error)
}

func TestMemoryBrokerFullQueueLeavesNoOrphan(t *testing.T) {
	broker := &memoryBroker{
		jobs:  make(map[string]*Job),
		tasks: make(chan Task, 1),
	}
	ctx := context.Background()

	require.NoError(t, broker.Enqueue(ctx, Task{ID: "t1", Kind: KindAllExport}))
	err := broker.Enqueue(ctx, Task{ID: "t2", Kind: KindAllExport})
	require.Error(t, err)

	// The rejected submission must not leave a pollable PENDING record.
	_, err = broker.Job(ctx, "t2")
	assert.ErrorIs(t, err, ErrUnknownJob)

	job, err := broker.Job(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, StatePending, job.State)
}

func TestStateTerminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateSuccess.Terminal())
	assert.True(t, StateFailure.Terminal())
}
