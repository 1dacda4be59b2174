package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// waitForTerminal polls the broker until the job leaves the running states.
func waitForTerminal(t *testing.T, broker Broker, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := broker.Job(context.Background(), id)
		require.NoError(t, err)
		if job.State.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return nil
}

func TestPoolExecutesJob(t *testing.T) {
	broker := NewMemoryBroker()
	queue := NewQueue(broker)

	pool := NewPool(broker, 2, zap.NewNop())
	pool.Register(KindAllExport, func(_ context.Context, _ json.RawMessage) (string, error) {
		return "all_scores_x.csv", nil
	})
	pool.Start()
	defer pool.Stop()

	handle, err := queue.Submit(context.Background(), KindAllExport, nil)
	require.NoError(t, err)

	job := waitForTerminal(t, broker, handle)
	assert.Equal(t, StateSuccess, job.State)
	assert.Equal(t, "all_scores_x.csv", job.Result)
	assert.Empty(t, job.Error)
}

func TestPoolRecordsFailure(t *testing.T) {
	broker := NewMemoryBroker()
	queue := NewQueue(broker)

	pool := NewPool(broker, 1, zap.NewNop())
	pool.Register(KindDailyReminder, func(_ context.Context, _ json.RawMessage) (string, error) {
		return "", errors.New("smtp config missing")
	})
	pool.Start()
	defer pool.Stop()

	handle, err := queue.Submit(context.Background(), KindDailyReminder, nil)
	require.NoError(t, err)

	job := waitForTerminal(t, broker, handle)
	assert.Equal(t, StateFailure, job.State)
	assert.Equal(t, "smtp config missing", job.Error)
	assert.Empty(t, job.Result)
}

func TestPoolSurvivesHandlerPanic(t *testing.T) {
	broker := NewMemoryBroker()
	queue := NewQueue(broker)

	pool := NewPool(broker, 1, zap.NewNop())
	pool.Register(KindMonthlyReport, func(_ context.Context, _ json.RawMessage) (string, error) {
		panic("template blew up")
	})
	pool.Register(KindAllExport, func(_ context.Context, _ json.RawMessage) (string, error) {
		return "ok.csv", nil
	})
	pool.Start()
	defer pool.Stop()

	ctx := context.Background()
	panicked, err := queue.Submit(ctx, KindMonthlyReport, nil)
	require.NoError(t, err)

	job := waitForTerminal(t, broker, panicked)
	assert.Equal(t, StateFailure, job.State)
	assert.Contains(t, job.Error, "template blew up")

	// The worker that caught the panic must keep consuming.
	next, err := queue.Submit(ctx, KindAllExport, nil)
	require.NoError(t, err)
	job = waitForTerminal(t, broker, next)
	assert.Equal(t, StateSuccess, job.State)
}

func TestPoolFailsUnregisteredKind(t *testing.T) {
	broker := NewMemoryBroker()
	queue := NewQueue(broker)

	pool := NewPool(broker, 1, zap.NewNop())
	pool.Start()
	defer pool.Stop()

	handle, err := queue.Submit(context.Background(), KindUserExport, UserExportArgs{UserID: 1})
	require.NoError(t, err)

	job := waitForTerminal(t, broker, handle)
	assert.Equal(t, StateFailure, job.State)
	assert.Contains(t, job.Error, "no handler")
}
