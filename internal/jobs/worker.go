package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HandlerFunc executes one job kind. The returned string becomes the job's
// result value; a non-nil error moves the job to FAILURE.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (string, error)

const dequeueWait = 2 * time.Second

// Pool consumes the broker with a fixed number of workers. Each dequeued
// task is marked RUNNING, executed through its registered handler, and moved
// to exactly one terminal state. Handler panics fail the job, not the pool.
type Pool struct {
	broker   Broker
	logger   *zap.Logger
	handlers map[Kind]HandlerFunc
	workers  int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(broker Broker, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		broker:   broker,
		logger:   logger,
		handlers: make(map[Kind]HandlerFunc),
		workers:  workers,
	}
}

// Register binds a handler to a job kind. Must be called before Start.
func (p *Pool) Register(kind Kind, handler HandlerFunc) {
	p.handlers[kind] = handler
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	p.logger.Info("job workers started", zap.Int("workers", p.workers))
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("job workers stopped")
}

func (p *Pool) run(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := p.broker.Dequeue(ctx, dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Int("worker", workerID), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}
		p.execute(ctx, workerID, task)
	}
}

func (p *Pool) execute(ctx context.Context, workerID int, task *Task) {
	logger := p.logger.With(
		zap.String("job_id", task.ID),
		zap.String("kind", string(task.Kind)),
		zap.Int("worker", workerID),
	)

	handler, ok := p.handlers[task.Kind]
	if !ok {
		logger.Error("no handler registered for kind")
		p.finish(ctx, task.ID, "", fmt.Errorf("no handler for kind %q", task.Kind))
		return
	}

	if err := p.broker.SetState(ctx, task.ID, StateRunning, "", ""); err != nil {
		logger.Warn("mark running failed", zap.Error(err))
	}

	// Once dequeued, a job runs to completion even across shutdown; there is
	// no cancellation contract for submitted work.
	result, err := p.runHandler(context.Background(), handler, task.Args)
	if err != nil {
		logger.Error("job failed", zap.Error(err))
	} else {
		logger.Info("job succeeded", zap.String("result", result))
	}
	p.finish(ctx, task.ID, result, err)
}

func (p *Pool) runHandler(ctx context.Context, handler HandlerFunc, args json.RawMessage) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return handler(ctx, args)
}

func (p *Pool) finish(_ context.Context, id, result string, jobErr error) {
	state := StateSuccess
	errMsg := ""
	if jobErr != nil {
		state = StateFailure
		errMsg = jobErr.Error()
		result = ""
	}
	// Terminal state is recorded on a fresh context so a shutdown in progress
	// cannot lose the outcome of a finished job.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.broker.SetState(ctx, id, state, result, errMsg); err != nil {
		p.logger.Error("record terminal state failed",
			zap.String("job_id", id), zap.Error(err))
	}
}
