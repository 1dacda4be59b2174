package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnknownJob is returned when a handle does not resolve to a job record,
// either because it never existed or because it aged out of retention.
var ErrUnknownJob = errors.New("unknown job handle")

// Broker moves tasks from submitters to workers and keeps the pollable state
// behind each handle. Delivery is at-least-once; state for a handle must be
// readable from any process, not just the submitter.
type Broker interface {
	// Enqueue creates the job record in the pending state and pushes the task.
	Enqueue(ctx context.Context, task Task) error
	// Dequeue pops the next task, blocking up to timeout. Returns nil with no
	// error when the wait times out.
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
	// SetState transitions a job. Transitions out of a terminal state are
	// silently ignored.
	SetState(ctx context.Context, id string, state State, result, errMsg string) error
	// Job loads the record behind a handle.
	Job(ctx context.Context, id string) (*Job, error)
}

const (
	queueKey     = "jobs:queue"
	jobKeyPrefix = "jobs:job:"
)

type redisBroker struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisBroker builds a Broker on a Redis list plus one hash per handle.
// Handles expire after the retention period.
func NewRedisBroker(client *redis.Client, retention time.Duration) Broker {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &redisBroker{client: client, retention: retention}
}

func (b *redisBroker) jobKey(id string) string {
	return jobKeyPrefix + id
}

func (b *redisBroker) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	key := b.jobKey(task.ID)
	pipe := b.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"kind":       string(task.Kind),
		"state":      string(StatePending),
		"result":     "",
		"error":      "",
		"created_at": now,
		"updated_at": now,
	})
	pipe.Expire(ctx, key, b.retention)
	pipe.LPush(ctx, queueKey, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

func (b *redisBroker) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := b.client.BRPop(ctx, timeout, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue job: unexpected reply length %d", len(res))
	}
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

func (b *redisBroker) SetState(ctx context.Context, id string, state State, result, errMsg string) error {
	key := b.jobKey(id)

	current, err := b.client.HGet(ctx, key, "state").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read job state: %w", err)
	}
	if State(current).Terminal() {
		return nil
	}

	pipe := b.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"state":      string(state),
		"result":     result,
		"error":      errMsg,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, b.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set job state: %w", err)
	}
	return nil
}

func (b *redisBroker) Job(ctx context.Context, id string) (*Job, error) {
	fields, err := b.client.HGetAll(ctx, b.jobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrUnknownJob
	}

	job := &Job{
		ID:     id,
		Kind:   Kind(fields["kind"]),
		State:  State(fields["state"]),
		Result: fields["result"],
		Error:  fields["error"],
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		job.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
		job.UpdatedAt = t
	}
	return job, nil
}

// memoryBroker is a process-local Broker used in tests and as a fallback
// when Redis is unreachable at startup. Handles are only visible inside the
// owning process.
type memoryBroker struct {
	mu    sync.Mutex
	jobs  map[string]*Job
	tasks chan Task
}

// NewMemoryBroker returns an in-process Broker.
func NewMemoryBroker() Broker {
	return &memoryBroker{
		jobs:  make(map[string]*Job),
		tasks: make(chan Task, 1024),
	}
}

func (b *memoryBroker) Enqueue(_ context.Context, task Task) error {
	now := time.Now().UTC()
	b.mu.Lock()
	b.jobs[task.ID] = &Job{
		ID:        task.ID,
		Kind:      task.Kind,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.mu.Unlock()

	select {
	case b.tasks <- task:
		return nil
	default:
		// Submit failed, so no handle is handed out; the record must not
		// linger as a pollable PENDING orphan.
		b.mu.Lock()
		delete(b.jobs, task.ID)
		b.mu.Unlock()
		return errors.New("memory broker queue full")
	}
}

func (b *memoryBroker) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case task := <-b.tasks:
		return &task, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *memoryBroker) SetState(_ context.Context, id string, state State, result, errMsg string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[id]
	if !ok {
		return ErrUnknownJob
	}
	if job.State.Terminal() {
		return nil
	}
	job.State = state
	job.Result = result
	job.Error = errMsg
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (b *memoryBroker) Job(_ context.Context, id string) (*Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[id]
	if !ok {
		return nil, ErrUnknownJob
	}
	copied := *job
	return &copied, nil
}
