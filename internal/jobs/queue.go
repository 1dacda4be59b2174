package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Queue is the submit/poll client used by the HTTP layer. Submission returns
// an opaque handle immediately; execution happens in the worker pool, which
// is only reachable through the broker.
type Queue struct {
	broker Broker
}

func NewQueue(broker Broker) *Queue {
	return &Queue{broker: broker}
}

// Submit validates the arguments for the kind, enqueues the task and returns
// its handle. A broker failure is surfaced to the caller because no handle
// can be issued.
func (q *Queue) Submit(ctx context.Context, kind Kind, args interface{}) (string, error) {
	if err := validateArgs(kind, args); err != nil {
		return "", err
	}

	var raw json.RawMessage
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("encode job args: %w", err)
		}
		raw = encoded
	}

	task := Task{
		ID:   uuid.NewString(),
		Kind: kind,
		Args: raw,
	}
	if err := q.broker.Enqueue(ctx, task); err != nil {
		return "", err
	}
	return task.ID, nil
}

// Status polls the job behind a handle. Safe for repeated and concurrent
// calls from any process sharing the broker.
func (q *Queue) Status(ctx context.Context, handle string) (*Job, error) {
	return q.broker.Job(ctx, handle)
}

// validateArgs rejects malformed payloads at submit time, before anything
// reaches the broker.
func validateArgs(kind Kind, args interface{}) error {
	switch kind {
	case KindUserExport:
		ua, ok := args.(UserExportArgs)
		if !ok {
			return fmt.Errorf("user-export requires UserExportArgs, got %T", args)
		}
		if ua.UserID == 0 {
			return fmt.Errorf("user-export requires a user id")
		}
		return nil
	case KindAllExport, KindDailyReminder, KindMonthlyReport:
		if args != nil {
			return fmt.Errorf("%s takes no arguments", kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown job kind %q", kind)
	}
}
