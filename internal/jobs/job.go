package jobs

import (
	"encoding/json"
	"time"
)

// Kind names a unit of background work.
type Kind string

const (
	KindUserExport    Kind = "user-export"
	KindAllExport     Kind = "all-export"
	KindDailyReminder Kind = "daily-reminder"
	KindMonthlyReport Kind = "monthly-report"
)

// State is the broker-visible lifecycle state of a job.
// A terminal state (SUCCESS or FAILURE) is immutable once set.
type State string

const (
	StatePending State = "PENDING"
	StateRunning State = "RUNNING"
	StateSuccess State = "SUCCESS"
	StateFailure State = "FAILURE"
)

// Terminal reports whether the state can no longer change.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// Task is the payload pushed through the broker.
type Task struct {
	ID   string          `json:"id"`
	Kind Kind            `json:"kind"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Job is the pollable record behind a handle. Result carries the kind-specific
// value (an artifact filename for exports, a summary for batch jobs); Error is
// set only in the FAILURE state.
type Job struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	State     State     `json:"state"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserExportArgs is the argument payload for the user-export kind.
type UserExportArgs struct {
	UserID uint `json:"user_id"`
}
