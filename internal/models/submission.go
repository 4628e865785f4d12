package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus is the submission state machine: pending is the only
// non-terminal state, and a submission takes at most one terminal outcome.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Terminal reports whether the status admits no further transition.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// Submission is a worker's claim against one slot of a task.
// PayableAmount is copied from the task at submission time and never changes,
// so later task edits cannot retroactively change pay.
type Submission struct {
	ID            uuid.UUID        `json:"id"`
	TaskID        uuid.UUID        `json:"task_id"`
	TaskTitle     string           `json:"task_title"`
	WorkerEmail   string           `json:"worker_email"`
	WorkerName    string           `json:"worker_name,omitempty"`
	BuyerEmail    string           `json:"buyer_email"`
	PayableAmount int              `json:"payable_amount"`
	Status        SubmissionStatus `json:"status"`
	Detail        string           `json:"detail,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
