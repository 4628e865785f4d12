package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a unit of paid work posted by a buyer. RequiredWorkers counts the
// remaining open slots; the escrowed balance for a task is always
// Amount * RequiredWorkers, so escrow is never stored separately.
// RequiredWorkers moves only through the submission engine (approve/reject)
// and task deletion, never through edits.
type Task struct {
	ID              uuid.UUID `json:"id"`
	BuyerEmail      string    `json:"buyer_email"`
	Title           string    `json:"title"`
	Detail          string    `json:"detail"`
	Amount          int       `json:"amount"`
	RequiredWorkers int       `json:"required_workers"`
	CompletionDate  time.Time `json:"completion_date"`
	ImageURL        string    `json:"image_url,omitempty"`
	SubmissionInfo  string    `json:"submission_info,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EscrowedBalance is the coin amount currently held against the task's
// open slots.
func (t *Task) EscrowedBalance() int {
	return t.Amount * t.RequiredWorkers
}
