// Package submissions runs the pending -> approved | rejected state machine
// for a worker's claim against a task slot. Slots are consumed on approval,
// not on submit, so more pending submissions than open slots can exist; the
// conditional slot decrement at approval time is what keeps the counter from
// going negative. Every sequence orders its side effects so that a crash in
// the middle leaves the submission pending — observable and retryable — never
// silently approved without payment. Reject returns the slot before flipping
// status, so a crash between the two leaves an extra slot open against a
// still-pending submission, and a reissued reject increments again; the
// open-slot count can transiently overstate the escrow held until the flip
// lands.
package submissions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/notify"
)

var (
	// ErrNoOpenSlots is returned when a task has no remaining open slots.
	ErrNoOpenSlots = errors.New("no open slots on task")
	// ErrInvalidState is returned when a submission is not in the lifecycle
	// state the requested transition needs (e.g. approving twice).
	ErrInvalidState = errors.New("submission is not pending")
)

// Store is the submission persistence the engine needs.
type Store interface {
	Insert(ctx context.Context, s *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to models.SubmissionStatus) (bool, error)
	ListByWorker(ctx context.Context, workerEmail string) ([]*models.Submission, error)
	ListPendingByBuyer(ctx context.Context, buyerEmail string) ([]*models.Submission, error)
}

// TaskStore is the slot-counting side of the task repository.
type TaskStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	DecrementSlot(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementSlot(ctx context.Context, id uuid.UUID) (bool, error)
}

// Ledger is the payout side of the coin ledger.
type Ledger interface {
	Payout(ctx context.Context, workerEmail string, amount int, taskID uuid.UUID) error
	CompensatePayout(ctx context.Context, workerEmail string, amount int, taskID uuid.UUID) error
}

// Gaps records a recovery intent and returns the gap error to surface.
type Gaps interface {
	Record(ctx context.Context, kind, accountEmail string, taskID *uuid.UUID, amount int, note string, cause error) error
}

type Service struct {
	subs     Store
	tasks    TaskStore
	ledger   Ledger
	gaps     Gaps
	notifier notify.Notifier
	log      *slog.Logger
}

func NewService(subs Store, tasks TaskStore, ledger Ledger, gaps Gaps, notifier notify.Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{subs: subs, tasks: tasks, ledger: ledger, gaps: gaps, notifier: notifier, log: log}
}

// Submit files a worker's claim against one slot of the task. The payable
// amount is frozen from the task at this moment, so later edits cannot change
// pay. The slot counter is not touched: slots are consumed on approval only.
func (s *Service) Submit(ctx context.Context, taskID uuid.UUID, workerEmail, workerName, detail string) (*models.Submission, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.RequiredWorkers <= 0 {
		return nil, ErrNoOpenSlots
	}

	sub := &models.Submission{
		ID:            uuid.New(),
		TaskID:        task.ID,
		TaskTitle:     task.Title,
		WorkerEmail:   workerEmail,
		WorkerName:    workerName,
		BuyerEmail:    task.BuyerEmail,
		PayableAmount: task.Amount,
		Status:        models.SubmissionPending,
		Detail:        detail,
	}
	if err := s.subs.Insert(ctx, sub); err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	s.notifier.Notify(ctx, notify.Args{
		Message:        fmt.Sprintf("%s submitted work for %q", workerEmail, task.Title),
		RecipientEmail: task.BuyerEmail,
		ActorEmail:     workerEmail,
		Route:          "/dashboard/buyer-home",
	})
	return sub, nil
}

// Approve pays the worker from escrow, consumes one slot, and flips the
// submission to approved — in exactly that order, so a crash mid-sequence
// leaves the submission pending instead of approved-but-unpaid. Each committed
// step is unwound when a later conditional update loses its race.
func (s *Service) Approve(ctx context.Context, submissionID uuid.UUID) error {
	sub, err := s.subs.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.Status != models.SubmissionPending {
		return ErrInvalidState
	}

	if err := s.ledger.Payout(ctx, sub.WorkerEmail, sub.PayableAmount, sub.TaskID); err != nil {
		return fmt.Errorf("payout for submission %s: %w", submissionID, err)
	}

	ok, err := s.tasks.DecrementSlot(ctx, sub.TaskID)
	if err != nil {
		return s.unwindPayout(ctx, sub, fmt.Errorf("decrement slot: %w", err))
	}
	if !ok {
		// Slots ran out before this approval: more submissions were filed
		// than the task had capacity for. The submission stays pending for
		// the buyer to reconcile; the payout is taken back.
		return s.unwindPayout(ctx, sub, ErrNoOpenSlots)
	}

	ok, err = s.subs.SetStatus(ctx, sub.ID, models.SubmissionPending, models.SubmissionApproved)
	if err != nil || !ok {
		// A concurrent approve or reject won the status race; undo the slot
		// and the payout this call committed.
		if _, ierr := s.tasks.IncrementSlot(ctx, sub.TaskID); ierr != nil {
			s.log.Error("slot restore failed after lost status race", "submission_id", sub.ID, "task_id", sub.TaskID, "error", ierr)
		}
		cause := err
		if cause == nil {
			cause = ErrInvalidState
		}
		return s.unwindPayout(ctx, sub, cause)
	}

	s.notifier.Notify(ctx, notify.Args{
		Message:        fmt.Sprintf("You earned %d coins from %s for %q", sub.PayableAmount, sub.BuyerEmail, sub.TaskTitle),
		RecipientEmail: sub.WorkerEmail,
		ActorEmail:     sub.BuyerEmail,
		Route:          "/dashboard/worker-home",
	})
	return nil
}

// Reject returns the slot to the task and flips the submission to rejected.
// The escrowed coins never moved, so there is no ledger call: rejection
// returns the slot, not the money.
func (s *Service) Reject(ctx context.Context, submissionID uuid.UUID) error {
	sub, err := s.subs.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.Status != models.SubmissionPending {
		return ErrInvalidState
	}

	if _, err := s.tasks.IncrementSlot(ctx, sub.TaskID); err != nil {
		return fmt.Errorf("return slot to task %s: %w", sub.TaskID, err)
	}

	ok, err := s.subs.SetStatus(ctx, sub.ID, models.SubmissionPending, models.SubmissionRejected)
	if err != nil || !ok {
		// Lost the status race (likely a concurrent approve); take the extra
		// slot back out.
		if _, derr := s.tasks.DecrementSlot(ctx, sub.TaskID); derr != nil {
			s.log.Error("slot restore failed after lost reject race", "submission_id", sub.ID, "task_id", sub.TaskID, "error", derr)
		}
		if err != nil {
			return fmt.Errorf("reject submission %s: %w", submissionID, err)
		}
		return ErrInvalidState
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	return s.subs.GetByID(ctx, id)
}

func (s *Service) ListByWorker(ctx context.Context, workerEmail string) ([]*models.Submission, error) {
	return s.subs.ListByWorker(ctx, workerEmail)
}

func (s *Service) ListPendingByBuyer(ctx context.Context, buyerEmail string) ([]*models.Submission, error) {
	return s.subs.ListPendingByBuyer(ctx, buyerEmail)
}

// unwindPayout debits the payout back from the worker. If the worker has
// already spent the coins the conditional debit fails and the imbalance is
// recorded as a recovery intent.
func (s *Service) unwindPayout(ctx context.Context, sub *models.Submission, cause error) error {
	if err := s.ledger.CompensatePayout(ctx, sub.WorkerEmail, sub.PayableAmount, sub.TaskID); err != nil {
		return s.gaps.Record(ctx, models.IntentPayoutDebit, sub.WorkerEmail, &sub.TaskID, sub.PayableAmount,
			"payout committed but approval did not complete, compensating debit failed", errors.Join(cause, err))
	}
	return cause
}
