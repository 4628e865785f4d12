// Package tasks manages the task lifecycle and its coupling to escrow.
// Creation escrows amount * required_workers from the buyer before the task
// record exists; deletion refunds whatever escrow the remaining open slots
// still hold. Both are two-step sequences over a store without cross-record
// transactions, so each compensates on partial failure and records a recovery
// intent when even the compensation cannot complete.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/reconcile"
	"github.com/quickgig/backend/internal/repository"
)

// ErrInvalidInput is returned for task parameters that can never be valid
// (empty title, non-positive amount or slot count).
var ErrInvalidInput = errors.New("invalid task input")

// Store is the task persistence the engine needs.
type Store interface {
	Insert(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, e repository.TaskEdit) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]*models.Task, error)
	ListAvailable(ctx context.Context) ([]*models.Task, error)
}

// Ledger is the subset of coin operations the task lifecycle moves money with.
type Ledger interface {
	Escrow(ctx context.Context, buyerEmail string, amount int, taskID uuid.UUID) error
	Refund(ctx context.Context, buyerEmail string, amount int, taskID uuid.UUID) error
}

// Gaps records a recovery intent and returns the gap error to surface.
type Gaps interface {
	Record(ctx context.Context, kind, accountEmail string, taskID *uuid.UUID, amount int, note string, cause error) error
}

type Service struct {
	tasks  Store
	ledger Ledger
	gaps   Gaps
	log    *slog.Logger
}

func NewService(tasks Store, ledger Ledger, gaps Gaps, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{tasks: tasks, ledger: ledger, gaps: gaps, log: log}
}

// CreateTaskInput carries the buyer-supplied task fields.
type CreateTaskInput struct {
	Title           string
	Detail          string
	Amount          int
	RequiredWorkers int
	CompletionDate  time.Time
	ImageURL        string
	SubmissionInfo  string
}

// Create escrows the full budget from the buyer, then inserts the task.
// If the insert fails after the escrow succeeded, the escrow is refunded
// before the error surfaces; a refund that also fails becomes a
// reconciliation gap, never a silent inconsistency.
func (s *Service) Create(ctx context.Context, buyerEmail string, in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" || in.Amount <= 0 || in.RequiredWorkers <= 0 {
		return nil, ErrInvalidInput
	}
	total := in.Amount * in.RequiredWorkers
	task := &models.Task{
		ID:              uuid.New(),
		BuyerEmail:      buyerEmail,
		Title:           in.Title,
		Detail:          in.Detail,
		Amount:          in.Amount,
		RequiredWorkers: in.RequiredWorkers,
		CompletionDate:  in.CompletionDate,
		ImageURL:        in.ImageURL,
		SubmissionInfo:  in.SubmissionInfo,
	}

	if err := s.ledger.Escrow(ctx, buyerEmail, total, task.ID); err != nil {
		return nil, err
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		if rerr := s.ledger.Refund(ctx, buyerEmail, total, task.ID); rerr != nil {
			return nil, s.gaps.Record(ctx, models.IntentRefund, buyerEmail, &task.ID, total,
				"task insert failed, escrow refund also failed", errors.Join(err, rerr))
		}
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// Edit replaces the descriptive fields only. Amount and required_workers are
// untouchable here: changing them after slots are escrowed would break the
// escrow invariant.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, e repository.TaskEdit) error {
	if e.Title == "" {
		return ErrInvalidInput
	}
	ok, err := s.tasks.UpdateDetails(ctx, id, e)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

// Delete refunds the unconsumed escrow (amount * remaining slots) to the
// buyer, then removes the task. A delete that fails after the refund leaves a
// task whose escrow is already back with the buyer; that gap is recorded and
// retried rather than dropped.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	refund := task.EscrowedBalance()

	if refund > 0 {
		if err := s.ledger.Refund(ctx, task.BuyerEmail, refund, task.ID); err != nil {
			// No side effect yet; safe to surface and retry the whole delete.
			return fmt.Errorf("refund escrow for task %s: %w", id, err)
		}
	}

	ok, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return s.gaps.Record(ctx, models.IntentTaskDelete, task.BuyerEmail, &task.ID, refund,
			"escrow refunded but task delete failed", err)
	}
	if !ok {
		// A concurrent delete already refunded this escrow; our refund
		// double-credited the buyer and must be clawed back.
		return s.gaps.Record(ctx, models.IntentPayoutDebit, task.BuyerEmail, &task.ID, refund,
			"task deleted concurrently, duplicate refund must be debited", nil)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *Service) ListByBuyer(ctx context.Context, buyerEmail string) ([]*models.Task, error) {
	return s.tasks.ListByBuyer(ctx, buyerEmail)
}

// ListAvailable returns tasks with open slots, the worker-facing feed.
func (s *Service) ListAvailable(ctx context.Context) ([]*models.Task, error) {
	return s.tasks.ListAvailable(ctx)
}

var _ Gaps = (*reconcile.Recorder)(nil)
