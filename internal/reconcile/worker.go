package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/quickgig/backend/internal/models"
)

// Args identifies one intent to resume.
type Args struct {
	IntentID uuid.UUID `json:"intent_id"`
}

func (Args) Kind() string { return "reconcile_intent" }

// Ledger is the subset of ledger operations reconciliation can replay.
type Ledger interface {
	Refund(ctx context.Context, buyerEmail string, amount int, taskID uuid.UUID) error
	CreditTopUp(ctx context.Context, email string, coins int) error
	CompensatePayout(ctx context.Context, workerEmail string, amount int, taskID uuid.UUID) error
}

// TaskDeleter deletes a task whose escrow was already refunded.
type TaskDeleter interface {
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// IntentResolver loads and closes intents.
type IntentResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.RecoveryIntent, error)
	MarkResolved(ctx context.Context, id uuid.UUID) (bool, error)
}

// Worker resumes recovery intents. Semantics are at-least-once: the step runs,
// then the intent is resolved, and a crash in between means one extra attempt
// on the next run. Every replayed step is either idempotent (task delete) or
// conditional (debits), so a retry cannot corrupt balances further than the
// gap it is repairing.
type Worker struct {
	river.WorkerDefaults[Args]
	intents IntentResolver
	ledger  Ledger
	tasks   TaskDeleter
	log     *slog.Logger
}

func NewWorker(intents IntentResolver, ledger Ledger, tasks TaskDeleter, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{intents: intents, ledger: ledger, tasks: tasks, log: log}
}

func (w *Worker) Work(ctx context.Context, job *river.Job[Args]) error {
	intent, err := w.intents.GetByID(ctx, job.Args.IntentID)
	if err != nil {
		return fmt.Errorf("load intent %s: %w", job.Args.IntentID, err)
	}
	if intent.ResolvedAt != nil {
		return nil
	}

	handled, err := w.resume(ctx, intent)
	if err != nil {
		return fmt.Errorf("resume intent %s (%s): %w", intent.ID, intent.Kind, err)
	}
	if !handled {
		// Unknown kind stays unresolved for manual repair.
		w.log.Error("unknown intent kind, leaving for manual repair", "intent_id", intent.ID, "kind", intent.Kind)
		return nil
	}

	if _, err := w.intents.MarkResolved(ctx, intent.ID); err != nil {
		return fmt.Errorf("mark intent %s resolved: %w", intent.ID, err)
	}
	w.log.Info("recovery intent resolved", "intent_id", intent.ID, "kind", intent.Kind, "account", intent.AccountEmail, "amount", intent.Amount)
	return nil
}

func (w *Worker) resume(ctx context.Context, intent *models.RecoveryIntent) (bool, error) {
	taskID := uuid.Nil
	if intent.TaskID != nil {
		taskID = *intent.TaskID
	}
	switch intent.Kind {
	case models.IntentRefund:
		return true, w.ledger.Refund(ctx, intent.AccountEmail, intent.Amount, taskID)
	case models.IntentTopUpCredit:
		return true, w.ledger.CreditTopUp(ctx, intent.AccountEmail, intent.Amount)
	case models.IntentPayoutDebit:
		return true, w.ledger.CompensatePayout(ctx, intent.AccountEmail, intent.Amount, taskID)
	case models.IntentTaskDelete:
		// Already-gone is success: the delete is what we were retrying.
		_, err := w.tasks.Delete(ctx, taskID)
		return true, err
	default:
		return false, nil
	}
}
