// Package reconcile closes the gaps a multi-record sequence can leave behind.
// The record store offers no cross-record transactions, so a sequence that
// fails after its first side effect writes a durable recovery intent; the
// worker here resumes the missing step until the intent is resolved.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/models"
)

// ErrReconciliationGap marks errors for a compensating action that could not
// be completed inline. Callers match it with errors.Is.
var ErrReconciliationGap = errors.New("reconciliation gap")

// GapError carries enough data (entity ids, amounts) for manual or automated
// repair of a half-completed sequence.
type GapError struct {
	Kind         string
	AccountEmail string
	TaskID       *uuid.UUID
	Amount       int
	IntentID     uuid.UUID
	Err          error
}

func (e *GapError) Error() string {
	return fmt.Sprintf("reconciliation gap (%s, account=%s, amount=%d, intent=%s): %v",
		e.Kind, e.AccountEmail, e.Amount, e.IntentID, e.Err)
}

func (e *GapError) Unwrap() error { return e.Err }

func (e *GapError) Is(target error) bool { return target == ErrReconciliationGap }

// IntentStore is the subset of the intent repository the recorder needs.
type IntentStore interface {
	Insert(ctx context.Context, in *models.RecoveryIntent) error
}

// EnqueueFunc schedules a reconcile job for the intent. Typically a closure
// over river.Client.Insert.
type EnqueueFunc func(ctx context.Context, intentID uuid.UUID) error

// Recorder persists recovery intents and hands back the GapError the engine
// surfaces to its caller.
type Recorder struct {
	intents IntentStore
	enqueue EnqueueFunc
	log     *slog.Logger
}

func NewRecorder(intents IntentStore, enqueue EnqueueFunc, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{intents: intents, enqueue: enqueue, log: log}
}

// Record writes the intent, enqueues a reconcile job for it, and returns the
// GapError describing the gap. The intent write itself is the last line of
// defense: if even that fails, the gap is logged with everything an operator
// needs and the GapError still surfaces.
func (r *Recorder) Record(ctx context.Context, kind, accountEmail string, taskID *uuid.UUID, amount int, note string, cause error) error {
	intent := &models.RecoveryIntent{
		ID:           uuid.New(),
		Kind:         kind,
		AccountEmail: accountEmail,
		TaskID:       taskID,
		Amount:       amount,
		Note:         note,
	}
	if err := r.intents.Insert(ctx, intent); err != nil {
		r.log.Error("recovery intent write failed, gap needs manual repair",
			"kind", kind, "account", accountEmail, "amount", amount, "note", note,
			"cause", cause, "error", err)
	} else if r.enqueue != nil {
		if err := r.enqueue(ctx, intent.ID); err != nil {
			// The boot-time sweep will pick the intent up.
			r.log.Warn("reconcile enqueue failed", "intent_id", intent.ID, "error", err)
		}
	}
	return &GapError{
		Kind:         kind,
		AccountEmail: accountEmail,
		TaskID:       taskID,
		Amount:       amount,
		IntentID:     intent.ID,
		Err:          cause,
	}
}
