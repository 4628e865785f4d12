package models

import (
	"time"

	"github.com/google/uuid"
)

// Recovery intent kinds. Each names the single step that still has to happen
// to close a half-completed multi-record sequence.
const (
	IntentRefund      = "refund"       // credit AccountEmail by Amount
	IntentTaskDelete  = "task_delete"  // delete TaskID (escrow already refunded)
	IntentTopUpCredit = "topup_credit" // credit AccountEmail by Amount (receipt already written)
	IntentPayoutDebit = "payout_debit" // debit AccountEmail by Amount (payout must be unwound)
)

// RecoveryIntent is the durable record of a pending compensating action.
// The store offers no cross-record transactions, so any sequence that fails
// after its first side effect writes one of these; the reconcile worker
// resumes it until ResolvedAt is set.
type RecoveryIntent struct {
	ID           uuid.UUID  `json:"id"`
	Kind         string     `json:"kind"`
	AccountEmail string     `json:"account_email"`
	TaskID       *uuid.UUID `json:"task_id,omitempty"`
	Amount       int        `json:"amount"`
	Note         string     `json:"note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}
