package models

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalStatus transitions exactly once, pending -> approved.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
)

// Withdrawal is a worker's request to cash earned coins out as a real
// payout. Funds stay in the account until approval debits them.
type Withdrawal struct {
	ID            uuid.UUID        `json:"id"`
	WorkerEmail   string           `json:"worker_email"`
	CoinAmount    int              `json:"coin_amount"`
	PaymentSystem string           `json:"payment_system,omitempty"`
	AccountNumber string           `json:"account_number,omitempty"`
	Status        WithdrawalStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
