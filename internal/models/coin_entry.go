package models

import (
	"time"

	"github.com/google/uuid"
)

// Coin ledger entry_type values. The journal is an append-only audit trail
// of every coin movement; engines write it but never read it back.
const (
	CoinEntryEscrowLock        = "escrow_lock"
	CoinEntryRefund            = "refund"
	CoinEntryPayout            = "payout"
	CoinEntryTopUp             = "topup"
	CoinEntryWithdrawalDebit   = "withdrawal_debit"
	CoinEntryWithdrawalRestore = "withdrawal_restore"
	CoinEntryCompensation      = "compensation"
)

// CoinEntry is a single row in the coin journal. Amount is the signed delta
// applied to the account's balance.
type CoinEntry struct {
	ID           uuid.UUID  `json:"id"`
	AccountEmail string     `json:"account_email"`
	TaskID       *uuid.UUID `json:"task_id,omitempty"`
	EntryType    string     `json:"entry_type"`
	Amount       int        `json:"amount"`
	BalanceAfter *int       `json:"balance_after,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
