// Package ledger applies every coin movement in the system. It is the sole
// writer of account balances. Each operation is one logical movement; debits
// go through the store's conditional update so no balance ever goes negative,
// and coins enter the system only via top-up and leave only via withdrawal.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/models"
)

// ErrInsufficientFunds is returned when a conditional debit fails because the
// account balance is below the requested amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// AccountStore is the minimal account access the ledger needs.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	DebitIfSufficient(ctx context.Context, email string, amount int) (bool, error)
	Credit(ctx context.Context, email string, amount int) (newBalance int, err error)
}

// JournalStore appends audit entries. Journal writes are best-effort: a failed
// append is logged, never surfaced, so the audit trail cannot block a movement
// that has already been applied.
type JournalStore interface {
	Append(ctx context.Context, e *models.CoinEntry) error
}

type Service struct {
	accounts AccountStore
	journal  JournalStore
	log      *slog.Logger
}

func NewService(accounts AccountStore, journal JournalStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{accounts: accounts, journal: journal, log: log}
}

// Escrow debits the buyer by amount to back a task's open slots.
func (s *Service) Escrow(ctx context.Context, buyerEmail string, amount int, taskID uuid.UUID) error {
	return s.debit(ctx, buyerEmail, amount, models.CoinEntryEscrowLock, &taskID)
}

// Refund credits unconsumed escrow back to the buyer.
func (s *Service) Refund(ctx context.Context, buyerEmail string, amount int, taskID uuid.UUID) error {
	return s.credit(ctx, buyerEmail, amount, models.CoinEntryRefund, &taskID)
}

// Payout credits a worker for an approved submission.
func (s *Service) Payout(ctx context.Context, workerEmail string, amount int, taskID uuid.UUID) error {
	return s.credit(ctx, workerEmail, amount, models.CoinEntryPayout, &taskID)
}

// CompensatePayout unwinds a payout whose follow-up step failed. The debit is
// conditional like every other: if the worker has already spent the coins the
// caller gets ErrInsufficientFunds and must record a recovery intent.
func (s *Service) CompensatePayout(ctx context.Context, workerEmail string, amount int, taskID uuid.UUID) error {
	return s.debit(ctx, workerEmail, amount, models.CoinEntryCompensation, &taskID)
}

// CreditTopUp credits coins purchased through the payment processor. This is
// one of the two points where the system's total coin supply changes.
func (s *Service) CreditTopUp(ctx context.Context, email string, coins int) error {
	return s.credit(ctx, email, coins, models.CoinEntryTopUp, nil)
}

// DebitForWithdrawal removes coins being paid out externally, the supply's
// only exit point.
func (s *Service) DebitForWithdrawal(ctx context.Context, workerEmail string, amount int) error {
	return s.debit(ctx, workerEmail, amount, models.CoinEntryWithdrawalDebit, nil)
}

// RestoreWithdrawal returns a withdrawal debit whose status flip lost a race,
// journaled under its own entry type so the audit trail pairs the debit with
// its restore instead of showing a task refund against no task.
func (s *Service) RestoreWithdrawal(ctx context.Context, workerEmail string, amount int) error {
	return s.credit(ctx, workerEmail, amount, models.CoinEntryWithdrawalRestore, nil)
}

func (s *Service) debit(ctx context.Context, email string, amount int, entryType string, taskID *uuid.UUID) error {
	if amount < 0 {
		return fmt.Errorf("ledger: negative debit %d for %s", amount, email)
	}
	if amount == 0 {
		return nil
	}
	ok, err := s.accounts.DebitIfSufficient(ctx, email, amount)
	if err != nil {
		return fmt.Errorf("debit %s: %w", email, err)
	}
	if !ok {
		return ErrInsufficientFunds
	}
	s.appendEntry(ctx, email, -amount, entryType, taskID, nil)
	return nil
}

func (s *Service) credit(ctx context.Context, email string, amount int, entryType string, taskID *uuid.UUID) error {
	if amount < 0 {
		return fmt.Errorf("ledger: negative credit %d for %s", amount, email)
	}
	if amount == 0 {
		return nil
	}
	newBalance, err := s.accounts.Credit(ctx, email, amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", email, err)
	}
	s.appendEntry(ctx, email, amount, entryType, taskID, &newBalance)
	return nil
}

func (s *Service) appendEntry(ctx context.Context, email string, amount int, entryType string, taskID *uuid.UUID, balanceAfter *int) {
	entry := &models.CoinEntry{
		ID:           uuid.New(),
		AccountEmail: email,
		TaskID:       taskID,
		EntryType:    entryType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		s.log.Error("coin journal append failed", "entry_type", entryType, "account", email, "amount", amount, "error", err)
	}
}
