// Package withdrawals handles cashing earned coins out as real payouts.
// Filing a request has no ledger effect; the coins leave the account only
// when an admin approves, and the balance is re-checked at that moment
// because it may have dropped since the request was filed.
package withdrawals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/ledger"
	"github.com/quickgig/backend/internal/models"
)

// ErrInvalidState is returned when the withdrawal is not pending.
var ErrInvalidState = errors.New("withdrawal is not pending")

// ErrInvalidAmount is returned for non-positive withdrawal amounts.
var ErrInvalidAmount = errors.New("withdrawal amount must be positive")

// Store is the withdrawal persistence the engine needs.
type Store interface {
	Insert(ctx context.Context, w *models.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	MarkApproved(ctx context.Context, id uuid.UUID) (bool, error)
	ListByWorker(ctx context.Context, workerEmail string) ([]*models.Withdrawal, error)
	ListPending(ctx context.Context) ([]*models.Withdrawal, error)
}

// AccountReader checks the worker's balance when a request is filed.
type AccountReader interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Ledger is the debit side of the coin ledger, plus the restore path for a
// debit whose approval lost the status race.
type Ledger interface {
	DebitForWithdrawal(ctx context.Context, workerEmail string, amount int) error
	RestoreWithdrawal(ctx context.Context, workerEmail string, amount int) error
}

type Service struct {
	withdrawals Store
	accounts    AccountReader
	ledger      Ledger
	log         *slog.Logger
}

func NewService(withdrawals Store, accounts AccountReader, l Ledger, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{withdrawals: withdrawals, accounts: accounts, ledger: l, log: log}
}

// Request files a pending withdrawal. The balance check here is early
// feedback only — the authoritative check is the conditional debit at
// approval time.
func (s *Service) Request(ctx context.Context, workerEmail string, amount int, paymentSystem, accountNumber string) (*models.Withdrawal, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	acc, err := s.accounts.GetByEmail(ctx, workerEmail)
	if err != nil {
		return nil, err
	}
	if acc.Coin < amount {
		return nil, ledger.ErrInsufficientFunds
	}

	w := &models.Withdrawal{
		ID:            uuid.New(),
		WorkerEmail:   workerEmail,
		CoinAmount:    amount,
		PaymentSystem: paymentSystem,
		AccountNumber: accountNumber,
		Status:        models.WithdrawalPending,
	}
	if err := s.withdrawals.Insert(ctx, w); err != nil {
		return nil, fmt.Errorf("insert withdrawal: %w", err)
	}
	return w, nil
}

// Approve debits the worker and flips the withdrawal to approved, debit
// first so a crash mid-sequence leaves the request pending and retryable.
// A balance that has dropped below the requested amount since the request
// was filed surfaces as ErrInsufficientFunds with the request untouched.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) error {
	w, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w.Status != models.WithdrawalPending {
		return ErrInvalidState
	}

	if err := s.ledger.DebitForWithdrawal(ctx, w.WorkerEmail, w.CoinAmount); err != nil {
		return err
	}

	ok, err := s.withdrawals.MarkApproved(ctx, id)
	if err != nil || !ok {
		// Lost the status race to a concurrent approve: give the coins back,
		// exactly one debit may stand per withdrawal.
		if rerr := s.ledger.RestoreWithdrawal(ctx, w.WorkerEmail, w.CoinAmount); rerr != nil {
			s.log.Error("withdrawal debit restore failed", "withdrawal_id", id, "worker", w.WorkerEmail, "amount", w.CoinAmount, "error", rerr)
		}
		if err != nil {
			return fmt.Errorf("approve withdrawal %s: %w", id, err)
		}
		return ErrInvalidState
	}
	return nil
}

func (s *Service) ListByWorker(ctx context.Context, workerEmail string) ([]*models.Withdrawal, error) {
	return s.withdrawals.ListByWorker(ctx, workerEmail)
}

func (s *Service) ListPending(ctx context.Context) ([]*models.Withdrawal, error) {
	return s.withdrawals.ListPending(ctx)
}
