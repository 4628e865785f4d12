// Package payments handles coin purchases through the external payment
// processor. The core never computes real-currency charges: the processor
// maps a price to a coin count from a fixed table, the receipt is written
// first as durable evidence, and only then is the account credited.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/models"
)

// ErrInvalidPriceTier is returned for a price not in the processor's table.
var ErrInvalidPriceTier = errors.New("price is not a valid tier")

// Processor converts a real-currency price into coins.
type Processor interface {
	CoinsForPrice(price int) (int, error)
}

// FixedProcessor is the platform's fixed price table.
type FixedProcessor struct{}

var priceTable = map[int]int{
	1:  10,
	10: 150,
	20: 500,
	35: 1000,
}

func (FixedProcessor) CoinsForPrice(price int) (int, error) {
	coins, ok := priceTable[price]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPriceTier, price)
	}
	return coins, nil
}

// ReceiptStore appends payment receipts.
type ReceiptStore interface {
	Insert(ctx context.Context, p *models.PaymentReceipt) error
	ListByEmail(ctx context.Context, email string) ([]*models.PaymentReceipt, error)
}

// Ledger is the credit entry point for purchased coins.
type Ledger interface {
	CreditTopUp(ctx context.Context, email string, coins int) error
}

// Gaps records a recovery intent and returns the gap error to surface.
type Gaps interface {
	Record(ctx context.Context, kind, accountEmail string, taskID *uuid.UUID, amount int, note string, cause error) error
}

type Service struct {
	receipts  ReceiptStore
	ledger    Ledger
	processor Processor
	gaps      Gaps
	log       *slog.Logger
}

func NewService(receipts ReceiptStore, l Ledger, processor Processor, gaps Gaps, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{receipts: receipts, ledger: l, processor: processor, gaps: gaps, log: log}
}

// TopUp converts the paid price to coins, writes the append-only receipt, and
// credits the account. A credit that fails after the receipt was written is a
// recorded gap: the purchase is evidenced, the coins arrive via reconcile.
func (s *Service) TopUp(ctx context.Context, email string, price int, txRef string) (*models.PaymentReceipt, error) {
	coins, err := s.processor.CoinsForPrice(price)
	if err != nil {
		return nil, err
	}

	receipt := &models.PaymentReceipt{
		ID:    uuid.New(),
		Email: email,
		Price: price,
		Coins: coins,
		TxRef: txRef,
	}
	if err := s.receipts.Insert(ctx, receipt); err != nil {
		return nil, fmt.Errorf("insert payment receipt: %w", err)
	}

	if err := s.ledger.CreditTopUp(ctx, email, coins); err != nil {
		return nil, s.gaps.Record(ctx, models.IntentTopUpCredit, email, nil, coins,
			"payment receipt written but coin credit failed", err)
	}
	return receipt, nil
}

func (s *Service) History(ctx context.Context, email string) ([]*models.PaymentReceipt, error) {
	return s.receipts.ListByEmail(ctx, email)
}
