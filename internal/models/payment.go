package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentReceipt records one external coin purchase. Append-only: receipts
// are never mutated after insert.
type PaymentReceipt struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Price     int       `json:"price"`
	Coins     int       `json:"coins"`
	TxRef     string    `json:"tx_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
