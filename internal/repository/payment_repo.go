package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickgig/backend/internal/models"
)

// PaymentRepo stores payment receipts. Append-only: there is no update or
// delete path.
type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) Insert(ctx context.Context, p *models.PaymentReceipt) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO payment_receipts (id, email, price, coins, tx_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, p.ID, p.Email, p.Price, p.Coins, p.TxRef).Scan(&p.CreatedAt)
}

func (r *PaymentRepo) ListByEmail(ctx context.Context, email string) ([]*models.PaymentReceipt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, price, coins, tx_ref, created_at
		FROM payment_receipts WHERE email = $1 ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.PaymentReceipt
	for rows.Next() {
		var p models.PaymentReceipt
		if err := rows.Scan(&p.ID, &p.Email, &p.Price, &p.Coins, &p.TxRef, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
