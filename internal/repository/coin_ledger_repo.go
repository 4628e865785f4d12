package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickgig/backend/internal/models"
)

// CoinLedgerRepo appends to the coin journal, the audit trail of every
// balance movement.
type CoinLedgerRepo struct {
	pool *pgxpool.Pool
}

func NewCoinLedgerRepo(pool *pgxpool.Pool) *CoinLedgerRepo {
	return &CoinLedgerRepo{pool: pool}
}

func (r *CoinLedgerRepo) Append(ctx context.Context, e *models.CoinEntry) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO coin_ledger (id, account_email, task_id, entry_type, amount, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, e.ID, e.AccountEmail, e.TaskID, e.EntryType, e.Amount, e.BalanceAfter).Scan(&e.CreatedAt)
}

func (r *CoinLedgerRepo) ListByEmail(ctx context.Context, email string) ([]*models.CoinEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_email, task_id, entry_type, amount, balance_after, created_at
		FROM coin_ledger WHERE account_email = $1 ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.CoinEntry
	for rows.Next() {
		var e models.CoinEntry
		if err := rows.Scan(&e.ID, &e.AccountEmail, &e.TaskID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
