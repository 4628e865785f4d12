package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickgig/backend/internal/models"
)

type WithdrawalRepo struct {
	pool *pgxpool.Pool
}

func NewWithdrawalRepo(pool *pgxpool.Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

func (r *WithdrawalRepo) Insert(ctx context.Context, w *models.Withdrawal) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO withdrawals (id, worker_email, coin_amount, payment_system, account_number, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, w.ID, w.WorkerEmail, w.CoinAmount, w.PaymentSystem, w.AccountNumber, w.Status).Scan(&w.CreatedAt, &w.UpdatedAt)
}

func (r *WithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.pool.QueryRow(ctx, `
		SELECT id, worker_email, coin_amount, payment_system, account_number, status, created_at, updated_at
		FROM withdrawals WHERE id = $1
	`, id).Scan(&w.ID, &w.WorkerEmail, &w.CoinAmount, &w.PaymentSystem, &w.AccountNumber, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &w, nil
}

// MarkApproved flips pending -> approved; false means the withdrawal was
// already approved (or gone).
func (r *WithdrawalRepo) MarkApproved(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE withdrawals SET status = 'approved', updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *WithdrawalRepo) ListByWorker(ctx context.Context, workerEmail string) ([]*models.Withdrawal, error) {
	return r.list(ctx, `
		SELECT id, worker_email, coin_amount, payment_system, account_number, status, created_at, updated_at
		FROM withdrawals WHERE worker_email = $1 ORDER BY created_at DESC
	`, workerEmail)
}

// ListPending returns the admin approval queue.
func (r *WithdrawalRepo) ListPending(ctx context.Context) ([]*models.Withdrawal, error) {
	return r.list(ctx, `
		SELECT id, worker_email, coin_amount, payment_system, account_number, status, created_at, updated_at
		FROM withdrawals WHERE status = 'pending' ORDER BY created_at ASC
	`)
}

func (r *WithdrawalRepo) list(ctx context.Context, query string, args ...any) ([]*models.Withdrawal, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err := rows.Scan(&w.ID, &w.WorkerEmail, &w.CoinAmount, &w.PaymentSystem, &w.AccountNumber, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
