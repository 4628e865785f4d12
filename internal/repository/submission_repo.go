package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickgig/backend/internal/models"
)

type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) Insert(ctx context.Context, s *models.Submission) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO submissions (id, task_id, task_title, worker_email, worker_name, buyer_email, payable_amount, status, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, s.ID, s.TaskID, s.TaskTitle, s.WorkerEmail, s.WorkerName, s.BuyerEmail, s.PayableAmount, s.Status, s.Detail).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var s models.Submission
	err := r.pool.QueryRow(ctx, `
		SELECT id, task_id, task_title, worker_email, worker_name, buyer_email, payable_amount, status, detail, created_at, updated_at
		FROM submissions WHERE id = $1
	`, id).Scan(&s.ID, &s.TaskID, &s.TaskTitle, &s.WorkerEmail, &s.WorkerName, &s.BuyerEmail, &s.PayableAmount, &s.Status, &s.Detail, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

// SetStatus flips the submission from one status to another. The WHERE clause
// is the compare-and-set that makes approve/reject exactly-once: a false
// return means the submission was not in the expected state.
func (r *SubmissionRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to models.SubmissionStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE submissions SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SubmissionRepo) ListByWorker(ctx context.Context, workerEmail string) ([]*models.Submission, error) {
	return r.list(ctx, `
		SELECT id, task_id, task_title, worker_email, worker_name, buyer_email, payable_amount, status, detail, created_at, updated_at
		FROM submissions WHERE worker_email = $1 ORDER BY created_at DESC
	`, workerEmail)
}

// ListPendingByBuyer returns the buyer's review queue.
func (r *SubmissionRepo) ListPendingByBuyer(ctx context.Context, buyerEmail string) ([]*models.Submission, error) {
	return r.list(ctx, `
		SELECT id, task_id, task_title, worker_email, worker_name, buyer_email, payable_amount, status, detail, created_at, updated_at
		FROM submissions WHERE buyer_email = $1 AND status = 'pending' ORDER BY created_at ASC
	`, buyerEmail)
}

// CountPendingByWorker counts the worker's open claims. Used by the account
// deletion guard.
func (r *SubmissionRepo) CountPendingByWorker(ctx context.Context, workerEmail string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM submissions WHERE worker_email = $1 AND status = 'pending'
	`, workerEmail).Scan(&n)
	return n, err
}

func (r *SubmissionRepo) list(ctx context.Context, query string, args ...any) ([]*models.Submission, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.TaskID, &s.TaskTitle, &s.WorkerEmail, &s.WorkerName, &s.BuyerEmail, &s.PayableAmount, &s.Status, &s.Detail, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
