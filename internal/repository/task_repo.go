package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickgig/backend/internal/models"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Insert(ctx context.Context, t *models.Task) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, buyer_email, title, detail, amount, required_workers, completion_date, image_url, submission_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, t.ID, t.BuyerEmail, t.Title, t.Detail, t.Amount, t.RequiredWorkers, t.CompletionDate, t.ImageURL, t.SubmissionInfo).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, buyer_email, title, detail, amount, required_workers, completion_date, image_url, submission_info, created_at, updated_at
		FROM tasks WHERE id = $1
	`, id).Scan(&t.ID, &t.BuyerEmail, &t.Title, &t.Detail, &t.Amount, &t.RequiredWorkers, &t.CompletionDate, &t.ImageURL, &t.SubmissionInfo, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// TaskEdit carries the replaceable fields of a task. Amount and
// required_workers are deliberately absent: they move only through the
// submission and deletion paths, so the escrow invariant holds.
type TaskEdit struct {
	Title          string
	Detail         string
	CompletionDate time.Time
	ImageURL       string
	SubmissionInfo string
}

func (r *TaskRepo) UpdateDetails(ctx context.Context, id uuid.UUID, e TaskEdit) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET title = $2, detail = $3, completion_date = $4, image_url = $5, submission_info = $6, updated_at = now()
		WHERE id = $1
	`, id, e.Title, e.Detail, e.CompletionDate, e.ImageURL, e.SubmissionInfo)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DecrementSlot consumes one open slot. The compare-and-set precondition
// (required_workers > 0) makes concurrent approvals on the same task safe:
// at most required_workers of them can succeed, and the counter never goes
// negative.
func (r *TaskRepo) DecrementSlot(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET required_workers = required_workers - 1, updated_at = now()
		WHERE id = $1 AND required_workers > 0
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementSlot returns one slot after a rejection. False means the task no
// longer exists.
func (r *TaskRepo) IncrementSlot(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET required_workers = required_workers + 1, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TaskRepo) ListByBuyer(ctx context.Context, buyerEmail string) ([]*models.Task, error) {
	return r.list(ctx, `
		SELECT id, buyer_email, title, detail, amount, required_workers, completion_date, image_url, submission_info, created_at, updated_at
		FROM tasks WHERE buyer_email = $1 ORDER BY created_at DESC
	`, buyerEmail)
}

// ListAvailable returns tasks that still have open slots, i.e. the work a
// worker can submit against.
func (r *TaskRepo) ListAvailable(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, `
		SELECT id, buyer_email, title, detail, amount, required_workers, completion_date, image_url, submission_info, created_at, updated_at
		FROM tasks WHERE required_workers > 0 ORDER BY created_at DESC
	`)
}

// CountByBuyer counts tasks still owned by the buyer. Used by the account
// deletion guard.
func (r *TaskRepo) CountByBuyer(ctx context.Context, buyerEmail string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE buyer_email = $1`, buyerEmail).Scan(&n)
	return n, err
}

func (r *TaskRepo) list(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.BuyerEmail, &t.Title, &t.Detail, &t.Amount, &t.RequiredWorkers, &t.CompletionDate, &t.ImageURL, &t.SubmissionInfo, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
