package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickgig/backend/internal/models"
)

// IntentRepo stores recovery intents, the durable half of the
// order-and-compensate pattern.
type IntentRepo struct {
	pool *pgxpool.Pool
}

func NewIntentRepo(pool *pgxpool.Pool) *IntentRepo {
	return &IntentRepo{pool: pool}
}

func (r *IntentRepo) Insert(ctx context.Context, in *models.RecoveryIntent) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO recovery_intents (id, kind, account_email, task_id, amount, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, in.ID, in.Kind, in.AccountEmail, in.TaskID, in.Amount, in.Note).Scan(&in.CreatedAt)
}

func (r *IntentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RecoveryIntent, error) {
	var in models.RecoveryIntent
	err := r.pool.QueryRow(ctx, `
		SELECT id, kind, account_email, task_id, amount, note, created_at, resolved_at
		FROM recovery_intents WHERE id = $1
	`, id).Scan(&in.ID, &in.Kind, &in.AccountEmail, &in.TaskID, &in.Amount, &in.Note, &in.CreatedAt, &in.ResolvedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &in, nil
}

// MarkResolved closes the intent; false means it was already resolved, so the
// reconcile step must not run twice.
func (r *IntentRepo) MarkResolved(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE recovery_intents SET resolved_at = now()
		WHERE id = $1 AND resolved_at IS NULL
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListUnresolved returns intents that still need a reconcile pass, oldest first.
func (r *IntentRepo) ListUnresolved(ctx context.Context) ([]*models.RecoveryIntent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, account_email, task_id, amount, note, created_at, resolved_at
		FROM recovery_intents WHERE resolved_at IS NULL ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.RecoveryIntent
	for rows.Next() {
		var in models.RecoveryIntent
		if err := rows.Scan(&in.ID, &in.Kind, &in.AccountEmail, &in.TaskID, &in.Amount, &in.Note, &in.CreatedAt, &in.ResolvedAt); err != nil {
			return nil, err
		}
		list = append(list, &in)
	}
	return list, rows.Err()
}
