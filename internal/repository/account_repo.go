package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickgig/backend/internal/models"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, name, role, coin, photo_url, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, a.ID, a.Email, a.Name, a.Role, a.Coin, a.PhotoURL, a.PasswordHash).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, role, coin, photo_url, password_hash, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.Coin, &a.PhotoURL, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, role, coin, photo_url, password_hash, created_at, updated_at
		FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.Coin, &a.PhotoURL, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &a, nil
}

func (r *AccountRepo) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, role, coin, photo_url, password_hash, created_at, updated_at
		FROM accounts ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.Coin, &a.PhotoURL, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// DebitIfSufficient conditionally deducts amount from the account's coin
// balance. Returns false when the balance is below amount (the compare-and-set
// precondition failed); the balance is never driven negative.
func (r *AccountRepo) DebitIfSufficient(ctx context.Context, email string, amount int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET coin = coin - $1, updated_at = now()
		WHERE email = $2 AND coin >= $1
	`, amount, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Credit adds amount to the account's coin balance and returns the new balance.
func (r *AccountRepo) Credit(ctx context.Context, email string, amount int) (int, error) {
	var newBalance int
	err := r.pool.QueryRow(ctx, `
		UPDATE accounts SET coin = coin + $1, updated_at = now()
		WHERE email = $2
		RETURNING coin
	`, amount, email).Scan(&newBalance)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return newBalance, nil
}

func (r *AccountRepo) UpdateRole(ctx context.Context, email string, role models.Role) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET role = $2, updated_at = now() WHERE email = $1
	`, email, role)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AccountRepo) Delete(ctx context.Context, email string) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM accounts WHERE email = $1", email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
