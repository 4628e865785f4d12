package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickgig/backend/internal/models"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, message, recipient_email, actor_email, route)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, n.ID, n.Message, n.RecipientEmail, n.ActorEmail, n.Route).Scan(&n.CreatedAt)
}

func (r *NotificationRepo) ListByRecipient(ctx context.Context, email string) ([]*models.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, message, recipient_email, actor_email, route, created_at
		FROM notifications WHERE recipient_email = $1 ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.RecipientEmail, &n.ActorEmail, &n.Route, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
