package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/canteen-central/canteen-api/internal/models"
)

// NotificationRepository persists per-user notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores one notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, owner_id, title, content, type, important, archived, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		n.ID, n.OwnerID, n.Title, n.Content, n.Type, n.Important, n.Archived, n.CreatedAt,
	); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// List returns a user's notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	query := `SELECT id, owner_id, title, content, type, important, archived, created_at FROM notifications WHERE owner_id = $1`
	args := []interface{}{filter.OwnerID}
	if !filter.IncludeArchived {
		query += ` AND archived = FALSE`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, filter.Limit)
	}

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// Archive marks one notification as archived for its owner. Returns
// sql.ErrNoRows when the notification does not exist or belongs to
// another user.
func (r *NotificationRepository) Archive(ctx context.Context, id, ownerID string) error {
	const query = `UPDATE notifications SET archived = TRUE WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("archive notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("archive notification: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UnreadCount counts unarchived notifications for a user.
func (r *NotificationRepository) UnreadCount(ctx context.Context, ownerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE owner_id = $1 AND archived = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, ownerID); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}
