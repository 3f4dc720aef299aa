package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/inelac/inventory-backend/pkg/database"
)

// Notification represents a persisted stock-depleted alert
type Notification struct {
	ID          string    `db:"id" json:"id"`
	ItemCode    int       `db:"item_code" json:"item_code"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NotificationRepository handles stock-depleted notification persistence
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// ExistsSinceTx reports whether a notification for the item code was
// created at or after the given instant. Runs inside the caller's
// transaction so the dedup check and the insert commit together.
func (r *NotificationRepository) ExistsSinceTx(ctx context.Context, tx *sqlx.Tx, itemCode int, since time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM stock_notifications WHERE item_code = $1 AND created_at >= $2)`
	if err := tx.GetContext(ctx, &exists, query, itemCode, since); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateTx inserts a notification within the given transaction
func (r *NotificationRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	query := `
		INSERT INTO stock_notifications (id, item_code, description)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	return tx.QueryRowxContext(ctx, query, n.ID, n.ItemCode, n.Description).Scan(&n.CreatedAt)
}

// ListSince lists notifications created at or after the given instant,
// newest first
func (r *NotificationRepository) ListSince(ctx context.Context, since time.Time) ([]*Notification, error) {
	query := `
		SELECT id, item_code, description, created_at
		FROM stock_notifications
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`

	var notifications []*Notification
	if err := r.db.SelectContext(ctx, &notifications, query, since); err != nil {
		return nil, err
	}

	return notifications, nil
}
