package repository

import (
	"context"
	"database/sql"

	"github.com/amielle/duty-roster/internal/model"
)

// NotificationRepo persists user-facing alerts.  Rows are written by
// the queue consumer, never directly from a request handler, so a slow
// or failing notification write can never fail a booking or approval.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a NotificationRepo bound to the database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification row.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (user_id, title, message, type) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, n.UserID, n.Title, n.Message, n.Type)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	const q = `SELECT id, user_id, title, message, type, ` + "`read`" + `, read_at, created_at
	           FROM notifications WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &readAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead flags one of the user's notifications as read.  The user
// filter enforces ownership; marking someone else's notification
// affects zero rows and returns ErrForbidden.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET `+"`read`"+` = 1, read_at = NOW() WHERE id = ? AND user_id = ?`,
		id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrForbidden
	}
	return nil
}
