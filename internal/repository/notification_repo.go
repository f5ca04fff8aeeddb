package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inboxiq/internal/model"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert stores a notification and fills in its generated id.
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	query := `
        INSERT INTO notifications (user_id, email_id, type, title, message, deadline_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		n.UserID, n.EmailID, n.Type, n.Title, n.Message, n.DeadlineAt,
	).Scan(&n.ID, &n.CreatedAt)
}

// ExistsDeadlineReminder reports whether a deadline_reminder notification
// already exists for the (user, email) pair.
func (r *NotificationRepository) ExistsDeadlineReminder(ctx context.Context, userID, emailID int) (bool, error) {
	query := `
        SELECT id FROM notifications
        WHERE user_id = $1 AND email_id = $2 AND type = 'deadline_reminder'
    `
	var id int
	err := r.db.QueryRow(ctx, query, userID, emailID).Scan(&id)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns the user's notifications, newest first. limit <= 0
// means no limit.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `
        SELECT id, user_id, email_id, type, title, message, deadline_at, sent_at, read_at, created_at
        FROM notifications
        WHERE user_id = $1
    `
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	var rows pgx.Rows
	var err error
	if limit > 0 {
		query += ` LIMIT $2`
		rows, err = r.db.Query(ctx, query, userID, limit)
	} else {
		rows, err = r.db.Query(ctx, query, userID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.EmailID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.DeadlineAt,
			&n.SentAt,
			&n.ReadAt,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}

	return list, rows.Err()
}

// MarkRead sets read_at on a notification owned by the user. Returns
// false when no such notification exists.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) (bool, error) {
	query := `
        UPDATE notifications
        SET read_at = NOW()
        WHERE id = $1 AND user_id = $2
    `
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllRead sets read_at on every unread notification of the user.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	query := `
        UPDATE notifications
        SET read_at = NOW()
        WHERE user_id = $1 AND read_at IS NULL
    `
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// Delete removes a notification owned by the user. Returns false when
// no such notification exists.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID int) (bool, error) {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkSent records dispatch time, used by the MQ dispatch consumer.
func (r *NotificationRepository) MarkSent(ctx context.Context, id int) error {
	query := `UPDATE notifications SET sent_at = NOW() WHERE id = $1 AND sent_at IS NULL`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
