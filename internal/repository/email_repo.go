package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inboxiq/internal/model"
)

type EmailRepository struct {
	db *pgxpool.Pool
}

func NewEmailRepository(db *pgxpool.Pool) *EmailRepository {
	return &EmailRepository{db: db}
}

// CreateEmail inserts an email with its classification results.
func (r *EmailRepository) CreateEmail(ctx context.Context, e *model.Email) error {
	query := `
        INSERT INTO emails (user_id, gmail_id, subject, body, sender, received_at,
                            is_relevant, relevance_reason, deadline, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		e.UserID, e.GmailID, e.Subject, e.Body, e.Sender, e.ReceivedAt,
		e.IsRelevant, e.RelevanceReason, e.Deadline,
	).Scan(&e.ID, &e.CreatedAt)
}

// FindByIDAndUser returns an email only if it belongs to the user.
func (r *EmailRepository) FindByIDAndUser(ctx context.Context, id, userID int) (*model.Email, error) {
	query := `
        SELECT id, user_id, gmail_id, subject, body, sender, received_at,
               is_relevant, relevance_reason, deadline, created_at
        FROM emails
        WHERE id = $1 AND user_id = $2
    `
	var e model.Email
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&e.ID,
		&e.UserID,
		&e.GmailID,
		&e.Subject,
		&e.Body,
		&e.Sender,
		&e.ReceivedAt,
		&e.IsRelevant,
		&e.RelevanceReason,
		&e.Deadline,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByUser returns the user's emails, newest first, optionally only
// the relevant ones.
func (r *EmailRepository) ListByUser(ctx context.Context, userID int, onlyRelevant bool) ([]model.Email, error) {
	query := `
        SELECT id, user_id, gmail_id, subject, body, sender, received_at,
               is_relevant, relevance_reason, deadline, created_at
        FROM emails
        WHERE user_id = $1
    `
	if onlyRelevant {
		query += ` AND is_relevant = TRUE`
	}
	query += ` ORDER BY received_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := []model.Email{}
	for rows.Next() {
		var e model.Email
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.GmailID,
			&e.Subject,
			&e.Body,
			&e.Sender,
			&e.ReceivedAt,
			&e.IsRelevant,
			&e.RelevanceReason,
			&e.Deadline,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}

	return emails, rows.Err()
}

// ListRelevantByDeadline returns relevant emails whose deadline equals the
// given date string, joined to the owning user's domain.
func (r *EmailRepository) ListRelevantByDeadline(ctx context.Context, deadline string) ([]model.EmailWithDomain, error) {
	query := `
        SELECT e.id, e.user_id, e.subject, e.deadline, u.domain
        FROM emails e
        JOIN users u ON u.id = e.user_id
        WHERE e.deadline = $1 AND e.is_relevant = TRUE
    `
	rows, err := r.db.Query(ctx, query, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := []model.EmailWithDomain{}
	for rows.Next() {
		var e model.EmailWithDomain
		if err := rows.Scan(&e.ID, &e.UserID, &e.Subject, &e.Deadline, &e.Domain); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}

	return emails, rows.Err()
}

// ExistsByGmailID reports whether a synced message was already stored.
func (r *EmailRepository) ExistsByGmailID(ctx context.Context, userID int, gmailID string) (bool, error) {
	query := `SELECT id FROM emails WHERE user_id = $1 AND gmail_id = $2`
	var id int
	err := r.db.QueryRow(ctx, query, userID, gmailID).Scan(&id)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
