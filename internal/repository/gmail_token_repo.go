package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inboxiq/internal/model"
)

type GmailTokenRepository struct {
	db *pgxpool.Pool
}

func NewGmailTokenRepository(db *pgxpool.Pool) *GmailTokenRepository {
	return &GmailTokenRepository{db: db}
}

// Upsert stores or replaces the user's OAuth tokens.
func (r *GmailTokenRepository) Upsert(ctx context.Context, t *model.GmailToken) error {
	query := `
        INSERT INTO gmail_tokens (user_id, access_token, refresh_token, expiry, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET access_token = EXCLUDED.access_token,
            refresh_token = EXCLUDED.refresh_token,
            expiry = EXCLUDED.expiry
    `
	_, err := r.db.Exec(ctx, query, t.UserID, t.AccessToken, t.RefreshToken, t.Expiry)
	return err
}

// Find returns the user's tokens, or nil when Gmail was never connected.
func (r *GmailTokenRepository) Find(ctx context.Context, userID int) (*model.GmailToken, error) {
	query := `
        SELECT user_id, access_token, refresh_token, expiry, created_at
        FROM gmail_tokens
        WHERE user_id = $1
    `
	var t model.GmailToken
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&t.UserID, &t.AccessToken, &t.RefreshToken, &t.Expiry, &t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
