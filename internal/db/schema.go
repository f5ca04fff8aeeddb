package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deadlines are stored as plain calendar dates (YYYY-MM-DD text) and
// compared by string equality against "today + 3 days".
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    domain TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS emails (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    gmail_id TEXT,
    subject TEXT NOT NULL,
    body TEXT NOT NULL,
    sender TEXT NOT NULL DEFAULT '',
    received_at TIMESTAMPTZ NOT NULL,
    is_relevant BOOLEAN NOT NULL DEFAULT FALSE,
    relevance_reason TEXT NOT NULL DEFAULT '',
    deadline TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, gmail_id)
);

CREATE TABLE IF NOT EXISTS notifications (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    email_id BIGINT REFERENCES emails(id),
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    deadline_at TEXT,
    sent_at TIMESTAMPTZ,
    read_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS gmail_tokens (
    user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    access_token TEXT NOT NULL,
    refresh_token TEXT NOT NULL DEFAULT '',
    expiry TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_emails_user ON emails(user_id);
CREATE INDEX IF NOT EXISTS idx_emails_deadline ON emails(deadline);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);
`

// InitSchema creates the tables on startup if they do not exist yet.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
