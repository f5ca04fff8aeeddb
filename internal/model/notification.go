package model

import "time"

const (
	NotificationTypeRelevant         = "relevant"
	NotificationTypeDeadlineReminder = "deadline_reminder"
)

type Notification struct {
	ID         int        `json:"id"`
	UserID     int        `json:"user_id"`
	EmailID    *int       `json:"email_id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	DeadlineAt *string    `json:"deadline_at"` // calendar date, YYYY-MM-DD
	SentAt     *time.Time `json:"sent_at"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
