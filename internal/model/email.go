package model

import "time"

type Email struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	GmailID         *string   `json:"gmail_id,omitempty"`
	Subject         string    `json:"subject"`
	Body            string    `json:"body"`
	Sender          string    `json:"sender"`
	ReceivedAt      time.Time `json:"received_at"`
	IsRelevant      bool      `json:"is_relevant"`
	RelevanceReason string    `json:"relevance_reason"`
	Deadline        *string   `json:"deadline"` // calendar date, YYYY-MM-DD
	CreatedAt       time.Time `json:"created_at"`
}

// EmailWithDomain is the deadline scan join row: an email plus the
// owning user's professional domain.
type EmailWithDomain struct {
	ID       int
	UserID   int
	Subject  string
	Deadline string
	Domain   string
}
