package model

import "time"

type GmailToken struct {
	UserID       int
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	CreatedAt    time.Time
}
