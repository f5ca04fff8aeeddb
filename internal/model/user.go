package model

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Domain       string    `json:"domain"`
	CreatedAt    time.Time `json:"created_at"`
}
