package service

import (
	"context"
	"errors"

	"inboxiq/internal/model"
)

// ErrNotFound is returned when a record is missing or owned by another
// user. Handlers map it to a 404.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when registering an already-used address.
var ErrEmailTaken = errors.New("email already exists")

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type EmailStore interface {
	CreateEmail(ctx context.Context, e *model.Email) error
	FindByIDAndUser(ctx context.Context, id, userID int) (*model.Email, error)
	ListByUser(ctx context.Context, userID int, onlyRelevant bool) ([]model.Email, error)
	ExistsByGmailID(ctx context.Context, userID int, gmailID string) (bool, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
	ExistsDeadlineReminder(ctx context.Context, userID, emailID int) (bool, error)
}

type GmailTokenStore interface {
	Upsert(ctx context.Context, t *model.GmailToken) error
	Find(ctx context.Context, userID int) (*model.GmailToken, error)
}

// EventPublisher publishes domain events to the message broker.
// *mq.Publisher satisfies it; a nil publisher disables publishing.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}
