package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"inboxiq/internal/model"
	"inboxiq/internal/mq"
	"inboxiq/pkg/metrics"
)

// NotificationService derives notification rows from classifier output.
// It is driven from two places: synchronously after email ingestion, and
// by the daily deadline scan.
type NotificationService struct {
	store     NotificationStore
	publisher EventPublisher
	logger    *zap.Logger
}

func NewNotificationService(store NotificationStore, publisher EventPublisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// NotifyIngested creates the immediate notification for a freshly
// ingested email: a deadline_reminder when a deadline was extracted, a
// plain relevant notification otherwise. Irrelevant emails produce
// nothing.
func (s *NotificationService) NotifyIngested(ctx context.Context, domain string, e *model.Email, a Analysis) error {
	if !a.IsRelevant {
		return nil
	}

	emailID := e.ID
	if a.Deadline != nil {
		n := &model.Notification{
			UserID:     e.UserID,
			EmailID:    &emailID,
			Type:       model.NotificationTypeDeadlineReminder,
			Title:      fmt.Sprintf("Deadline in 3 days: %s", e.Subject),
			Message:    fmt.Sprintf("This email is relevant to your domain (%s). Deadline: %s. %s", domain, *a.Deadline, a.Reason),
			DeadlineAt: a.Deadline,
		}
		return s.create(ctx, n)
	}

	n := &model.Notification{
		UserID:  e.UserID,
		EmailID: &emailID,
		Type:    model.NotificationTypeRelevant,
		Title:   fmt.Sprintf("Relevant to you: %s", e.Subject),
		Message: fmt.Sprintf("Related to your domain (%s). %s", domain, a.Reason),
	}
	return s.create(ctx, n)
}

// ReminderExists reports whether a deadline_reminder was already created
// for the (user, email) pair.
func (s *NotificationService) ReminderExists(ctx context.Context, userID, emailID int) (bool, error) {
	return s.store.ExistsDeadlineReminder(ctx, userID, emailID)
}

// CreateDeadlineReminder inserts the daily-scan reminder for an email
// whose deadline is three days out.
func (s *NotificationService) CreateDeadlineReminder(ctx context.Context, e model.EmailWithDomain) error {
	emailID := e.ID
	deadline := e.Deadline
	n := &model.Notification{
		UserID:     e.UserID,
		EmailID:    &emailID,
		Type:       model.NotificationTypeDeadlineReminder,
		Title:      fmt.Sprintf("Deadline in 3 days: %s", e.Subject),
		Message:    fmt.Sprintf("This email is relevant to your domain (%s). Action before %s.", e.Domain, e.Deadline),
		DeadlineAt: &deadline,
	}
	return s.create(ctx, n)
}

func (s *NotificationService) create(ctx context.Context, n *model.Notification) error {
	if err := s.store.Insert(ctx, n); err != nil {
		return err
	}
	metrics.IncrementNotificationCreated(n.Type)

	// Dispatch is best effort. The row exists either way, only sent_at
	// stays empty when the broker is down or not configured.
	if s.publisher != nil {
		payload := mq.NotificationCreatedPayload{
			NotificationID: n.ID,
			UserID:         n.UserID,
			Type:           n.Type,
			Title:          n.Title,
		}
		if err := s.publisher.Publish(mq.RoutingKeyNotificationCreated, payload); err != nil {
			s.logger.Error("Failed to publish notification created event",
				zap.Int("notification_id", n.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}
