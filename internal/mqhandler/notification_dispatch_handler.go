package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"inboxiq/internal/mq"
)

type NotificationSentStore interface {
	MarkSent(ctx context.Context, id int) error
}

// NotificationDispatchHandler consumes notification.created events and
// records the dispatch time on the notification row.
type NotificationDispatchHandler struct {
	store  NotificationSentStore
	logger *zap.Logger
}

func NewNotificationDispatchHandler(store NotificationSentStore, logger *zap.Logger) *NotificationDispatchHandler {
	return &NotificationDispatchHandler{
		store:  store,
		logger: logger,
	}
}

func (h *NotificationDispatchHandler) HandleNotificationCreated(ctx context.Context, raw json.RawMessage) error {
	var p mq.NotificationCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal notification created payload", zap.Error(err))
		return err
	}

	h.logger.Info("Dispatching notification",
		zap.Int("notification_id", p.NotificationID),
		zap.Int("user_id", p.UserID),
		zap.String("type", p.Type),
	)

	if err := h.store.MarkSent(ctx, p.NotificationID); err != nil {
		h.logger.Error("Failed to mark notification sent",
			zap.Int("notification_id", p.NotificationID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
