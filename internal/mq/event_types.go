package mq

const (
	RoutingKeyNotificationCreated = "notification.created"
	QueueNotificationDispatch     = "notification_dispatch"
)

// NotificationCreatedPayload is published whenever a notification row is
// inserted, either at ingestion or by the deadline scan job.
type NotificationCreatedPayload struct {
	NotificationID int    `json:"notification_id"`
	UserID         int    `json:"user_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
}
