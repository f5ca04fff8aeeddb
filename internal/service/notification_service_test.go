package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inboxiq/internal/model"
	"inboxiq/internal/mq"
)

type recordingPublisher struct {
	events []mq.NotificationCreatedPayload
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	if ev, ok := payload.(mq.NotificationCreatedPayload); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

func TestCreateDeadlineReminderContent(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, nil, zap.NewNop())

	err := svc.CreateDeadlineReminder(context.Background(), model.EmailWithDomain{
		ID:       3,
		UserID:   1,
		Subject:  "Patient discharge",
		Deadline: "2024-01-13",
		Domain:   "Healthcare",
	})
	require.NoError(t, err)

	require.Len(t, store.notifications, 1)
	n := store.notifications[0]
	assert.Equal(t, model.NotificationTypeDeadlineReminder, n.Type)
	assert.Equal(t, "Deadline in 3 days: Patient discharge", n.Title)
	assert.Equal(t, "This email is relevant to your domain (Healthcare). Action before 2024-01-13.", n.Message)
	require.NotNil(t, n.DeadlineAt)
	assert.Equal(t, "2024-01-13", *n.DeadlineAt)
}

func TestReminderExistsDelegatesToStore(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, nil, zap.NewNop())

	exists, err := svc.ReminderExists(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, svc.CreateDeadlineReminder(context.Background(), model.EmailWithDomain{
		ID: 3, UserID: 1, Subject: "x", Deadline: "2024-01-13", Domain: "Finance",
	}))

	exists, err = svc.ReminderExists(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreatePublishesDispatchEvent(t *testing.T) {
	store := &fakeNotificationStore{}
	pub := &recordingPublisher{}
	svc := NewNotificationService(store, pub, zap.NewNop())

	email := &model.Email{ID: 5, UserID: 2, Subject: "Patient news"}
	err := svc.NotifyIngested(context.Background(), "Healthcare", email, Analysis{
		IsRelevant: true,
		Reason:     "Important updates related to Healthcare industry",
	})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, store.notifications[0].ID, pub.events[0].NotificationID)
	assert.Equal(t, 2, pub.events[0].UserID)
	assert.Equal(t, model.NotificationTypeRelevant, pub.events[0].Type)
}
