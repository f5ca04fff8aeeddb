package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inboxiq/internal/model"
)

type fakeUserStore struct {
	users map[int]*model.User
}

func (s *fakeUserStore) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = len(s.users) + 1
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeUserStore) FindByID(ctx context.Context, id int) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

type fakeEmailStore struct {
	emails []*model.Email
}

func (s *fakeEmailStore) CreateEmail(ctx context.Context, e *model.Email) error {
	// Same uniqueness rule as the emails table: one gmail id per user.
	if e.GmailID != nil {
		for _, ex := range s.emails {
			if ex.UserID == e.UserID && ex.GmailID != nil && *ex.GmailID == *e.GmailID {
				return errors.New("duplicate gmail id for user")
			}
		}
	}
	e.ID = len(s.emails) + 1
	e.CreatedAt = time.Now()
	s.emails = append(s.emails, e)
	return nil
}

func (s *fakeEmailStore) FindByIDAndUser(ctx context.Context, id, userID int) (*model.Email, error) {
	for _, e := range s.emails {
		if e.ID == id && e.UserID == userID {
			return e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeEmailStore) ListByUser(ctx context.Context, userID int, onlyRelevant bool) ([]model.Email, error) {
	out := []model.Email{}
	for _, e := range s.emails {
		if e.UserID != userID {
			continue
		}
		if onlyRelevant && !e.IsRelevant {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (s *fakeEmailStore) ExistsByGmailID(ctx context.Context, userID int, gmailID string) (bool, error) {
	for _, e := range s.emails {
		if e.UserID == userID && e.GmailID != nil && *e.GmailID == gmailID {
			return true, nil
		}
	}
	return false, nil
}

type fakeNotificationStore struct {
	notifications []*model.Notification
}

func (s *fakeNotificationStore) Insert(ctx context.Context, n *model.Notification) error {
	n.ID = len(s.notifications) + 1
	n.CreatedAt = time.Now()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *fakeNotificationStore) ExistsDeadlineReminder(ctx context.Context, userID, emailID int) (bool, error) {
	for _, n := range s.notifications {
		if n.UserID == userID && n.EmailID != nil && *n.EmailID == emailID &&
			n.Type == model.NotificationTypeDeadlineReminder {
			return true, nil
		}
	}
	return false, nil
}

func newTestPipeline(rng Rand) (*EmailService, *fakeEmailStore, *fakeNotificationStore) {
	users := &fakeUserStore{users: map[int]*model.User{
		1: {ID: 1, Email: "demo@example.com", Domain: "Healthcare"},
	}}
	emails := &fakeEmailStore{}
	notifs := &fakeNotificationStore{}

	logger := zap.NewNop()
	classifier := NewClassifyService(rng, fixedNow)
	notifier := NewNotificationService(notifs, nil, logger)
	svc := NewEmailService(users, emails, classifier, notifier, logger)
	return svc, emails, notifs
}

func TestIngestRelevantWithoutDeadlineCreatesRelevantNotification(t *testing.T) {
	svc, _, notifs := newTestPipeline(&stubRand{})

	email, analysis, err := svc.Ingest(context.Background(), IngestInput{
		UserID:  1,
		Subject: "Patient treatment update",
		Source:  "api",
	})
	require.NoError(t, err)
	assert.True(t, analysis.IsRelevant)
	assert.Nil(t, analysis.Deadline)

	require.Len(t, notifs.notifications, 1)
	n := notifs.notifications[0]
	assert.Equal(t, model.NotificationTypeRelevant, n.Type)
	assert.Equal(t, "Relevant to you: Patient treatment update", n.Title)
	require.NotNil(t, n.EmailID)
	assert.Equal(t, email.ID, *n.EmailID)
}

func TestIngestRelevantWithDeadlineCreatesImmediateReminder(t *testing.T) {
	svc, _, notifs := newTestPipeline(&stubRand{})

	_, analysis, err := svc.Ingest(context.Background(), IngestInput{
		UserID:  1,
		Subject: "Patient discharge",
		Body:    "paperwork due 2024-02-15",
		Source:  "api",
	})
	require.NoError(t, err)
	require.NotNil(t, analysis.Deadline)
	assert.Equal(t, "2024-02-15", *analysis.Deadline)

	require.Len(t, notifs.notifications, 1)
	n := notifs.notifications[0]
	assert.Equal(t, model.NotificationTypeDeadlineReminder, n.Type)
	assert.Equal(t, "Deadline in 3 days: Patient discharge", n.Title)
	require.NotNil(t, n.DeadlineAt)
	assert.Equal(t, "2024-02-15", *n.DeadlineAt)
	assert.Contains(t, n.Message, "Deadline: 2024-02-15")
}

func TestIngestIrrelevantCreatesNothing(t *testing.T) {
	svc, emails, notifs := newTestPipeline(&stubRand{})

	_, analysis, err := svc.Ingest(context.Background(), IngestInput{
		UserID:  1,
		Subject: "Lunch plans",
		Body:    "see you at noon",
		Source:  "api",
	})
	require.NoError(t, err)
	assert.False(t, analysis.IsRelevant)
	assert.Len(t, emails.emails, 1)
	assert.Empty(t, notifs.notifications)
}

func TestIngestUnknownUserReturnsNotFound(t *testing.T) {
	svc, emails, _ := newTestPipeline(&stubRand{})

	_, _, err := svc.Ingest(context.Background(), IngestInput{
		UserID:  42,
		Subject: "Anything",
		Source:  "api",
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, emails.emails)
}

func TestIngestThenGetRoundTrip(t *testing.T) {
	svc, _, _ := newTestPipeline(&stubRand{})

	created, analysis, err := svc.Ingest(context.Background(), IngestInput{
		UserID:  1,
		Subject: "Patient follow-up",
		Body:    "schedule before 2024-02-15",
		Source:  "api",
	})
	require.NoError(t, err)

	fetched, err := svc.Get(context.Background(), created.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, created.Subject, fetched.Subject)
	assert.Equal(t, created.Body, fetched.Body)
	assert.Equal(t, analysis.IsRelevant, fetched.IsRelevant)
	require.NotNil(t, fetched.Deadline)
	assert.Equal(t, *analysis.Deadline, *fetched.Deadline)
}

func TestGetForeignEmailReturnsNotFound(t *testing.T) {
	svc, emails, _ := newTestPipeline(&stubRand{})
	emails.emails = append(emails.emails, &model.Email{ID: 7, UserID: 99, Subject: "other"})

	_, err := svc.Get(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByRelevance(t *testing.T) {
	svc, _, _ := newTestPipeline(&stubRand{})

	_, _, err := svc.Ingest(context.Background(), IngestInput{UserID: 1, Subject: "Patient news", Source: "api"})
	require.NoError(t, err)
	_, _, err = svc.Ingest(context.Background(), IngestInput{UserID: 1, Subject: "Lunch", Source: "api"})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	relevant, err := svc.List(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Len(t, relevant, 1)
	assert.Equal(t, "Patient news", relevant[0].Subject)
}
