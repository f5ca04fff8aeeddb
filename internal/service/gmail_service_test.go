package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inboxiq/internal/config"
	"inboxiq/internal/model"
)

type fakeGmailTokenStore struct {
	tokens map[int]*model.GmailToken
}

func (s *fakeGmailTokenStore) Upsert(ctx context.Context, t *model.GmailToken) error {
	s.tokens[t.UserID] = t
	return nil
}

func (s *fakeGmailTokenStore) Find(ctx context.Context, userID int) (*model.GmailToken, error) {
	return s.tokens[userID], nil
}

func newGmailEnv(t *testing.T) (*GmailService, *fakeEmailStore, *fakeGmailTokenStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	users := &fakeUserStore{users: map[int]*model.User{
		1: {ID: 1, Email: "demo@example.com", Domain: "Software Development"},
		2: {ID: 2, Email: "other@example.com", Domain: "Finance"},
	}}
	emails := &fakeEmailStore{}
	notifs := &fakeNotificationStore{}
	tokens := &fakeGmailTokenStore{tokens: map[int]*model.GmailToken{}}

	logger := zap.NewNop()
	classifier := NewClassifyService(&stubRand{}, fixedNow)
	notifier := NewNotificationService(notifs, nil, logger)
	emailSvc := NewEmailService(users, emails, classifier, notifier, logger)

	svc := NewGmailService(config.GmailConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost:4000/auth/gmail/callback",
	}, tokens, emailSvc, rdb, logger)
	svc.now = fixedNow
	return svc, emails, tokens
}

func TestSyncWithoutTokenIngestsSamples(t *testing.T) {
	svc, emails, _ := newGmailEnv(t)

	result, err := svc.Sync(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, result.SyncedCount)
	assert.Len(t, emails.emails, 5)

	first := result.Emails[0]
	require.NotNil(t, first.GmailID)
	assert.Equal(t, "mock_1", *first.GmailID)
	assert.True(t, first.IsRelevant)
	require.NotNil(t, first.Deadline)
	assert.Equal(t, "2024-02-15", *first.Deadline)
}

func TestSyncSkipsAlreadyStoredMessages(t *testing.T) {
	svc, emails, _ := newGmailEnv(t)

	_, err := svc.Sync(context.Background(), 1)
	require.NoError(t, err)

	result, err := svc.Sync(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.SyncedCount)
	assert.Len(t, emails.emails, 5)
}

func TestSyncSecondUserGetsOwnCopies(t *testing.T) {
	svc, emails, _ := newGmailEnv(t)

	_, err := svc.Sync(context.Background(), 1)
	require.NoError(t, err)

	result, err := svc.Sync(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, result.SyncedCount)
	assert.Len(t, emails.emails, 10)
}

func TestStatusReflectsTokenAndLastSync(t *testing.T) {
	svc, _, tokens := newGmailEnv(t)

	st, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, st.Connected)
	assert.Nil(t, st.LastSync)

	_, err = svc.Sync(context.Background(), 1)
	require.NoError(t, err)

	st, err = svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, st.Connected)
	require.NotNil(t, st.LastSync)
	assert.Equal(t, "2024-01-10T12:00:00Z", *st.LastSync)

	require.NoError(t, tokens.Upsert(context.Background(), &model.GmailToken{
		UserID:      1,
		AccessToken: "at",
	}))

	st, err = svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, st.Connected)
}

func TestAuthURLBindsStateToUser(t *testing.T) {
	svc, _, _ := newGmailEnv(t)

	rawURL, err := svc.AuthURL(context.Background(), 1)
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "consent", parsed.Query().Get("prompt"))

	bound, err := svc.rdb.Get(context.Background(), "gmail:oauth_state:"+state).Result()
	require.NoError(t, err)
	assert.Equal(t, "1", bound)
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	svc, _, tokens := newGmailEnv(t)

	err := svc.HandleCallback(context.Background(), "never-issued", "some-code")
	require.Error(t, err)
	assert.Empty(t, tokens.tokens)
}
