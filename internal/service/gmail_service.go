package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"inboxiq/internal/config"
	"inboxiq/internal/model"
)

const (
	gmailUser        = "me"
	syncFetchCount   = 10
	oauthStateTTL    = 10 * time.Minute
	lastSyncKeyFmt   = "gmail:last_sync:%d"
	oauthStateKeyFmt = "gmail:oauth_state:%s"
)

// GmailService wraps the Gmail OAuth flow and message sync. When a user
// has no stored tokens, sync falls back to a fixed set of sample emails
// so the pipeline can be exercised without a Google account.
type GmailService struct {
	oauth    *oauth2.Config
	tokens   GmailTokenStore
	emailSvc *EmailService
	rdb      *redis.Client
	logger   *zap.Logger
	now      func() time.Time
}

func NewGmailService(
	cfg config.GmailConfig,
	tokens GmailTokenStore,
	emailSvc *EmailService,
	rdb *redis.Client,
	logger *zap.Logger,
) *GmailService {
	return &GmailService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes: []string{
				gmail.GmailReadonlyScope,
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
		tokens:   tokens,
		emailSvc: emailSvc,
		rdb:      rdb,
		logger:   logger,
		now:      time.Now,
	}
}

// AuthURL builds the consent URL for the popup window. The state token
// is bound to the requesting user in Redis so the callback can resolve
// who connected.
func (s *GmailService) AuthURL(ctx context.Context, userID int) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf(oauthStateKeyFmt, state)
	if err := s.rdb.Set(ctx, key, strconv.Itoa(userID), oauthStateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	url := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return url, nil
}

// HandleCallback exchanges the authorization code and stores the tokens
// for the user bound to the state parameter.
func (s *GmailService) HandleCallback(ctx context.Context, state, code string) error {
	key := fmt.Sprintf(oauthStateKeyFmt, state)
	userIDStr, err := s.rdb.GetDel(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("unknown or expired oauth state: %w", err)
	}
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return fmt.Errorf("corrupt oauth state: %w", err)
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return s.tokens.Upsert(ctx, &model.GmailToken{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	})
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	SyncedCount int           `json:"syncedCount"`
	Emails      []model.Email `json:"emails"`
}

// Sync pulls recent messages through the Gmail API when tokens exist,
// otherwise uses the canned samples, and runs each new message through
// the ingestion pipeline. Messages already stored (by gmail id) are
// skipped.
func (s *GmailService) Sync(ctx context.Context, userID int) (*SyncResult, error) {
	var candidates []IngestInput

	tok, err := s.tokens.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tok != nil {
		candidates, err = s.fetchMessages(ctx, userID, tok)
		if err != nil {
			s.logger.Warn("Gmail fetch failed, using sample emails",
				zap.Int("user_id", userID),
				zap.Error(err),
			)
			candidates = sampleEmails(userID, s.now())
		}
	} else {
		candidates = sampleEmails(userID, s.now())
	}

	result := &SyncResult{Emails: []model.Email{}}
	for _, in := range candidates {
		if in.GmailID != nil {
			exists, err := s.emailSvc.emailStore.ExistsByGmailID(ctx, userID, *in.GmailID)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}
		}

		email, _, err := s.emailSvc.Ingest(ctx, in)
		if err != nil {
			return nil, err
		}
		result.Emails = append(result.Emails, *email)
		result.SyncedCount++
	}

	key := fmt.Sprintf(lastSyncKeyFmt, userID)
	if err := s.rdb.Set(ctx, key, s.now().UTC().Format(time.RFC3339), 0).Err(); err != nil {
		s.logger.Warn("Failed to record last sync time", zap.Int("user_id", userID), zap.Error(err))
	}

	return result, nil
}

// Status reports whether the user connected Gmail and when the last
// sync ran.
type Status struct {
	Connected bool    `json:"connected"`
	LastSync  *string `json:"lastSync"`
}

func (s *GmailService) Status(ctx context.Context, userID int) (*Status, error) {
	tok, err := s.tokens.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	st := &Status{Connected: tok != nil}

	key := fmt.Sprintf(lastSyncKeyFmt, userID)
	lastSync, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		st.LastSync = &lastSync
	} else if err != redis.Nil {
		return nil, err
	}

	return st, nil
}

// fetchMessages lists recent messages through the Gmail API. Token
// refresh is handled by the oauth2 token source; refreshed tokens are
// persisted for the next run.
func (s *GmailService) fetchMessages(ctx context.Context, userID int, stored *model.GmailToken) ([]IngestInput, error) {
	tok := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       stored.Expiry,
	}
	source := s.oauth.TokenSource(ctx, tok)

	srv, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	list, err := srv.Users.Messages.List(gmailUser).MaxResults(syncFetchCount).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	var out []IngestInput
	for _, m := range list.Messages {
		msg, err := srv.Users.Messages.Get(gmailUser, m.Id).Format("full").Do()
		if err != nil {
			return nil, fmt.Errorf("unable to fetch message %s: %w", m.Id, err)
		}
		out = append(out, parseMessage(userID, msg))
	}

	// Persist a refreshed token so the stored copy does not go stale.
	if fresh, err := source.Token(); err == nil && fresh.AccessToken != stored.AccessToken {
		refresh := fresh.RefreshToken
		if refresh == "" {
			refresh = stored.RefreshToken
		}
		_ = s.tokens.Upsert(ctx, &model.GmailToken{
			UserID:       userID,
			AccessToken:  fresh.AccessToken,
			RefreshToken: refresh,
			Expiry:       fresh.Expiry,
		})
	}

	return out, nil
}

func parseMessage(userID int, msg *gmail.Message) IngestInput {
	gmailID := msg.Id
	in := IngestInput{
		UserID:  userID,
		Body:    msg.Snippet,
		GmailID: &gmailID,
		Source:  "gmail_sync",
	}

	if msg.Payload == nil {
		return in
	}

	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			in.Subject = h.Value
		case "From":
			in.Sender = h.Value
		case "Date":
			if t, err := time.Parse(time.RFC1123Z, h.Value); err == nil {
				received := t
				in.ReceivedAt = &received
			}
		}
	}

	if body := extractPlainText(msg.Payload); body != "" {
		in.Body = body
	}

	return in
}

func extractPlainText(part *gmail.MessagePart) string {
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
		return string(data)
	}
	for _, p := range part.Parts {
		if text := extractPlainText(p); text != "" {
			return text
		}
	}
	return ""
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// sampleEmails are the canned messages used when no Gmail account is
// connected. Dates inside the bodies feed the deadline extractor.
func sampleEmails(userID int, now time.Time) []IngestInput {
	mk := func(id, subject, body, sender string) IngestInput {
		gmailID := id
		received := now
		return IngestInput{
			UserID:     userID,
			Subject:    subject,
			Body:       body,
			Sender:     sender,
			ReceivedAt: &received,
			GmailID:    &gmailID,
			Source:     "gmail_sync",
		}
	}

	return []IngestInput{
		mk("mock_1",
			"New Software Development Project",
			"We are looking for experienced developers to join our new project. The deadline for applications is 2024-02-15. This is a great opportunity for software engineers.",
			"techcompany@example.com"),
		mk("mock_2",
			"Team Meeting Tomorrow",
			"Don't forget about our team meeting tomorrow at 2 PM. We will discuss the upcoming project milestones.",
			"manager@example.com"),
		mk("mock_3",
			"Weekly Newsletter",
			"Check out this week's newsletter with the latest news and updates from around the world.",
			"newsletter@example.com"),
		mk("mock_4",
			"Code Review Request",
			"Please review the latest pull request for the authentication module. The code review deadline is 2024-01-25.",
			"colleague@example.com"),
		mk("mock_5",
			"Security Update Required",
			"Important security update for your development environment. Please update your dependencies by 2024-02-01.",
			"security@example.com"),
	}
}
