package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inboxiq/internal/model"
	"inboxiq/pkg/metrics"
)

// EmailService runs the ingestion pipeline: classify, persist, notify.
// The classifier verdict is produced inline before the caller gets a
// response.
type EmailService struct {
	userStore  UserStore
	emailStore EmailStore
	classifier *ClassifyService
	notifier   *NotificationService
	logger     *zap.Logger
	now        func() time.Time
}

func NewEmailService(
	userStore UserStore,
	emailStore EmailStore,
	classifier *ClassifyService,
	notifier *NotificationService,
	logger *zap.Logger,
) *EmailService {
	return &EmailService{
		userStore:  userStore,
		emailStore: emailStore,
		classifier: classifier,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// IngestInput is a single email to run through the pipeline.
type IngestInput struct {
	UserID     int
	Subject    string
	Body       string
	Sender     string
	ReceivedAt *time.Time
	GmailID    *string
	Source     string // api or gmail_sync, metrics label only
}

// Ingest classifies and stores one email, then creates the immediate
// notification when the classifier marked it relevant.
func (s *EmailService) Ingest(ctx context.Context, in IngestInput) (*model.Email, Analysis, error) {
	user, err := s.userStore.FindByID(ctx, in.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, Analysis{}, ErrNotFound
	}
	if err != nil {
		return nil, Analysis{}, err
	}

	start := s.now()
	analysis := s.classifier.Analyze(in.Subject, in.Body, user.Domain)
	metrics.ObserveClassifyDuration(time.Since(start))

	received := s.now()
	if in.ReceivedAt != nil {
		received = *in.ReceivedAt
	}

	email := &model.Email{
		UserID:          in.UserID,
		GmailID:         in.GmailID,
		Subject:         in.Subject,
		Body:            in.Body,
		Sender:          in.Sender,
		ReceivedAt:      received,
		IsRelevant:      analysis.IsRelevant,
		RelevanceReason: analysis.Reason,
		Deadline:        analysis.Deadline,
	}
	if err := s.emailStore.CreateEmail(ctx, email); err != nil {
		return nil, Analysis{}, err
	}

	if err := s.notifier.NotifyIngested(ctx, user.Domain, email, analysis); err != nil {
		return nil, Analysis{}, err
	}

	metrics.IncrementEmailIngested(in.Source, analysis.IsRelevant)
	s.logger.Info("Email ingested",
		zap.Int("email_id", email.ID),
		zap.Int("user_id", in.UserID),
		zap.Bool("relevant", analysis.IsRelevant),
		zap.String("source", in.Source),
	)

	return email, analysis, nil
}

// Get returns one of the caller's emails.
func (s *EmailService) Get(ctx context.Context, id, userID int) (*model.Email, error) {
	email, err := s.emailStore.FindByIDAndUser(ctx, id, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return email, nil
}

// List returns the caller's emails, optionally only the relevant ones.
func (s *EmailService) List(ctx context.Context, userID int, onlyRelevant bool) ([]model.Email, error) {
	return s.emailStore.ListByUser(ctx, userID, onlyRelevant)
}
