package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"inboxiq/internal/model"
	"inboxiq/pkg/metrics"
)

type DeadlineEmailSource interface {
	ListRelevantByDeadline(ctx context.Context, deadline string) ([]model.EmailWithDomain, error)
}

type ReminderCreator interface {
	ReminderExists(ctx context.Context, userID, emailID int) (bool, error)
	CreateDeadlineReminder(ctx context.Context, e model.EmailWithDomain) error
}

// DeadlineScanner runs the daily job that emits reminder notifications
// for relevant emails whose deadline is exactly three days out.
type DeadlineScanner struct {
	cronEngine *cron.Cron
	cronSpec   string
	emails     DeadlineEmailSource
	reminders  ReminderCreator
	logger     *zap.Logger
	now        func() time.Time
}

func NewDeadlineScanner(
	cronSpec string,
	emails DeadlineEmailSource,
	reminders ReminderCreator,
	logger *zap.Logger,
) *DeadlineScanner {
	return &DeadlineScanner{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		cronSpec:   cronSpec,
		emails:     emails,
		reminders:  reminders,
		logger:     logger,
		now:        time.Now,
	}
}

// Start schedules the daily run. It does not run the job immediately;
// callers that want a run at startup invoke RunNow explicitly.
func (s *DeadlineScanner) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.RunNow(ctx)
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("Deadline scanner started", zap.String("cron_spec", s.cronSpec))
	return nil
}

func (s *DeadlineScanner) Stop() {
	stopCtx := s.cronEngine.Stop()
	<-stopCtx.Done()
	s.logger.Info("Deadline scanner stopped")
}

// RunNow executes one scan: every relevant email with a deadline equal
// to today + 3 days gets a deadline_reminder, unless one already exists
// for the (user, email) pair. The existence check is read-then-write
// with no atomicity guarantee.
func (s *DeadlineScanner) RunNow(ctx context.Context) {
	metrics.DeadlineScanRuns.Inc()

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	deadline := today.AddDate(0, 0, 3).Format("2006-01-02")

	s.logger.Info("Running deadline scan", zap.String("deadline", deadline))

	emails, err := s.emails.ListRelevantByDeadline(ctx, deadline)
	if err != nil {
		s.logger.Error("Deadline scan query failed", zap.Error(err))
		return
	}

	created := 0
	for _, e := range emails {
		exists, err := s.reminders.ReminderExists(ctx, e.UserID, e.ID)
		if err != nil {
			s.logger.Error("Reminder existence check failed",
				zap.Int("email_id", e.ID),
				zap.Int("user_id", e.UserID),
				zap.Error(err),
			)
			continue
		}
		if exists {
			continue
		}

		if err := s.reminders.CreateDeadlineReminder(ctx, e); err != nil {
			s.logger.Error("Failed to create deadline reminder",
				zap.Int("email_id", e.ID),
				zap.Int("user_id", e.UserID),
				zap.Error(err),
			)
			continue
		}
		created++
		metrics.DeadlineScanReminders.Inc()
	}

	s.logger.Info("Deadline scan finished",
		zap.String("deadline", deadline),
		zap.Int("matched", len(emails)),
		zap.Int("created", created),
	)
}
