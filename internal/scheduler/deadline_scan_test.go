package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inboxiq/internal/model"
)

type fakeEmailSource struct {
	byDeadline map[string][]model.EmailWithDomain
	queries    []string
}

func (s *fakeEmailSource) ListRelevantByDeadline(ctx context.Context, deadline string) ([]model.EmailWithDomain, error) {
	s.queries = append(s.queries, deadline)
	return s.byDeadline[deadline], nil
}

type pair struct{ userID, emailID int }

type fakeReminderCreator struct {
	existing map[pair]bool
	created  []model.EmailWithDomain
}

func (f *fakeReminderCreator) ReminderExists(ctx context.Context, userID, emailID int) (bool, error) {
	return f.existing[pair{userID, emailID}], nil
}

func (f *fakeReminderCreator) CreateDeadlineReminder(ctx context.Context, e model.EmailWithDomain) error {
	f.created = append(f.created, e)
	f.existing[pair{e.UserID, e.ID}] = true
	return nil
}

func newTestScanner(emails *fakeEmailSource, reminders *fakeReminderCreator, now time.Time) *DeadlineScanner {
	s := NewDeadlineScanner("0 9 * * *", emails, reminders, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestRunNowQueriesThreeDaysOut(t *testing.T) {
	emails := &fakeEmailSource{byDeadline: map[string][]model.EmailWithDomain{}}
	reminders := &fakeReminderCreator{existing: map[pair]bool{}}
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	newTestScanner(emails, reminders, now).RunNow(context.Background())

	require.Len(t, emails.queries, 1)
	assert.Equal(t, "2024-01-13", emails.queries[0])
}

func TestRunNowCreatesReminders(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	emails := &fakeEmailSource{byDeadline: map[string][]model.EmailWithDomain{
		"2024-01-13": {
			{ID: 1, UserID: 1, Subject: "Patient discharge", Deadline: "2024-01-13", Domain: "Healthcare"},
			{ID: 2, UserID: 2, Subject: "Budget review", Deadline: "2024-01-13", Domain: "Finance"},
		},
	}}
	reminders := &fakeReminderCreator{existing: map[pair]bool{}}

	newTestScanner(emails, reminders, now).RunNow(context.Background())

	require.Len(t, reminders.created, 2)
	assert.Equal(t, "Patient discharge", reminders.created[0].Subject)
	assert.Equal(t, "Budget review", reminders.created[1].Subject)
}

func TestRunNowIsIdempotentForTheSameDay(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	emails := &fakeEmailSource{byDeadline: map[string][]model.EmailWithDomain{
		"2024-01-13": {
			{ID: 1, UserID: 1, Subject: "Patient discharge", Deadline: "2024-01-13", Domain: "Healthcare"},
		},
	}}
	reminders := &fakeReminderCreator{existing: map[pair]bool{}}
	scanner := newTestScanner(emails, reminders, now)

	scanner.RunNow(context.Background())
	scanner.RunNow(context.Background())

	assert.Len(t, reminders.created, 1)
}

func TestRunNowSkipsPreexistingReminders(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	emails := &fakeEmailSource{byDeadline: map[string][]model.EmailWithDomain{
		"2024-01-13": {
			{ID: 1, UserID: 1, Subject: "Patient discharge", Deadline: "2024-01-13", Domain: "Healthcare"},
		},
	}}
	reminders := &fakeReminderCreator{existing: map[pair]bool{
		{userID: 1, emailID: 1}: true,
	}}

	newTestScanner(emails, reminders, now).RunNow(context.Background())

	assert.Empty(t, reminders.created)
}
