package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tutor-mailer/database"
)

// MockSender is a mock implementation of Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendEmail(ctx context.Context, name, recipient, subject string) error {
	args := m.Called(ctx, name, recipient, subject)
	return args.Error(0)
}

func session(name, email string, day time.Time) database.Session {
	return database.Session{
		Name:        name,
		Email:       email,
		SessionDate: database.NewDate(day),
		PresentDate: database.NewDate(day.AddDate(0, 0, -7)),
	}
}

func newReminderService(sender Sender, now time.Time) *ReminderService {
	s := NewReminderService(sender, nil)
	s.now = func() time.Time { return now }
	return s
}

func TestCutoff_IsYesterday(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	require.Equal(t, "2026-03-09", Cutoff(now).String())
}

func TestSendReminders_OnlySessionsOnOrBeforeYesterday(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	sessions := []database.Session{
		session("Jane", "jane@z.com", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)),
		session("Omar", "omar@z.com", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		session("Lia", "lia@z.com", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)),
		session("Ken", "ken@z.com", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)),
	}

	sender := &MockSender{}
	sender.On("SendEmail", mock.Anything, "Jane", "jane@z.com", "Session Reminder for Jane").Return(nil).Once()
	sender.On("SendEmail", mock.Anything, "Omar", "omar@z.com", "Session Reminder for Omar").Return(nil).Once()

	err := newReminderService(sender, now).SendReminders(context.Background(), sessions)

	require.NoError(t, err)
	sender.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "SendEmail", 2)
}

func TestSendReminders_NoQualifyingSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	sender := &MockSender{}

	err := newReminderService(sender, now).SendReminders(context.Background(), []database.Session{
		session("Lia", "lia@z.com", now),
		session("Ken", "ken@z.com", now.AddDate(0, 0, 3)),
	})

	require.NoError(t, err)
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendReminders_ContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -2)
	sendErr := errors.New("relay down")

	sender := &MockSender{}
	sender.On("SendEmail", mock.Anything, "Jane", "jane@z.com", mock.Anything).Return(sendErr).Once()
	sender.On("SendEmail", mock.Anything, "Omar", "omar@z.com", mock.Anything).Return(nil).Once()

	err := newReminderService(sender, now).SendReminders(context.Background(), []database.Session{
		session("Jane", "jane@z.com", past),
		session("Omar", "omar@z.com", past),
	})

	require.Error(t, err)
	require.ErrorIs(t, err, sendErr)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 1)
	require.Contains(t, err.Error(), "jane@z.com")
	sender.AssertExpectations(t)
}

func TestSendReminders_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &MockSender{}
	err := newReminderService(sender, now).SendReminders(ctx, []database.Session{
		session("Jane", "jane@z.com", now.AddDate(0, 0, -2)),
	})

	require.ErrorIs(t, err, context.Canceled)
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
