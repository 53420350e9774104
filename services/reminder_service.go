package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"tutor-mailer/database"
)

// ReminderService emails every student whose session is on or before yesterday.
//
// No "already reminded" state is kept: a row that qualifies on two runs is
// mailed on both.
type ReminderService struct {
	sender Sender
	logger *zap.Logger
	now    func() time.Time
}

func NewReminderService(sender Sender, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{sender: sender, logger: logger, now: time.Now}
}

// ReminderSubject is the subject line used for name.
func ReminderSubject(name string) string {
	return "Session Reminder for " + name
}

// Cutoff is the latest session date that still gets a reminder at now.
func Cutoff(now time.Time) database.Date {
	return database.NewDate(database.NewDate(now).AddDate(0, 0, -1))
}

// SendReminders sends one reminder per qualifying session. A failed send does
// not stop the batch; all failures are returned together.
func (s *ReminderService) SendReminders(ctx context.Context, sessions []database.Session) error {
	cutoff := Cutoff(s.now())

	var result *multierror.Error
	sent := 0
	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return multierror.Append(result, err).ErrorOrNil()
		}
		if session.SessionDate.After(cutoff.Time) {
			continue
		}

		if err := s.sender.SendEmail(ctx, session.Name, session.Email, ReminderSubject(session.Name)); err != nil {
			result = multierror.Append(result, fmt.Errorf("reminder for %s <%s>: %w", session.Name, session.Email, err))
			continue
		}
		sent++
	}

	s.logger.Info("reminder run finished",
		zap.String("cutoff", cutoff.String()),
		zap.Int("sessions", len(sessions)),
		zap.Int("sent", sent),
		zap.Int("failed", failures(result)),
	)
	return result.ErrorOrNil()
}

func failures(err *multierror.Error) int {
	if err == nil {
		return 0
	}
	return len(err.Errors)
}
