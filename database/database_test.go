package database

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Layouts(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-09", "2024-03-09 17:45:00", "2024-03-09T17:45:00Z", "03/09/2024", "2024/03/09", "  2024-03-09 "} {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(d.Time), in)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseDate("")
	require.Error(t, err)

	_, err = ParseDate("next tuesday")
	require.Error(t, err)
	require.Contains(t, err.Error(), "next tuesday")
}

func TestDate_StringAndJSON(t *testing.T) {
	t.Parallel()

	d := NewDate(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))
	require.Equal(t, "2024-01-01", d.String())

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"2024-01-01"`, string(b))
}

func TestLoadSessionsCSV(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("name,email,session_date,present_date,tutor\n" +
		"Jane,jane@z.com,2024-03-09,2024-03-01,Sam\n" +
		"Logan,logan@y.com,2024-03-12 10:00:00,2024-03-02,Ana\n")

	sessions, err := LoadSessionsCSV(in)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "Jane", sessions[0].Name)
	assert.Equal(t, "jane@z.com", sessions[0].Email)
	assert.Equal(t, "2024-03-09", sessions[0].SessionDate.String())
	assert.Equal(t, "2024-03-01", sessions[0].PresentDate.String())
	assert.Equal(t, "2024-03-12", sessions[1].SessionDate.String())
}

func TestLoadSessionsCSV_MissingColumn(t *testing.T) {
	t.Parallel()

	_, err := LoadSessionsCSV(strings.NewReader("name,email,session_date\nJane,jane@z.com,2024-03-09\n"))
	require.Error(t, err)
}

func TestLoadSessionsCSV_BadDate(t *testing.T) {
	t.Parallel()

	_, err := LoadSessionsCSV(strings.NewReader("name,email,session_date,present_date\nJane,jane@z.com,soon,2024-03-01\n"))
	require.Error(t, err)
}

func TestLoadSessionsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,email,session_date,present_date\nJane,jane@z.com,2024-03-09,2024-03-01\n"), 0o600))

	sessions, err := LoadSessionsFile(path)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	_, err = LoadSessionsFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestSessionRepository_ListSessions(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, email, session_date, present_date FROM sessions")).
		WillReturnRows(sqlmock.NewRows([]string{"name", "email", "session_date", "present_date"}).
			AddRow("Jane", "jane@z.com", day, day.AddDate(0, 0, -7)))

	sessions, err := NewSessionRepository(db).ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Jane", sessions[0].Name)
	assert.Equal(t, "2024-03-09", sessions[0].SessionDate.String())
	assert.Equal(t, "2024-03-02", sessions[0].PresentDate.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailLogRepository_LogEmail(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO email_logs")).
		WithArgs("r@y.com", "Test Mail", "Hi Logan", StatusSuccess, sqlmock.AnyArg(), 2).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewEmailLogRepository(db).LogEmail(context.Background(), EmailLog{
		SentTo:         "r@y.com",
		Subject:        "Test Mail",
		BodyPreview:    "Hi Logan",
		Status:         StatusSuccess,
		RecipientCount: 2,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailLogRepository_ListByDate(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sentAt := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, sent_to, subject, body_preview, status, sent_at, recipient_count FROM email_logs")).
		WithArgs("2024-01-01", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sent_to", "subject", "body_preview", "status", "sent_at", "recipient_count"}).
			AddRow(7, "r@y.com", "Test Mail", "Hi", StatusFailed, sentAt, 2))

	logs, err := NewEmailLogRepository(db).ListByDate(context.Background(), NewDate(sentAt), 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 7, logs[0].ID)
	assert.Equal(t, StatusFailed, logs[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
