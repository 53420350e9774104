package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EmailLogRepository records send attempts in email_logs.
type EmailLogRepository struct {
	db *sql.DB
}

func NewEmailLogRepository(db *sql.DB) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// LogEmail inserts one attempt.
func (r *EmailLogRepository) LogEmail(ctx context.Context, entry EmailLog) error {
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO email_logs (sent_to, subject, body_preview, status, sent_at, recipient_count) VALUES ($1, $2, $3, $4, $5, $6)",
		entry.SentTo, entry.Subject, entry.BodyPreview, entry.Status, entry.SentAt, entry.RecipientCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert email log: %w", err)
	}
	return nil
}

// ListByDate returns up to limit attempts made on day, newest first.
func (r *EmailLogRepository) ListByDate(ctx context.Context, day Date, limit int) ([]EmailLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sent_to, subject, body_preview, status, sent_at, recipient_count FROM email_logs
		WHERE sent_at::date = $1::date ORDER BY sent_at DESC LIMIT $2`,
		day.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query email logs: %w", err)
	}
	defer rows.Close()

	logs := []EmailLog{}
	for rows.Next() {
		var e EmailLog
		if err := rows.Scan(&e.ID, &e.SentTo, &e.Subject, &e.BodyPreview, &e.Status, &e.SentAt, &e.RecipientCount); err != nil {
			return nil, fmt.Errorf("failed to scan email log row: %w", err)
		}
		logs = append(logs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over email logs rows: %w", err)
	}
	return logs, nil
}
