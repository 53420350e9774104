package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SessionRepository reads the sessions table.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// ListSessions returns every scheduled session.
func (r *SessionRepository) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, email, session_date, present_date FROM sessions ORDER BY session_date ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var sessionDay, presentDay time.Time
		if err := rows.Scan(&s.Name, &s.Email, &sessionDay, &presentDay); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		s.SessionDate = NewDate(sessionDay)
		s.PresentDate = NewDate(presentDay)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over session rows: %w", err)
	}
	return sessions, nil
}
