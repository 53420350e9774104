package utils

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetDailyMailCount returns the number of recipients (To + Bcc) mailed today.
func GetDailyMailCount(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	query := `
		SELECT COALESCE(SUM(recipient_count), 0) FROM email_logs
		WHERE sent_at::date = CURRENT_DATE
	`
	err := db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get daily mail count: %w", err)
	}
	return count, nil
}

// GetEmailStatusDistribution retrieves today's recipient counts per status
// (Success/Failed).
func GetEmailStatusDistribution(ctx context.Context, db *sql.DB) (map[string]int, error) {
	statusCounts := make(map[string]int)
	query := `
		SELECT status, COALESCE(SUM(recipient_count), 0) FROM email_logs
		WHERE sent_at::date = CURRENT_DATE
		GROUP BY status
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get email status distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status distribution row: %w", err)
		}
		statusCounts[status] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over status distribution rows: %w", err)
	}

	// Ensure both keys exist even if count is 0 for consistent JSON
	if _, ok := statusCounts["Success"]; !ok {
		statusCounts["Success"] = 0
	}
	if _, ok := statusCounts["Failed"]; !ok {
		statusCounts["Failed"] = 0
	}

	return statusCounts, nil
}

// GetDailySendsOverPeriod retrieves the total recipient count per day for the
// last 'days' days, counting back from now.
func GetDailySendsOverPeriod(ctx context.Context, db *sql.DB, now time.Time, days int) (map[string]int, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}

	dailySends := make(map[string]int)
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		dailySends[date] = 0
	}

	query := `
		SELECT sent_at::date AS log_date, COALESCE(SUM(recipient_count), 0)
		FROM email_logs
		WHERE sent_at::date >= $1::date
		GROUP BY log_date
		ORDER BY log_date ASC
	`
	since := now.AddDate(0, 0, -(days - 1)).Format("2006-01-02")

	rows, err := db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily sends over period: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var logDate time.Time
		var count int
		if err := rows.Scan(&logDate, &count); err != nil {
			return nil, fmt.Errorf("failed to scan daily sends row: %w", err)
		}
		dailySends[logDate.Format("2006-01-02")] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over daily sends rows: %w", err)
	}

	return dailySends, nil
}
