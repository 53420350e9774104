package database

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Email log statuses.
const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// EmailLog represents a row in the email_logs table
type EmailLog struct {
	ID             int       `json:"id"`
	SentTo         string    `json:"sent_to"`
	Subject        string    `json:"subject"`
	BodyPreview    string    `json:"body_preview"`
	Status         string    `json:"status"`
	SentAt         time.Time `json:"sent_at"`
	RecipientCount int       `json:"recipient_count"` // To + Bcc
}

// Session is one scheduled tutoring session. Rows carry no identity and are
// processed independently.
type Session struct {
	Name        string `csv:"name" json:"name"`
	Email       string `csv:"email" json:"email"`
	SessionDate Date   `csv:"session_date" json:"session_date"`
	PresentDate Date   `csv:"present_date" json:"present_date"`
}

// Date is a calendar day without time of day, stored at midnight UTC.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts the layouts commonly found in exported schedules.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (d *Date) UnmarshalCSV(s string) error {
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (d Date) MarshalCSV() (string, error) {
	return d.String(), nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}
