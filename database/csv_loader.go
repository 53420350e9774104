package database

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

func init() {
	// name, email, session_date and present_date are all required columns.
	gocsv.FailIfUnmatchedStructTags = true

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.TrimLeadingSpace = true
		return r
	})
}

// LoadSessionsCSV parses a session schedule. Extra columns are ignored.
func LoadSessionsCSV(r io.Reader) ([]Session, error) {
	var rows []*Session
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse sessions csv: %w", err)
	}

	sessions := make([]Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, *row)
	}
	return sessions, nil
}

// LoadSessionsFile opens path and parses it with LoadSessionsCSV.
func LoadSessionsFile(path string) ([]Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sessions file: %w", err)
	}
	defer f.Close()

	return LoadSessionsCSV(f)
}
