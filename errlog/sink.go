package errlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const dateLayout = "2006 / 01 / 02"

// Sink appends error records to a flat text file.
type Sink struct {
	mu   sync.Mutex
	path string
}

// NewSink returns a sink writing to path. The file is created on first write.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

// DefaultPath is log.txt next to the running executable.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "log.txt"
	}
	return filepath.Join(filepath.Dir(exe), "log.txt")
}

// Path returns the file the sink appends to.
func (s *Sink) Path() string {
	return s.path
}

// Record appends one record for err. A nil sink discards the record.
func (s *Sink) Record(err *Error) error {
	if s == nil || err == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, openErr := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if openErr != nil {
		return fmt.Errorf("failed to open error log %s: %w", s.path, openErr)
	}

	_, writeErr := f.WriteString(Format(err))
	closeErr := f.Close()
	if writeErr != nil || closeErr != nil {
		return fmt.Errorf("failed to write error log %s: %w", s.path, errors.Join(writeErr, closeErr))
	}
	return nil
}

// Format renders err the way Record writes it, including the trailing separator.
func Format(err *Error) string {
	return fmt.Sprintf("%s \nERROR: %s \nLINE: %d\n", err.Time.Format(dateLayout), err.Message, err.Line)
}
