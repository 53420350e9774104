// Package errlog defines the two user-visible error kinds of the mailer and
// the append-only file sink they are recorded to.
//
// Building an error and recording it are separate steps: New and Wrap only
// construct the value, Sink.Record writes it.
package errlog

import (
	"errors"
	"runtime"
	"time"
)

// Kind identifies which part of the mailer failed.
type Kind int

const (
	// KindConfiguration means the environment/config source could not be loaded.
	KindConfiguration Kind = iota + 1
	// KindSend means a mail transfer failed.
	KindSend
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindSend:
		return "SendError"
	default:
		return "UnknownError"
	}
}

// Transfer narrows a SendError down to the stage of the SMTP exchange that failed.
type Transfer int

const (
	TransferUnknown Transfer = iota
	TransferConnect
	TransferAuth
	TransferProtocol
)

func (t Transfer) String() string {
	switch t {
	case TransferConnect:
		return "connect"
	case TransferAuth:
		return "auth"
	case TransferProtocol:
		return "protocol"
	default:
		return "transfer"
	}
}

// Error is a typed mailer failure. Line is the source line that built it.
type Error struct {
	Kind     Kind
	Transfer Transfer
	Message  string
	Line     int
	Time     time.Time
	Err      error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error of the given kind. It does not write anything.
func New(kind Kind, message string) *Error {
	return build(kind, TransferUnknown, message, nil)
}

// Wrap builds an Error that keeps cause reachable through errors.Is/As.
func Wrap(kind Kind, transfer Transfer, message string, cause error) *Error {
	return build(kind, transfer, message, cause)
}

func build(kind Kind, transfer Transfer, message string, cause error) *Error {
	// skip build and New/Wrap
	_, _, line, _ := runtime.Caller(2)
	return &Error{
		Kind:     kind,
		Transfer: transfer,
		Message:  message,
		Line:     line,
		Time:     time.Now(),
		Err:      cause,
	}
}

// Is reports whether err is, or wraps, an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
