package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"tutor-mailer/services"
)

const (
	// triggerReadSize is the most a trigger payload may occupy.
	triggerReadSize = 1024

	// triggerPrefixLen bytes lead every payload and carry nothing we use.
	triggerPrefixLen = 2
)

// ErrMalformedTrigger is returned for payloads that are not "<2 bytes>name email subject".
var ErrMalformedTrigger = errors.New("malformed trigger payload")

// TriggerRequest is one decoded send request.
type TriggerRequest struct {
	Name    string
	Email   string
	Subject string
}

// ParseTrigger decodes a payload: two prefix bytes, then exactly three
// whitespace-separated tokens.
func ParseTrigger(payload []byte) (TriggerRequest, error) {
	if len(payload) < triggerPrefixLen {
		return TriggerRequest{}, fmt.Errorf("%w: %d bytes", ErrMalformedTrigger, len(payload))
	}
	body := payload[triggerPrefixLen:]
	if !utf8.Valid(body) {
		return TriggerRequest{}, fmt.Errorf("%w: not utf-8", ErrMalformedTrigger)
	}

	fields := strings.Fields(string(body))
	if len(fields) != 3 {
		return TriggerRequest{}, fmt.Errorf("%w: want 3 tokens, got %d", ErrMalformedTrigger, len(fields))
	}
	return TriggerRequest{Name: fields[0], Email: fields[1], Subject: fields[2]}, nil
}

// TriggerListener serves exactly one send request over TCP and then shuts down.
type TriggerListener struct {
	ln     net.Listener
	sender services.Sender
	logger *zap.Logger
}

// ListenTrigger binds addr. The socket stays open until ServeOnce returns or Close is called.
func ListenTrigger(addr string, sender services.Sender, logger *zap.Logger) (*TriggerListener, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &TriggerListener{ln: ln, sender: sender, logger: logger}, nil
}

// Addr is the bound address.
func (l *TriggerListener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close releases the listening socket.
func (l *TriggerListener) Close() error {
	return l.ln.Close()
}

// ServeOnce accepts one connection, reads one payload, sends one email and
// closes both the connection and the listener. Nothing is written back to the peer.
func (l *TriggerListener) ServeOnce(ctx context.Context) error {
	defer l.ln.Close()

	stop := context.AfterFunc(ctx, func() { l.ln.Close() })
	defer stop()

	l.logger.Info("trigger listener waiting", zap.String("addr", l.ln.Addr().String()))

	conn, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to accept trigger connection: %w", err)
	}
	defer conn.Close()

	l.logger.Info("trigger connection", zap.String("remote", conn.RemoteAddr().String()))

	buf := make([]byte, triggerReadSize)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("failed to read trigger payload: %w", err)
	}

	req, err := ParseTrigger(buf[:n])
	if err != nil {
		l.logger.Warn("rejected trigger payload", zap.Int("bytes", n), zap.Error(err))
		return err
	}

	return l.sender.SendEmail(ctx, req.Name, req.Email, req.Subject)
}
