package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	mail "gopkg.in/gomail.v2"

	"tutor-mailer/config"
	"tutor-mailer/database"
	"tutor-mailer/errlog"
)

var stripTagsRegex = regexp.MustCompile("<[^>]*>")

const previewLength = 200

// Sender sends one greeting email.
type Sender interface {
	SendEmail(ctx context.Context, name, recipient, subject string) error
}

// Dialer opens an authenticated SMTP session. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (mail.SendCloser, error)
}

// EmailLogger records send attempts.
type EmailLogger interface {
	LogEmail(ctx context.Context, entry database.EmailLog) error
}

// MailService composes greeting emails and sends them through the configured relay.
type MailService struct {
	config   *config.Config
	dialer   Dialer
	errLog   *errlog.Sink
	emailLog EmailLogger
	logger   *zap.Logger
}

// Option configures a MailService.
type Option func(*MailService)

// WithDialer replaces the default gomail dialer.
func WithDialer(d Dialer) Option {
	return func(s *MailService) { s.dialer = d }
}

// WithErrorSink records every SendError to sink.
func WithErrorSink(sink *errlog.Sink) Option {
	return func(s *MailService) { s.errLog = sink }
}

// WithEmailLogger records every attempt, successful or not.
func WithEmailLogger(l EmailLogger) Option {
	return func(s *MailService) { s.emailLog = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *MailService) { s.logger = l }
}

// NewMailService creates a new MailService instance
func NewMailService(cfg *config.Config, opts ...Option) *MailService {
	s := &MailService{
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialer == nil {
		s.dialer = NewDialer(cfg)
	}
	return s
}

// NewDialer builds the gomail dialer for cfg. STARTTLS is negotiated on
// submission ports, implicit TLS on 465.
func NewDialer(cfg *config.Config) *mail.Dialer {
	d := mail.NewDialer(cfg.MailHost, cfg.MailPort, cfg.SenderEmail, cfg.SenderPassword)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.MailHost,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	return d
}

// Compose builds the multipart greeting. From is the configured sender and
// the sender is always blind-copied.
func (s *MailService) Compose(name, recipient, subject string) (*mail.Message, error) {
	m, _, err := s.compose(name, recipient, subject)
	return m, err
}

func (s *MailService) compose(name, recipient, subject string) (*mail.Message, string, error) {
	text, html, err := renderGreeting(name, s.config.SenderName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render greeting: %w", err)
	}

	m := mail.NewMessage()
	m.SetHeader("Subject", subject)
	m.SetAddressHeader("From", s.config.SenderEmail, s.config.SenderName)
	m.SetHeader("To", recipient)
	m.SetHeader("Bcc", s.config.SenderEmail)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)
	return m, text, nil
}

// SendEmail composes and sends one greeting. Any failure is returned as a
// SendError and appended to the error sink.
func (s *MailService) SendEmail(ctx context.Context, name, recipient, subject string) error {
	entry := database.EmailLog{
		SentTo:         recipient,
		Subject:        subject,
		Status:         database.StatusFailed,
		RecipientCount: recipientCount(recipient, s.config.SenderEmail),
	}
	defer s.logAttempt(ctx, &entry)

	if err := ctx.Err(); err != nil {
		return s.fail(errlog.TransferUnknown, err)
	}

	m, text, err := s.compose(name, recipient, subject)
	if err != nil {
		return s.fail(errlog.TransferUnknown, err)
	}
	entry.BodyPreview = preview(text)

	if transfer, err := s.transfer(m); err != nil {
		return s.fail(transfer, err)
	}

	entry.Status = database.StatusSuccess
	s.logger.Info("email sent", zap.String("to", recipient), zap.String("subject", subject))
	return nil
}

// transfer runs one scoped SMTP session. Close is only registered once the
// dial has succeeded.
func (s *MailService) transfer(m *mail.Message) (errlog.Transfer, error) {
	sc, err := s.dialer.Dial()
	if err != nil {
		return classifyDialError(err), err
	}
	defer func() {
		if cerr := sc.Close(); cerr != nil {
			s.logger.Warn("failed to close smtp session", zap.Error(cerr))
		}
	}()

	if err := mail.Send(sc, m); err != nil {
		return errlog.TransferProtocol, err
	}
	return errlog.TransferUnknown, nil
}

func (s *MailService) fail(transfer errlog.Transfer, cause error) error {
	sendErr := errlog.Wrap(errlog.KindSend, transfer, fmt.Sprintf("Error sending email: %v", cause), cause)
	if err := s.errLog.Record(sendErr); err != nil {
		s.logger.Error("failed to record send error", zap.Error(err))
	}
	s.logger.Warn("email send failed",
		zap.String("transfer", transfer.String()),
		zap.Error(cause),
	)
	return sendErr
}

func (s *MailService) logAttempt(ctx context.Context, entry *database.EmailLog) {
	if s.emailLog == nil {
		return
	}
	// the attempt is logged even when ctx was cancelled mid-send
	if err := s.emailLog.LogEmail(context.WithoutCancel(ctx), *entry); err != nil {
		s.logger.Error("CRITICAL: failed to log email attempt", zap.String("to", entry.SentTo), zap.Error(err))
	}
}

func recipientCount(recipient, bcc string) int {
	if strings.EqualFold(strings.TrimSpace(recipient), strings.TrimSpace(bcc)) {
		return 1
	}
	return 2
}

func preview(body string) string {
	plain := strings.Join(strings.Fields(stripTagsRegex.ReplaceAllString(body, "")), " ")
	if len(plain) > previewLength {
		plain = plain[:previewLength] + "..."
	}
	return plain
}
