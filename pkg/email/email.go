// Package email sends transactional mail for the OTP flow.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Sender delivers a single message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP endpoint using an app password.
type SMTPSender struct {
	host     string
	port     string
	from     string
	password string
}

// NewSMTPSender builds a sender for host:port authenticating as from.
func NewSMTPSender(host, port, from, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, from: from, password: password}
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogSender writes mail to the log instead of the network. Used in
// development and tests where no SMTP credentials are configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "email suppressed (log sender)",
		"to", to,
		"subject", subject,
	)
	return nil
}

// PasswordResetSubject is the subject line for OTP mail.
const PasswordResetSubject = "Password Reset Code - Action Required"

// PasswordResetBody renders the plain-text OTP message.
func PasswordResetBody(code string) string {
	return fmt.Sprintf("Your password reset code is: %s. This code will expire in 10 minutes.", code)
}
