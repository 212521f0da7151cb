package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/timele/timele-backend/pkg/config"
	"github.com/timele/timele-backend/pkg/logger"
)

// Sender delivers outbound mail. Delivery is best-effort everywhere it
// is used; failures never roll back database state.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewSender picks SMTP when a host is configured, otherwise a log-only
// sender suitable for dev and test environments.
func NewSender(cfg config.SMTPConfig, logg *logger.Logger) Sender {
	if strings.TrimSpace(cfg.Host) == "" {
		return &LogSender{logg: logg}
	}
	return &SMTPSender{cfg: cfg}
}

// LogSender records the send instead of delivering it.
type LogSender struct {
	logg *logger.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, _ string) error {
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"to": to, "subject": subject})
		s.logg.Info(ctx, "email suppressed (no smtp host configured)")
	}
	return nil
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := buildMessage(s.cfg.From, to, subject, body)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
