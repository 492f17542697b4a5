package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"reviewhub/internal/config"
)

// Mailer delivers mail best-effort. Callers must never block correctness on
// a delivery result.
type Mailer interface {
	Send(subject, body, from string, to []string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	addr     string
	host     string
	user     string
	password string
	logger   *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		addr:     cfg.SMTPAddr,
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		logger:   logger,
	}
}

func (m *SMTPMailer) Send(subject, body, from string, to []string) error {
	msg := ""
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/plain; charset=\"UTF-8\"\r\n"
	msg += fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ", "))
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n" + body

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	if err := smtp.SendMail(m.addr, auth, from, to, []byte(msg)); err != nil {
		m.logger.Warn("mail delivery failed", "to", to, "err", err)
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
