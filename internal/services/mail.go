package services

import (
	"crypto/tls"
	"fmt"
	"html"
	"time"

	"github.com/travelit/backend/internal/config"
	"github.com/travelit/backend/pkg/logger"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// NewMailer returns an SMTP mailer when mail is configured, else a LogMailer.
func NewMailer(cfg *config.MailConfig) Mailer {
	if cfg.Enabled && cfg.Host != "" {
		return NewSMTPMailer(cfg)
	}
	logger.Info().Msg("SMTP disabled, verification emails will only be logged")
	return LogMailer{}
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{dialer: d, from: from}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// LogMailer writes messages to the log instead of sending them. Bodies carry
// single-use tokens, so they only appear at debug level.
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	logger.Info().Str("to", to).Str("subject", subject).Msg("mail not sent (SMTP disabled)")
	logger.Debug().Str("to", to).Str("body", htmlBody).Msg("unsent mail body")
	return nil
}

func verificationEmail(username, link string, ttl time.Duration) (string, string) {
	subject := "Verify your TravelIt account"
	body := fmt.Sprintf(`<p>Hi %s,</p>`+
		`<p>Thanks for signing up to TravelIt. Please confirm your email address by clicking the link below:</p>`+
		`<p><a href="%s">Verify my email</a></p>`+
		`<p>This link expires in %d minutes. If you did not create an account you can ignore this email.</p>`,
		html.EscapeString(username), html.EscapeString(link), int(ttl.Minutes()))
	return subject, body
}
