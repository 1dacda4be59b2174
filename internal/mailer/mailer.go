// Package mailer sends outbound mail over SMTP with STARTTLS.
package mailer

import (
	"gopkg.in/gomail.v2"

	"quizhub/internal/config"
)

// SMTPMailer implements jobs.Mailer on top of gomail. Attachments are
// base64-encoded into the message body by the library.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg *config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers a plain-text message, optionally attaching files by path.
func (m *SMTPMailer) Send(to, subject, body string, attachments ...string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	for _, path := range attachments {
		msg.Attach(path)
	}
	return m.dialer.DialAndSend(msg)
}
