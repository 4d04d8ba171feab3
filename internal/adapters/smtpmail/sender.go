// Package smtpmail delivers queued notification mail over plain SMTP.
package smtpmail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type Sender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSender configures delivery through host:port. Auth is skipped when
// username is empty, which suits local relays.
func NewSender(host string, port int, username, password, from string) *Sender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Sender{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (s *Sender) Send(ctx context.Context, to, subject, bodyHTML string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		bodyHTML,
	}, "\r\n")
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtpmail: send to %s: %w", to, err)
	}
	return nil
}
