package mail

import (
	"context"
	"errors"
	"net"
	"net/smtp"
	"strings"
)

type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
	}
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, email, name string) error {
	msg, err := renderWelcome(name)
	if err != nil {
		return err
	}
	return m.send(ctx, email, msg)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, name, resetLink string) error {
	msg, err := renderPasswordReset(name, resetLink)
	if err != nil {
		return err
	}
	return m.send(ctx, email, msg)
}

func (m *SMTPMailer) SendPasswordChanged(ctx context.Context, email, name string) error {
	msg, err := renderPasswordChanged(name)
	if err != nil {
		return err
	}
	return m.send(ctx, email, msg)
}

func (m *SMTPMailer) SendAccountLocked(ctx context.Context, email, name string) error {
	msg, err := renderAccountLocked(name)
	if err != nil {
		return err
	}
	return m.send(ctx, email, msg)
}

func (m *SMTPMailer) send(ctx context.Context, email string, msg message) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	payload := buildMIME(m.from, email, msg.Subject, msg.Body)
	return smtp.SendMail(addr, auth, m.from, []string{email}, []byte(payload))
}
