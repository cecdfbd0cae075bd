package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailMailer sends mail through the Gmail API on behalf of the configured
// sender address.
type GmailMailer struct {
	service *gmail.Service
	from    string
}

func NewGmailMailer(ctx context.Context, credentialsFile, from string) (*GmailMailer, error) {
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("gmail: empty sender address")
	}
	service, err := gmail.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gmail.GmailSendScope),
	)
	if err != nil {
		return nil, err
	}
	return &GmailMailer{service: service, from: from}, nil
}

func (m *GmailMailer) SendWelcome(ctx context.Context, email, name string) error {
	msg, err := renderWelcome(name)
	if err != nil {
		return err
	}
	return m.send(ctx, email, msg)
}

func (m *GmailMailer) SendPasswordReset(ctx context.Context, email, name, resetLink string) error {
	msg, err := renderPasswordReset(name, resetLink)
	if err != nil {
		return err
	}
	return m.send(ctx, email, msg)
}

func (m *GmailMailer) SendPasswordChanged(ctx context.Context, email, name string) error {
	msg, err := renderPasswordChanged(name)
	if err != nil {
		return err
	}
	return m.send(ctx, email, msg)
}

func (m *GmailMailer) SendAccountLocked(ctx context.Context, email, name string) error {
	msg, err := renderAccountLocked(name)
	if err != nil {
		return err
	}
	return m.send(ctx, email, msg)
}

func (m *GmailMailer) send(ctx context.Context, email string, msg message) error {
	raw := buildMIME(m.from, email, msg.Subject, msg.Body)
	payload := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}
	_, err := m.service.Users.Messages.Send("me", payload).Context(ctx).Do()
	return err
}
