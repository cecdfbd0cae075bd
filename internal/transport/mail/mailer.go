package mail

import "context"

// Mailer sends transactional account email.
type Mailer interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendPasswordReset(ctx context.Context, email, name, resetLink string) error
	SendPasswordChanged(ctx context.Context, email, name string) error
	SendAccountLocked(ctx context.Context, email, name string) error
}

// NopMailer discards all mail. Used when no mail backend is configured.
type NopMailer struct{}

func (NopMailer) SendWelcome(context.Context, string, string) error {
	return nil
}

func (NopMailer) SendPasswordReset(context.Context, string, string, string) error {
	return nil
}

func (NopMailer) SendPasswordChanged(context.Context, string, string) error {
	return nil
}

func (NopMailer) SendAccountLocked(context.Context, string, string) error {
	return nil
}
