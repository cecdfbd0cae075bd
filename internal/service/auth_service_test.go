package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/vitae-social/vitae-api/internal/token"
)

type authFixture struct {
	svc    *AuthService
	users  *memoryUserRepo
	mailer *recordingMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	secret := base64.RawURLEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32))
	codec, err := token.NewCodec(secret)
	if err != nil {
		t.Fatalf("NewCodec returned error: %v", err)
	}

	users := newMemoryUserRepo(newFakeClock())
	validator := token.NewValidator(codec, NewAccountLookup(users))
	mailer := &recordingMailer{}
	svc := NewAuthService(users, codec, validator, mailer, 3, "https://vitae.example")
	return &authFixture{svc: svc, users: users, mailer: mailer}
}

func TestAuthService_SignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user, signupToken, err := f.svc.SignUp(ctx, "ada@example.com", "Ada", "correct horse battery")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if signupToken == "" {
		t.Fatalf("expected a session token from SignUp")
	}
	if len(f.mailer.welcomes) != 1 || f.mailer.welcomes[0] != "ada@example.com" {
		t.Fatalf("expected one welcome mail to ada@example.com, got %v", f.mailer.welcomes)
	}

	authenticated, err := f.svc.Authenticate(ctx, signupToken)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if authenticated.ID != user.ID {
		t.Fatalf("authenticated as %s, expected %s", authenticated.ID, user.ID)
	}

	signedIn, signinToken, err := f.svc.SignIn(ctx, "ada@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if signedIn.ID != user.ID || signinToken == "" {
		t.Fatalf("SignIn returned user %s token %q", signedIn.ID, signinToken)
	}
}

func TestAuthService_SignUpValidation(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	if _, _, err := f.svc.SignUp(ctx, "ada@example.com", "", "correct horse battery"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for empty name, got %v", err)
	}
	if _, _, err := f.svc.SignUp(ctx, "not-an-email", "Ada", "correct horse battery"); err == nil {
		t.Fatalf("expected error for malformed email")
	}
	if _, _, err := f.svc.SignUp(ctx, "ada@example.com", "Ada", "short"); err == nil {
		t.Fatalf("expected error for short password")
	}

	if _, _, err := f.svc.SignUp(ctx, "ada@example.com", "Ada", "correct horse battery"); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if _, _, err := f.svc.SignUp(ctx, "ada@example.com", "Other Ada", "correct horse battery"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for duplicate email, got %v", err)
	}
}

func TestAuthService_LockoutAfterFailedAttempts(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user, _, err := f.svc.SignUp(ctx, "ada@example.com", "Ada", "correct horse battery")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, _, err := f.svc.SignIn(ctx, "ada@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Third failure hits the limit of 3 and deactivates the account.
	if _, _, err := f.svc.SignIn(ctx, "ada@example.com", "wrong password"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked on the final attempt, got %v", err)
	}
	if len(f.mailer.lockNotices) != 1 {
		t.Fatalf("expected one lock notice, got %d", len(f.mailer.lockNotices))
	}

	// Even the correct password is refused while locked.
	if _, _, err := f.svc.SignIn(ctx, "ada@example.com", "correct horse battery"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked for locked account, got %v", err)
	}

	stored, err := f.users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.Active {
		t.Fatalf("expected account to be deactivated")
	}
}

func TestAuthService_SignInResetsAttemptCounter(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user, _, err := f.svc.SignUp(ctx, "ada@example.com", "Ada", "correct horse battery")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	if _, _, err := f.svc.SignIn(ctx, "ada@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := f.svc.SignIn(ctx, "ada@example.com", "correct horse battery"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	stored, err := f.users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.SigninAttempts != 0 {
		t.Fatalf("expected attempt counter reset, got %d", stored.SigninAttempts)
	}
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user, oldToken, err := f.svc.SignUp(ctx, "ada@example.com", "Ada", "correct horse battery")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	if err := f.svc.RequestPasswordReset(ctx, "ada@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if len(f.mailer.resets) != 1 {
		t.Fatalf("expected one reset mail, got %d", len(f.mailer.resets))
	}

	stored, err := f.users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.ResetToken == "" {
		t.Fatalf("expected reset token stored on the account row")
	}
	resetToken := stored.ResetToken

	if _, _, err := f.svc.ResetPassword(ctx, resetToken, "a brand new password"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if len(f.mailer.passwordChanges) != 1 {
		t.Fatalf("expected one password-changed mail, got %d", len(f.mailer.passwordChanges))
	}

	// Old session tokens carry the previous password hash and stop working.
	if _, err := f.svc.Authenticate(ctx, oldToken); !errors.Is(err, token.ErrStateMismatch) {
		t.Fatalf("expected ErrStateMismatch for the pre-reset token, got %v", err)
	}

	// The stored token was cleared; a second reset with it is refused.
	if _, _, err := f.svc.ResetPassword(ctx, resetToken, "yet another password"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken for reused token, got %v", err)
	}

	if _, _, err := f.svc.SignIn(ctx, "ada@example.com", "a brand new password"); err != nil {
		t.Fatalf("SignIn with new password returned error: %v", err)
	}
}

func TestAuthService_ResetUnlocksAccount(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	if _, _, err := f.svc.SignUp(ctx, "ada@example.com", "Ada", "correct horse battery"); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		f.svc.SignIn(ctx, "ada@example.com", "wrong password")
	}

	if err := f.svc.RequestPasswordReset(ctx, "ada@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	stored, _ := f.users.FindByEmail(ctx, "ada@example.com")
	if _, _, err := f.svc.ResetPassword(ctx, stored.ResetToken, "a brand new password"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}

	if _, _, err := f.svc.SignIn(ctx, "ada@example.com", "a brand new password"); err != nil {
		t.Fatalf("expected reset to unlock the account, got %v", err)
	}
}

func TestAuthService_RequestResetForUnknownEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	if err := f.svc.RequestPasswordReset(ctx, "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(f.mailer.resets) != 0 {
		t.Fatalf("expected no reset mail, got %d", len(f.mailer.resets))
	}
}
