package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
	"github.com/vitae-social/vitae-api/internal/repository/ports"
	"github.com/vitae-social/vitae-api/internal/token"
	"github.com/vitae-social/vitae-api/internal/transport/mail"
	"github.com/vitae-social/vitae-api/internal/util"
)

const maxNameLength = 64

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrAccountLocked      = errors.New("account is locked")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("reset token is invalid or already used")
	ErrInvalidName        = errors.New("name must be between 1 and 64 characters")
)

type AuthService struct {
	users             ports.UserRepository
	codec             *token.Codec
	validator         *token.Validator
	mailer            mail.Mailer
	maxSigninAttempts int
	frontendBaseURL   string
}

func NewAuthService(users ports.UserRepository, codec *token.Codec, validator *token.Validator, mailer mail.Mailer, maxSigninAttempts int, frontendBaseURL string) *AuthService {
	if maxSigninAttempts <= 0 {
		maxSigninAttempts = 5
	}
	if mailer == nil {
		mailer = mail.NopMailer{}
	}
	return &AuthService{
		users:             users,
		codec:             codec,
		validator:         validator,
		mailer:            mailer,
		maxSigninAttempts: maxSigninAttempts,
		frontendBaseURL:   strings.TrimRight(frontendBaseURL, "/"),
	}
}

// SignIn verifies credentials and issues a session token. Each failed
// attempt is counted; reaching the limit deactivates the account until a
// password reset.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, string, error) {
	normalized, err := util.NormalizeEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.Active {
		return nil, "", ErrAccountLocked
	}

	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		attempts := user.SigninAttempts + 1
		stillActive := attempts < s.maxSigninAttempts
		if err := s.users.UpdateSigninAttempts(ctx, user.ID, attempts, stillActive); err != nil {
			return nil, "", err
		}
		if !stillActive {
			if err := s.mailer.SendAccountLocked(ctx, user.Email, user.Name); err != nil {
				log.Printf("auth: account locked mail to %s failed: %v", user.Email, err)
			}
			return nil, "", ErrAccountLocked
		}
		return nil, "", ErrInvalidCredentials
	}

	if user.SigninAttempts != 0 {
		if err := s.users.UpdateSigninAttempts(ctx, user.ID, 0, true); err != nil {
			return nil, "", err
		}
		user.SigninAttempts = 0
	}

	tokenString, err := s.issueAuthToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, tokenString, nil
}

// SignUp registers an account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, name, password string) (*domain.User, string, error) {
	normalized, err := util.NormalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" || len(trimmedName) > maxNameLength {
		return nil, "", ErrInvalidName
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Email:        normalized,
		Name:         trimmedName,
		PasswordHash: hash,
		PasswordSalt: salt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		log.Printf("auth: welcome mail to %s failed: %v", user.Email, err)
	}

	tokenString, err := s.issueAuthToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, tokenString, nil
}

// RequestPasswordReset issues a single-use reset token, stores it on the
// account row and mails the reset link. Issuing a new token supersedes any
// outstanding one.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	normalized, err := util.NormalizeEmail(email)
	if err != nil {
		return ErrUserNotFound
	}
	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	resetToken, err := s.codec.EncodeReset(token.ResetClaims{
		UserID:  user.ID.String(),
		Email:   user.Email,
		Purpose: token.PurposePasswordReset,
	})
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, resetToken); err != nil {
		return err
	}

	return s.mailer.SendPasswordReset(ctx, user.Email, user.Name, s.resetLink(resetToken))
}

// ResetPassword consumes a reset token and sets a new password. The stored
// token must match the presented one; a successful reset clears it, resets
// the attempt counter and reactivates the account.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) (*domain.User, string, error) {
	claims, err := s.validator.ValidateReset(ctx, tokenString, token.PurposePasswordReset)
	if err != nil {
		if !errors.Is(err, token.ErrAccountInactive) {
			return nil, "", err
		}
		// A locked account resets its way back in. Reaching the inactive
		// check means decode, schema, expiry and lookup already passed;
		// the stored-token comparison below covers the rest.
		claims, err = s.codec.DecodeReset(tokenString)
		if err != nil {
			return nil, "", err
		}
		if claims.Purpose != token.PurposePasswordReset {
			return nil, "", token.ErrStateMismatch
		}
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, "", ErrInvalidResetToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	if user.ResetToken == "" || user.ResetToken != tokenString {
		return nil, "", ErrInvalidResetToken
	}

	if err := util.ValidatePassword(newPassword); err != nil {
		return nil, "", err
	}
	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return nil, "", err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		return nil, "", err
	}
	user.PasswordHash = hash
	user.PasswordSalt = salt
	user.ResetToken = ""
	user.SigninAttempts = 0
	user.Active = true

	if err := s.mailer.SendPasswordChanged(ctx, user.Email, user.Name); err != nil {
		log.Printf("auth: password changed mail to %s failed: %v", user.Email, err)
	}

	authToken, err := s.issueAuthToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, authToken, nil
}

// Authenticate resolves a session token to its account. Token errors pass
// through unchanged so transports can distinguish expiry from tampering.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.validator.ValidateAuth(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, token.ErrAccountNotFound
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, token.ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

// IssueAuthToken re-issues a session token for the account's current state.
func (s *AuthService) IssueAuthToken(user *domain.User) (string, error) {
	return s.issueAuthToken(user)
}

func (s *AuthService) issueAuthToken(user *domain.User) (string, error) {
	return s.codec.EncodeAuth(token.AuthClaims{
		UserID:     user.ID.String(),
		Email:      user.Email,
		SecureText: util.EncodeSecureText(user.PasswordHash),
	})
}

func (s *AuthService) resetLink(resetToken string) string {
	if s.frontendBaseURL == "" {
		return resetToken
	}
	return fmt.Sprintf("%s/reset-password?token=%s", s.frontendBaseURL, url.QueryEscape(resetToken))
}
