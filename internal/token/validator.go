package token

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Account is the slice of live account state the validator cross-checks
// claims against. SecureText is the encoded form of the current password
// hash, the same encoding used when the token was issued.
type Account struct {
	ID         string
	Email      string
	SecureText string
	Active     bool
}

// AccountLookup resolves the account referenced by a claim set.
// Implementations return ErrAccountNotFound when the account is absent;
// any other error is treated as a transport failure, not absence.
type AccountLookup interface {
	AccountByID(ctx context.Context, id string) (*Account, error)
}

// Validator turns opaque token strings into validated claims by decoding,
// schema-checking, expiry-checking and cross-checking them against current
// account state. Validation is a pure function of (token, account row):
// changing a password invalidates every previously issued auth token, and
// completing a reset or changing email invalidates every outstanding reset
// token, with no token store on the server side.
type Validator struct {
	codec  *Codec
	lookup AccountLookup
	now    func() time.Time
}

func NewValidator(codec *Codec, lookup AccountLookup) *Validator {
	return &Validator{codec: codec, lookup: lookup, now: time.Now}
}

// ValidateAuth runs the full rejection ladder for a session token. Checks
// run in a fixed order and short-circuit on the first failure.
func (v *Validator) ValidateAuth(ctx context.Context, tokenString string) (*AuthClaims, error) {
	claims, err := v.codec.DecodeAuth(tokenString)
	if err != nil {
		return nil, err
	}
	if err := v.checkExpiry(claims.Expires); err != nil {
		return nil, err
	}
	account, err := v.resolveAccount(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if account.Email != claims.Email || account.SecureText != claims.SecureText {
		return nil, ErrStateMismatch
	}
	return claims, nil
}

// ValidateReset runs the rejection ladder for a password-reset token.
// The token's purpose tag must equal the purpose expected for the
// requested operation.
func (v *Validator) ValidateReset(ctx context.Context, tokenString, expectedPurpose string) (*ResetClaims, error) {
	claims, err := v.codec.DecodeReset(tokenString)
	if err != nil {
		return nil, err
	}
	if err := v.checkExpiry(claims.Expires); err != nil {
		return nil, err
	}
	account, err := v.resolveAccount(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if account.Email != claims.Email || claims.Purpose != expectedPurpose {
		return nil, ErrStateMismatch
	}
	return claims, nil
}

func (v *Validator) checkExpiry(expires time.Time) error {
	if !v.now().UTC().Before(expires) {
		return ErrTokenExpired
	}
	return nil
}

func (v *Validator) resolveAccount(ctx context.Context, id string) (*Account, error) {
	account, err := v.lookup.AccountByID(ctx, id)
	switch {
	case err != nil && errors.Is(err, ErrAccountNotFound):
		return nil, ErrAccountNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	case account == nil:
		return nil, ErrAccountNotFound
	}
	if !account.Active {
		return nil, ErrAccountInactive
	}
	return account, nil
}
