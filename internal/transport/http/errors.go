package http

import (
	"errors"

	"github.com/vitae-social/vitae-api/internal/service"
	"github.com/vitae-social/vitae-api/internal/token"
	"github.com/vitae-social/vitae-api/internal/util"
)

// isTokenError covers every token rejection a client can cause. Lookup
// failures are deliberately excluded: those are a backend fault and map to
// a 500.
func isTokenError(err error) bool {
	return errors.Is(err, token.ErrTokenInvalid) ||
		errors.Is(err, token.ErrClaimsMalformed) ||
		errors.Is(err, token.ErrTokenExpired) ||
		errors.Is(err, token.ErrAccountNotFound) ||
		errors.Is(err, token.ErrAccountInactive) ||
		errors.Is(err, token.ErrStateMismatch)
}

func isValidationError(err error) bool {
	return errors.Is(err, util.ErrInvalidEmail) ||
		errors.Is(err, util.ErrPasswordTooShort) ||
		errors.Is(err, service.ErrInvalidName) ||
		errors.Is(err, service.ErrInvalidBio) ||
		errors.Is(err, service.ErrInvalidTitle) ||
		errors.Is(err, service.ErrInvalidQuote) ||
		errors.Is(err, service.ErrInvalidComment)
}
