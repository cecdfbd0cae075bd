package token

import "errors"

var (
	// ErrTokenInvalid covers everything that keeps the string from
	// decrypting under the current key: tampering, truncation, corruption,
	// a token minted under a different key.
	ErrTokenInvalid = errors.New("token is not valid for the current key")

	// ErrClaimsMalformed means the payload decrypted fine but does not
	// match the expected claim schema. Unknown fields are an error, not
	// ignored.
	ErrClaimsMalformed = errors.New("token claims do not match the expected schema")

	ErrTokenExpired    = errors.New("token has expired")
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountInactive = errors.New("account is inactive")
	ErrStateMismatch   = errors.New("token claims no longer match account state")

	// ErrLookupFailed is returned when the account lookup collaborator
	// could not be reached at all. Callers may retry at a higher layer;
	// the validator never retries.
	ErrLookupFailed = errors.New("account lookup failed")
)
