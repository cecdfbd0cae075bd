package token

import "time"

// Lifetime is stamped on every token at encode time, overriding whatever
// expiry the caller put on the claims.
const Lifetime = 30 * 24 * time.Hour

// PurposePasswordReset is the purpose tag a reset token must carry to be
// accepted for a password reset. The tag prevents a reset token from being
// replayed as a different kind of action.
const PurposePasswordReset = "password_reset"

// AuthClaims is the claim set embedded in a session token. SecureText is
// the account's password hash at issuance time: embedding it makes every
// outstanding token invalid the moment the password changes, with no
// server-side revocation list.
type AuthClaims struct {
	UserID     string
	Email      string
	SecureText string
	Expires    time.Time
}

// ResetClaims is the claim set embedded in a password-reset token.
type ResetClaims struct {
	UserID  string
	Email   string
	Purpose string
	Expires time.Time
}
