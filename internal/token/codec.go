package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const keyLength = 32

// Codec turns claim sets into opaque token strings and back. Tokens are the
// AES-256-GCM ciphertext of the JSON-serialized claims, base64 url-safe
// encoded with the nonce prepended. Authenticated encryption rather than a
// bare signature: the claims embed the password hash, so they have to stay
// confidential to the token holder as well as tamper-evident.
type Codec struct {
	aead cipher.AEAD
	now  func() time.Time
}

// NewCodec builds a codec from the base64 url-safe encoded process secret.
// The decoded key must be exactly 32 bytes; anything else is a
// configuration error the caller should treat as fatal at startup.
func NewCodec(secret string) (*Codec, error) {
	key, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, fmt.Errorf("app secret key is not valid base64: %w", err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("app secret key must decode to %d bytes, got %d", keyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead, now: time.Now}, nil
}

// EncodeAuth serializes and encrypts auth claims. The expiry is always
// restamped to now + Lifetime.
func (c *Codec) EncodeAuth(claims AuthClaims) (string, error) {
	expires := c.now().UTC().Add(Lifetime)
	return c.seal(map[string]string{
		"userId":     claims.UserID,
		"email":      claims.Email,
		"secureText": claims.SecureText,
		"expires":    expires.Format(time.RFC3339Nano),
	})
}

// EncodeReset serializes and encrypts reset claims, restamping the expiry
// the same way EncodeAuth does.
func (c *Codec) EncodeReset(claims ResetClaims) (string, error) {
	expires := c.now().UTC().Add(Lifetime)
	return c.seal(map[string]string{
		"userId":  claims.UserID,
		"email":   claims.Email,
		"purpose": claims.Purpose,
		"expires": expires.Format(time.RFC3339Nano),
	})
}

// DecodeAuth is the inverse of EncodeAuth without any business-rule
// validation: expiry and account checks belong to the Validator.
func (c *Codec) DecodeAuth(tokenString string) (*AuthClaims, error) {
	fields, err := c.open(tokenString, "userId", "email", "secureText", "expires")
	if err != nil {
		return nil, err
	}
	expires, err := parseExpires(fields["expires"])
	if err != nil {
		return nil, err
	}
	return &AuthClaims{
		UserID:     fields["userId"],
		Email:      fields["email"],
		SecureText: fields["secureText"],
		Expires:    expires,
	}, nil
}

// DecodeReset is the inverse of EncodeReset without business-rule checks.
func (c *Codec) DecodeReset(tokenString string) (*ResetClaims, error) {
	fields, err := c.open(tokenString, "userId", "email", "purpose", "expires")
	if err != nil {
		return nil, err
	}
	expires, err := parseExpires(fields["expires"])
	if err != nil {
		return nil, err
	}
	return &ResetClaims{
		UserID:  fields["userId"],
		Email:   fields["email"],
		Purpose: fields["purpose"],
		Expires: expires,
	}, nil
}

func (c *Codec) seal(payload map[string]string) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// open decrypts the token and enforces the strict claim schema: every
// expected key present, every value a JSON string, no extra keys.
func (c *Codec) open(tokenString string, keys ...string) (map[string]string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(tokenString, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if len(raw) <= c.aead.NonceSize() {
		return nil, fmt.Errorf("%w: token too short", ErrTokenInvalid)
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(plaintext, &decoded); err != nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrClaimsMalformed)
	}
	expected := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		expected[key] = struct{}{}
	}
	for key := range decoded {
		if _, ok := expected[key]; !ok {
			return nil, fmt.Errorf("%w: unexpected field %q", ErrClaimsMalformed, key)
		}
	}

	fields := make(map[string]string, len(keys))
	for _, key := range keys {
		value, ok := decoded[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrClaimsMalformed, key)
		}
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return nil, fmt.Errorf("%w: field %q has invalid type", ErrClaimsMalformed, key)
		}
		fields[key] = text
	}
	return fields, nil
}

func parseExpires(text string) (time.Time, error) {
	expires, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: field %q is not a timestamp", ErrClaimsMalformed, "expires")
	}
	return expires, nil
}
