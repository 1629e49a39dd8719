package auth

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the identity a token carries. Role is informational;
// authorization always reloads the user.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies tokens of the form
// base64url(json(claims)) "." base64url(hmac-sha256(secret, first part)).
type TokenCodec struct {
	secret    []byte
	ttl       time.Duration
	method    *jwt.SigningMethodHMAC
	validator *jwt.Validator
	now       func() time.Time
}

// NewTokenCodec constructs a codec for the secret. Tokens expire after ttl.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return newTokenCodec(secret, ttl, time.Now)
}

func newTokenCodec(secret string, ttl time.Duration, now func() time.Time) *TokenCodec {
	return &TokenCodec{
		secret:    []byte(secret),
		ttl:       ttl,
		method:    jwt.SigningMethodHS256,
		validator: jwt.NewValidator(jwt.WithExpirationRequired(), jwt.WithIssuedAt(), jwt.WithTimeFunc(now)),
		now:       now,
	}
}

// Sign stamps issue and expiry times on the claims and returns the token.
func (tc *TokenCodec) Sign(claims Claims) (string, error) {
	now := tc.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(tc.ttl))

	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	base := base64.RawURLEncoding.EncodeToString(data)

	sig, err := tc.method.Sign(base, tc.secret)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}

	return base + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify returns the claims of a token with a valid signature whose
// validity window includes now.
func (tc *TokenCodec) Verify(token string) (Claims, error) {
	base, sigPart, ok := strings.Cut(token, ".")
	if !ok || base == "" || sigPart == "" || strings.Contains(sigPart, ".") {
		return Claims{}, fmt.Errorf("%w: malformed", ErrInvalidToken)
	}

	sig, err := base64.RawURLEncoding.Strict().DecodeString(sigPart)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: signature encoding", ErrInvalidToken)
	}

	want, err := tc.method.Sign(base, tc.secret)
	if err != nil {
		return Claims{}, fmt.Errorf("sign: %w", err)
	}

	if !hmac.Equal(sig, want) {
		return Claims{}, fmt.Errorf("%w: signature", ErrInvalidToken)
	}

	data, err := base64.RawURLEncoding.DecodeString(base)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: payload encoding", ErrInvalidToken)
	}

	var claims Claims
	if err := json.Unmarshal(data, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: payload: %s", ErrInvalidToken, err)
	}

	if err := tc.validator.Validate(claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	if claims.UserID == 0 {
		return Claims{}, fmt.Errorf("%w: missing id", ErrInvalidToken)
	}

	return claims, nil
}
