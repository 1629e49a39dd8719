package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func Test_TokenRoundTrip(t *testing.T) {
	tc := NewTokenCodec("dev-only-secret", time.Hour)

	token, err := tc.Sign(Claims{UserID: 42, Email: "asha@dealer.in", Role: "owner"})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(token, "."))

	claims, err := tc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "asha@dealer.in", claims.Email)
	assert.Equal(t, "owner", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func Test_TokenBitFlip(t *testing.T) {
	tc := NewTokenCodec("dev-only-secret", time.Hour)

	token, err := tc.Sign(Claims{UserID: 7, Email: "ravi@dealer.in", Role: "staff"})
	require.NoError(t, err)

	for i := range len(token) {
		b := []byte(token)
		b[i] ^= 0x01

		_, err := tc.Verify(string(b))
		assert.ErrorIs(t, err, ErrInvalidToken, "position %d", i)
	}
}

func Test_TokenWrongSecret(t *testing.T) {
	token, err := NewTokenCodec("one", time.Hour).Sign(Claims{UserID: 1})
	require.NoError(t, err)

	_, err = NewTokenCodec("two", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_TokenExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	token, err := newTokenCodec("s", time.Hour, fixedClock(issued)).Sign(Claims{UserID: 1})
	require.NoError(t, err)

	_, err = newTokenCodec("s", time.Hour, fixedClock(issued.Add(59*time.Minute))).Verify(token)
	assert.NoError(t, err)

	_, err = newTokenCodec("s", time.Hour, fixedClock(issued.Add(61*time.Minute))).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = newTokenCodec("s", time.Hour, fixedClock(issued.Add(-time.Hour))).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "issued in the future")
}

func Test_TokenMalformed(t *testing.T) {
	tc := NewTokenCodec("s", time.Hour)

	valid, err := tc.Sign(Claims{UserID: 1})
	require.NoError(t, err)
	base, _, _ := strings.Cut(valid, ".")

	enc := base64.RawURLEncoding
	noExpiry := enc.EncodeToString([]byte(`{"id":1}`))
	noExpirySig, err := tc.method.Sign(noExpiry, tc.secret)
	require.NoError(t, err)

	notJSON := enc.EncodeToString([]byte(`not json`))
	notJSONSig, err := tc.method.Sign(notJSON, tc.secret)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":         "",
		"one-part":      base,
		"empty-sig":     base + ".",
		"empty-base":    "." + valid[len(base)+1:],
		"three-parts":   valid + ".x",
		"short-sig":     base + ".AAAA",
		"no-expiry":     noExpiry + "." + enc.EncodeToString(noExpirySig),
		"not-json":      notJSON + "." + enc.EncodeToString(notJSONSig),
		"bad-sig-chars": base + ".***",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tc.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
