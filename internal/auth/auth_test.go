package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, h.Compare(hash, "s3cret"))
	assert.False(t, h.Compare(hash, "other"))
	assert.False(t, h.Compare("not-a-hash", "s3cret"))
}

func TestTokensRoundTrip(t *testing.T) {
	tk := NewTokens("k", time.Hour, "taller")
	signed, exp, err := tk.Issue(42, "ana@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	id, err := tk.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokensRejects(t *testing.T) {
	tk := NewTokens("k", time.Hour, "taller")
	signed, _, err := tk.Issue(1, "a@b.c")
	require.NoError(t, err)

	_, err = NewTokens("other", time.Hour, "taller").Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokens("k", time.Hour, "someone-else").Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens("k", time.Hour, "taller")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(1, "a@b.c")
	require.NoError(t, err)
	_, err = tk.Verify(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", Issuer: "taller"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tk.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tk.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
