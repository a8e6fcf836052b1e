package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestHashPassword_SaltedAndVerifiable(t *testing.T) {
	h1, err := HashPassword("password123")
	require.NoError(t, err)
	h2, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", h1)
	assert.NotEqual(t, h1, h2, "hashes must be salted")
	assert.True(t, VerifyPassword("password123", h1))
	assert.True(t, VerifyPassword("password123", h2))
	assert.False(t, VerifyPassword("password124", h1))
	assert.False(t, VerifyPassword("", h1))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewTokenManager_RequiresKey(t *testing.T) {
	_, err := NewTokenManager("  ", time.Minute)
	assert.ErrorIs(t, err, ErrMissingSigningKey)
}

func TestIssueResolve_RoundTrip(t *testing.T) {
	m, err := NewTokenManager("test-secret-key-for-testing", time.Hour)
	require.NoError(t, err)

	token, err := m.Issue(42)
	require.NoError(t, err)

	id, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestResolve_ValidUntilExpiry(t *testing.T) {
	m, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)

	start := time.Now()
	m.now = func() time.Time { return start }
	token, err := m.IssueWithExpiry(7, 10*time.Minute)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(9 * time.Minute) }
	id, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	m.now = func() time.Time { return start.Add(11 * time.Minute) }
	_, err = m.Resolve(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	var authErr *Error
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "token expired", authErr.Reason)
}

func TestResolve_Rejects(t *testing.T) {
	m, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenManager("other-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue(1)
	require.NoError(t, err)

	hs384 := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	wrongAlg, err := hs384.SignedString([]byte("secret"))
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"})
	unbounded, err := noExp.SignedString([]byte("secret"))
	require.NoError(t, err)

	badSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	badSubject, err := badSub.SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":         "",
		"malformed":     "not.a.jwt",
		"bad signature": foreign,
		"wrong alg":     wrongAlg,
		"no expiry":     unbounded,
		"bad subject":   badSubject,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Resolve(token)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestParseBearer(t *testing.T) {
	tok, err := ParseBearer(BearerHeader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = ParseBearer("bearer   xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Basic abc", "Bearer  "} {
		_, err := ParseBearer(h)
		assert.ErrorIs(t, err, ErrUnauthenticated, h)
	}
}
