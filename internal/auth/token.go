package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSigningKey means the process was started without JWT_SECRET_KEY.
	ErrMissingSigningKey = errors.New("auth: signing key is not configured")
	// ErrUnauthenticated is matched by every token resolution failure.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error describes why a bearer token was rejected.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
	}
	return "auth: " + e.Reason
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnauthenticated, e.Err}
	}
	return []error{ErrUnauthenticated}
}

func authError(reason string, err error) error {
	return &Error{Reason: reason, Err: err}
}

// TokenManager issues and resolves HS256 access tokens. The signing key is
// fixed at construction.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager fails with ErrMissingSigningKey when secret is empty.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSigningKey
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the default lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for subjectID with the default lifetime.
func (m *TokenManager) Issue(subjectID uint64) (string, error) {
	return m.IssueWithExpiry(subjectID, m.ttl)
}

// IssueWithExpiry signs a token for subjectID that expires after ttl.
func (m *TokenManager) IssueWithExpiry(subjectID uint64, ttl time.Duration) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(subjectID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies the token and returns its subject id. Expired, malformed,
// wrongly signed and wrong-algorithm tokens all fail with an *Error.
func (m *TokenManager) Resolve(tokenString string) (uint64, error) {
	if tokenString == "" {
		return 0, authError("missing token", nil)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return 0, authError("token expired", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return 0, authError("malformed token", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return 0, authError("invalid signature", err)
	case err != nil:
		return 0, authError("invalid token", err)
	case !token.Valid:
		return 0, authError("invalid token", nil)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, authError("invalid subject", err)
	}
	return id, nil
}

// BearerHeader formats a token as an Authorization header value.
func BearerHeader(token string) string {
	return "Bearer " + token
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", authError("missing bearer token", nil)
	}
	return strings.TrimSpace(token), nil
}
