package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ms-cinema/internal/errs"
	"ms-cinema/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken   = errs.New(errs.KindAuth, "authorization header is missing")
	ErrMalformedToken = errs.New(errs.KindAuth, "authorization header format must be 'Bearer {token}'")
	ErrInvalidSession = errs.New(errs.KindAuth, "invalid or expired session token")
)

// Claims is what a verified bearer token says about the caller.
type Claims struct {
	UserID int64       `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// HasRole reports whether the caller holds one of roles.
func (c *Claims) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// CanAccessUser is true for staff and for the user themselves.
func (c *Claims) CanAccessUser(userID int64) bool {
	return c.HasRole(models.RoleAdmin, models.RoleEmployee) || c.UserID == userID
}

// SessionTokens signs and verifies HS256 session tokens.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for user and its expiry.
func (s *SessionTokens) Issue(user *models.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errs.New(errs.KindInternal, "session signing key is not configured")
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry of a session token.
func (s *SessionTokens) Verify(_ context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, ErrInvalidSession.Message, err)
	}
	if !claims.Role.IsKnown() {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrMalformedToken
	}

	return parts[1], nil
}

func isAuthError(err error) bool {
	var e *errs.Error
	return errors.As(err, &e) && e.Kind == errs.KindAuth
}
