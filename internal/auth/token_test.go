package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-cinema/internal/errs"
	"ms-cinema/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tokens := NewSessionTokens("s3cret", time.Hour)

	raw, expiresAt, err := tokens.Issue(&models.User{ID: 7, Role: models.RoleEmployee})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tokens.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleEmployee, claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestSessionTokenRejectsOtherSecret(t *testing.T) {
	raw, _, err := NewSessionTokens("one", time.Hour).Issue(&models.User{ID: 1, Role: models.RoleClient})
	require.NoError(t, err)

	_, err = NewSessionTokens("two", time.Hour).Verify(context.Background(), raw)
	assert.True(t, errors.Is(err, ErrInvalidSession))
	assert.True(t, errs.IsKind(err, errs.KindAuth))
}

func TestSessionTokenExpires(t *testing.T) {
	tokens := NewSessionTokens("s3cret", time.Minute)
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	raw, _, err := tokens.Issue(&models.User{ID: 1, Role: models.RoleClient})
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Verify(context.Background(), raw)
	assert.True(t, errors.Is(err, ErrInvalidSession))
}

func TestSessionTokenRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{UserID: 1, Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSessionTokens("s3cret", time.Hour).Verify(context.Background(), raw)
	assert.Error(t, err)
}

func TestIssueWithoutSecret(t *testing.T) {
	_, _, err := NewSessionTokens("", time.Hour).Issue(&models.User{ID: 1, Role: models.RoleClient})
	assert.Error(t, err)
}

func TestExtractTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		err    error
	}{
		{"missing", "", "", ErrMissingToken},
		{"bearer", "Bearer abc", "abc", nil},
		{"lower case scheme", "bearer abc", "abc", nil},
		{"basic", "Basic abc", "", ErrMalformedToken},
		{"no token", "Bearer", "", ErrMalformedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := ExtractTokenFromRequest(r)
			assert.Equal(t, tt.want, got)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClaimsAccess(t *testing.T) {
	client := &Claims{UserID: 3, Role: models.RoleClient}
	assert.True(t, client.CanAccessUser(3))
	assert.False(t, client.CanAccessUser(4))

	employee := &Claims{UserID: 9, Role: models.RoleEmployee}
	assert.True(t, employee.CanAccessUser(4))
	assert.False(t, employee.HasRole(models.RoleAdmin))
}
