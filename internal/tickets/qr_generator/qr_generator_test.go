package qr

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"ms-cinema/internal/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	gen := NewQRGenerator("s3cret", time.Hour)

	token, err := gen.Issue(42)
	require.NoError(t, err)

	id, err := gen.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestIssueSetsClaims(t *testing.T) {
	issued := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	gen := NewQRGenerator("s3cret", 2*time.Hour).WithClock(func() time.Time { return issued })

	token, err := gen.Issue(7)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.PurchaseID)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, issued, claims.IssuedAt.Time.UTC())
	assert.Equal(t, issued.Add(2*time.Hour), claims.ExpiresAt.Time.UTC())

	other, err := gen.Issue(7)
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "each token carries its own jti")
}

func TestParseRejectsTamperedSignature(t *testing.T) {
	gen := NewQRGenerator("s3cret", time.Hour)
	token, err := gen.Issue(42)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = gen.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsOtherKeyAndExpiry(t *testing.T) {
	issued := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	gen := NewQRGenerator("s3cret", time.Minute).WithClock(func() time.Time { return issued })
	token, err := gen.Issue(42)
	require.NoError(t, err)

	_, err = NewQRGenerator("other", time.Minute).WithClock(func() time.Time { return issued }).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	gen.WithClock(func() time.Time { return issued.Add(time.Hour) })
	_, err = gen.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, errs.IsKind(err, errs.KindAuth))
}

func TestMissingKey(t *testing.T) {
	_, err := NewQRGenerator("", time.Hour).Issue(1)
	assert.ErrorIs(t, err, ErrSigningKeyMissing)
}

func TestEncodePNGDataURL(t *testing.T) {
	url, err := NewQRGenerator("s3cret", time.Hour).EncodePNGDataURL("token")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
