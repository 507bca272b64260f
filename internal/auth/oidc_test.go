package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"ms-cinema/internal/models"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://id.example.test/realms/cinema"

func newTestOIDC(t *testing.T) (*OIDCVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}}
	v := oidc.NewVerifier(testIssuer, keySet, &oidc.Config{SkipClientIDCheck: true})
	return NewOIDCVerifierFrom(v), key
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestOIDCVerifierMapsClaims(t *testing.T) {
	verifier, key := newTestOIDC(t)
	raw := signRS256(t, key, jwt.MapClaims{
		"iss":  testIssuer,
		"sub":  "12",
		"aud":  "cinema-web",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
		"role": "employee",
	})

	claims, err := verifier.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, models.RoleEmployee, claims.Role)
}

func TestOIDCVerifierDefaultsToClient(t *testing.T) {
	verifier, key := newTestOIDC(t)
	raw := signRS256(t, key, jwt.MapClaims{
		"iss": testIssuer,
		"sub": "f3a1c2d4",
		"uid": 5,
		"aud": "cinema-web",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := verifier.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, models.RoleClient, claims.Role)
}

func TestOIDCVerifierRejectsWrongIssuer(t *testing.T) {
	verifier, key := newTestOIDC(t)
	raw := signRS256(t, key, jwt.MapClaims{
		"iss": "https://evil.example.test",
		"sub": "1",
		"aud": "cinema-web",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
