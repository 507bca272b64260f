package qr

import (
	"encoding/base64"
	"fmt"
	"time"

	"ms-cinema/internal/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

var (
	ErrSigningKeyMissing = errs.New(errs.KindInternal, "QR signing key is not configured")
	ErrInvalidToken      = errs.New(errs.KindAuth, "invalid or expired QR token")
)

// Claims is the payload of a QR token. It names the purchase only; the
// purchase itself is looked up at validation time.
type Claims struct {
	PurchaseID int64 `json:"purchaseId"`
	jwt.RegisteredClaims
}

type QRGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewQRGenerator(secret string, ttl time.Duration) *QRGenerator {
	return &QRGenerator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for iat, exp and verification.
func (q *QRGenerator) WithClock(now func() time.Time) *QRGenerator {
	q.now = now
	return q
}

// Issue signs a token naming purchaseID.
func (q *QRGenerator) Issue(purchaseID int64) (string, error) {
	if len(q.secret) == 0 {
		return "", ErrSigningKeyMissing
	}
	now := q.now()
	claims := Claims{
		PurchaseID: purchaseID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(q.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(q.secret)
	if err != nil {
		return "", fmt.Errorf("sign QR token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the purchase id.
func (q *QRGenerator) Parse(token string) (int64, error) {
	if len(q.secret) == 0 {
		return 0, ErrSigningKeyMissing
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return q.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(q.now), jwt.WithExpirationRequired())
	if err != nil {
		return 0, errs.Wrap(errs.KindAuth, ErrInvalidToken.Message, err)
	}
	if claims.PurchaseID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.PurchaseID, nil
}

// EncodePNGDataURL renders token as a QR code PNG embedded in a data URL.
func (q *QRGenerator) EncodePNGDataURL(token string) (string, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode QR image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
