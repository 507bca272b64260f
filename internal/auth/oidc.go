package auth

import (
	"context"
	"fmt"
	"strconv"

	"ms-cinema/internal/errs"
	"ms-cinema/internal/models"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier accepts ID tokens from an external identity provider. The
// provider is expected to carry the local user id in "uid" (or a numeric
// "sub") and the role in "role"; tokens without a known role act as clients.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(ctx context.Context, issuer string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider: %w", err)
	}
	// SkipClientIDCheck → tokens for any client of the realm are accepted
	return NewOIDCVerifierFrom(provider.Verifier(&oidc.Config{SkipClientIDCheck: true})), nil
}

func NewOIDCVerifierFrom(v *oidc.IDTokenVerifier) *OIDCVerifier {
	return &OIDCVerifier{verifier: v}
}

func (o *OIDCVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	idToken, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, ErrInvalidSession.Message, err)
	}

	var extra struct {
		UID  int64  `json:"uid"`
		Role string `json:"role"`
	}
	if err := idToken.Claims(&extra); err != nil {
		return nil, errs.Wrap(errs.KindAuth, "failed to parse claims", err)
	}

	claims := &Claims{UserID: extra.UID, Role: models.Role(extra.Role)}
	claims.Subject = idToken.Subject
	if claims.UserID == 0 {
		if id, err := strconv.ParseInt(idToken.Subject, 10, 64); err == nil {
			claims.UserID = id
		}
	}
	if !claims.Role.IsKnown() {
		claims.Role = models.RoleClient
	}
	return claims, nil
}
