package auth

import (
	"context"
	"fmt"
	"net/http"

	"ms-cinema/internal/errs"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/utils"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier turns a raw bearer token into claims.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// Middleware rejects requests without a bearer token accepted by one of
// verifiers, tried in order.
func Middleware(log *logger.Logger, verifiers ...TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, "Unauthorized", err)
				return
			}

			var lastErr error = ErrInvalidSession
			for _, v := range verifiers {
				claims, err := v.Verify(r.Context(), raw)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}
				lastErr = err
			}

			log.LogSecurity("TOKEN_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, lastErr))
			if !isAuthError(lastErr) {
				lastErr = ErrInvalidSession
			}
			utils.WriteError(w, "Unauthorized", lastErr)
		})
	}
}

// RequireRole lets through callers holding one of roles. It must run after
// Middleware.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				utils.WriteError(w, "Unauthorized", ErrMissingToken)
				return
			}
			if !claims.HasRole(roles...) {
				utils.WriteError(w, "Forbidden", errs.Forbidden("role %s may not access this resource", claims.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Helper to extract the caller in handlers
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
