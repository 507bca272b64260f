package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(tokens *SessionTokens) http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware(logger.NewNop(), tokens))
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFrom(r.Context())
		utils.WriteSuccess(w, http.StatusOK, "ok", claims.UserID)
	})
	r.With(RequireRole(models.RoleAdmin)).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func TestMiddlewareRequiresBearer(t *testing.T) {
	router := protectedRouter(NewSessionTokens("s3cret", time.Hour))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Unauthorized", resp.Message)
	assert.Equal(t, ErrMissingToken.Message, resp.Error)
}

func TestMiddlewareRejectsBadToken(t *testing.T) {
	router := protectedRouter(NewSessionTokens("s3cret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewarePutsClaimsInContext(t *testing.T) {
	tokens := NewSessionTokens("s3cret", time.Hour)
	raw, _, err := tokens.Issue(&models.User{ID: 21, Role: models.RoleClient})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	protectedRouter(tokens).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":21`)
}

func TestRequireRole(t *testing.T) {
	tokens := NewSessionTokens("s3cret", time.Hour)
	router := protectedRouter(tokens)

	for role, want := range map[models.Role]int{
		models.RoleClient:   http.StatusForbidden,
		models.RoleEmployee: http.StatusForbidden,
		models.RoleAdmin:    http.StatusNoContent,
	} {
		raw, _, err := tokens.Issue(&models.User{ID: 1, Role: role})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, string(role))
	}
}
