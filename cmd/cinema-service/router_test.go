package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"ms-cinema/internal/auth"
	"ms-cinema/internal/database/dbtest"
	"ms-cinema/internal/event"
	eventdb "ms-cinema/internal/event/db"
	"ms-cinema/internal/event/event_api"
	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/purchase"
	purchasedb "ms-cinema/internal/purchase/db"
	"ms-cinema/internal/purchase/purchase_api"
	"ms-cinema/internal/show"
	showdb "ms-cinema/internal/show/db"
	"ms-cinema/internal/show/show_api"
	"ms-cinema/internal/tickets"
	ticketdb "ms-cinema/internal/tickets/db"
	qr "ms-cinema/internal/tickets/qr_generator"
	"ms-cinema/internal/tickets/ticket_api"
	"ms-cinema/internal/user"
	userdb "ms-cinema/internal/user/db"
	"ms-cinema/internal/user/user_api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	handler http.Handler
	tokens  *auth.SessionTokens
	f       *dbtest.Fixtures
}

func newTestServer(t *testing.T, ping func(context.Context) error) *testServer {
	bunDB := dbtest.New(t)
	f := dbtest.Seed(t, bunDB)
	log := logger.NewNop()
	tokens := auth.NewSessionTokens("s3cret", time.Hour)

	purchaseStore := purchasedb.New(bunDB)
	purchaseService := purchase.NewPurchaseService(purchaseStore, nil, kafka.NopPublisher{}, log)
	sweeper := purchase.NewSweeper(purchaseStore, kafka.NopPublisher{}, log)
	ticketService := tickets.NewTicketService(qr.NewQRGenerator("s3cret", time.Hour), purchaseService, sweeper, ticketdb.New(bunDB), log)

	handler := newRouter(routerDeps{
		Logger:         log,
		Verifiers:      []auth.TokenVerifier{tokens},
		AllowedOrigins: []string{"*"},
		Ping:           ping,
		Users:          user_api.NewHandler(user.NewUserService(userdb.New(bunDB), tokens, bcrypt.MinCost, log), log),
		Purchases:      purchase_api.NewHandler(purchaseService, sweeper, log),
		Tickets:        ticket_api.NewHandler(ticketService, log),
		Shows:          show_api.NewHandler(show.NewShowService(showdb.New(bunDB), log), log),
		Events:         event_api.NewHandler(event.NewEventService(eventdb.New(bunDB), log), log),
	})
	return &testServer{handler: handler, tokens: tokens, f: f}
}

func (s *testServer) do(t *testing.T, role models.Role, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if role != "" {
		token, _, err := s.tokens.Issue(&models.User{ID: s.f.User.ID, Role: role})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, func(context.Context) error { return nil })
	assert.Equal(t, http.StatusOK, s.do(t, "", http.MethodGet, "/health", "").Code)

	down := newTestServer(t, func(context.Context) error { return errors.New("down") })
	assert.Equal(t, http.StatusServiceUnavailable, down.do(t, "", http.MethodGet, "/health", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, "", http.MethodGet, "/health", "")

	rec := s.do(t, "", http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cinema_http_request_duration_seconds")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, "", http.MethodGet, "/api/purchases/1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, "", http.MethodPost, "/api/qr/validate", `{"token":"x"}`).Code)
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t, nil)
	show := `{"startTime":"2030-03-01T18:00:00Z","theaterId":1,"movieId":1,"formatId":1,"languageId":1}`

	assert.Equal(t, http.StatusForbidden, s.do(t, models.RoleClient, http.MethodPost, "/api/shows", show).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, models.RoleEmployee, http.MethodPost, "/api/shows", show).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, models.RoleClient, http.MethodPost, "/api/qr/validate", `{"token":"x"}`).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, models.RoleEmployee, http.MethodPost, "/api/purchases/sweep", "").Code)

	rec := s.do(t, models.RoleAdmin, http.MethodPost, "/api/shows", show)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, models.RoleEmployee, http.MethodPost, "/api/qr/validate", `{"token":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterLoginAndBuy(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, "", http.MethodPost, "/api/auth/register", `{"email":"ada@cinema.test","fullName":"Ada","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, "", http.MethodPost, "/api/auth/login", `{"email":"ada@cinema.test","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	body := `{"user":` + jsonInt(login.Data.User.ID) + `,"description":"Snacks","total":5.5,"snacks":[{"id":` + jsonInt(s.f.Snack.ID) + `,"cant":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/purchases", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+login.Data.Token)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func jsonInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
