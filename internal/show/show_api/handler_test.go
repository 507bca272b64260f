package show_api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"ms-cinema/internal/database/dbtest"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/show"
	"ms-cinema/internal/show/db"
	"ms-cinema/internal/show/show_api"
	"ms-cinema/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (http.Handler, *dbtest.Fixtures) {
	bunDB := dbtest.New(t)
	f := dbtest.Seed(t, bunDB)
	h := show_api.NewHandler(show.NewShowService(db.New(bunDB), logger.NewNop()), logger.NewNop())

	r := chi.NewRouter()
	r.Post("/api/shows", h.CreateShow)
	r.Put("/api/shows/{showId}", h.UpdateShow)
	r.Get("/api/shows/{showId}", h.GetShow)
	return r, f
}

func body(f *dbtest.Fixtures, start, finish string) string {
	return `{"startTime":"` + start + `","finishTime":"` + finish + `","theaterId":` + itoa(f.Theaters[0].ID) +
		`,"movieId":` + itoa(f.Movie.ID) + `,"formatId":` + itoa(f.Format.ID) + `,"languageId":` + itoa(f.Language.ID) + `}`
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestCreateShowOverlapReturns400(t *testing.T) {
	router, f := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/shows",
		strings.NewReader(body(f, "2025-03-01T18:00:00Z", "2025-03-01T20:00:00Z"))))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/shows",
		strings.NewReader(body(f, "2025-03-01T19:00:00Z", "2025-03-01T21:00:00Z"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Error creating show", resp.Message)
	assert.Contains(t, resp.Error, "overlaps")
}

func TestGetShowNotFound(t *testing.T) {
	router, _ := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shows/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shows/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
