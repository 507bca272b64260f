package utils

import (
	"net/http"
	"strconv"

	"ms-cinema/internal/errs"

	"github.com/go-chi/chi/v5"
)

// IDParam reads a positive numeric chi URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("invalid %s %q", name, raw)
	}
	return id, nil
}
