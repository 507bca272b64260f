package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"ms-cinema/internal/errs"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now().UTC(),
	}
}

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindValidation, errs.KindConflict:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindAuth:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ErrorDetail is the text placed in the error field. Rolled back units of
// work report the domain reason; unclassified errors are not leaked.
func ErrorDetail(err error) string {
	var e *errs.Error
	if errors.As(errs.Cause(err), &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, SuccessResponse(message, data))
}

// WriteError answers with the status derived from err. message is the
// operation-level summary, e.g. "Error creating purchase".
func WriteError(w http.ResponseWriter, message string, err error) {
	WriteErrorStatus(w, StatusFor(err), message, err)
}

func WriteErrorStatus(w http.ResponseWriter, status int, message string, err error) {
	WriteJSON(w, status, ErrorResponse(message, ErrorDetail(err)))
}

// DecodeJSON decodes a request body, rejecting unknown fields.
func DecodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.KindValidation, "invalid request body: "+err.Error(), err)
	}
	return nil
}
