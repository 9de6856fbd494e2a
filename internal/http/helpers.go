package http

import (
	"errors"
	"net/http"
	"strings"

	"fortis/internal/alerts"
	"fortis/internal/core"
	flog "fortis/internal/log"
	"fortis/internal/period"
	"fortis/internal/store"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, store.ErrStore):
		return http.StatusServiceUnavailable
	case core.IsValidation(err),
		errors.Is(err, alerts.ErrNotDismissible),
		errors.Is(err, period.ErrUnknownPolicy):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error response.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	if status >= 500 {
		flog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "error", err, "status", status)
	}
	ErrorResponse(status, msg).Write(w)
}

// respond writes body on success. A store failure that still produced a
// result is answered with 503 and the result, which reports durable=false.
func respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	switch {
	case err == nil:
		NewJSONResponse().Body(body).Write(w)
	case body != nil && errors.Is(err, store.ErrStore):
		flog.FromContext(r.Context()).WarnContext(r.Context(), "Responding with non-durable result", "error", err, "path", r.URL.Path)
		NewJSONResponse().Status(http.StatusServiceUnavailable).Body(body).Write(w)
	default:
		fail(w, r, err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// userID reads the {user} path segment.
func userID(r *http.Request) (string, error) {
	id := sanitizeInput(r.PathValue("user"))
	if id == "" {
		return "", badRequest("missing user id")
	}
	return id, nil
}
