// This file implements utilities for parsing and validating request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fortis/internal/core"
	"fortis/internal/period"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// SessionHeader scopes the alert badge count to one client session.
const SessionHeader = "X-Session-ID"

// requestError is a malformed request, answered with 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// DecodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return badRequest("request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// ParsePolicy reads the spend policy query parameter, defaulting to rolling.
func ParsePolicy(r *http.Request) period.Policy {
	p := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("policy")))
	if p == "" {
		return period.Rolling
	}
	return period.Policy(p)
}

// ParseAmountParam reads a required amount from the query string.
func ParseAmountParam(r *http.Request, name string) (decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, badRequest("missing %s parameter", name)
	}
	d, err := core.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.ErrZeroDate
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, badRequest("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

// SessionID returns the client session used for seen tracking.
func SessionID(r *http.Request) string {
	return sanitizeInput(r.Header.Get(SessionHeader))
}
