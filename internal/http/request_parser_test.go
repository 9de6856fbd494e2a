package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/alerts"
	"fortis/internal/core"
	"fortis/internal/period"
	"fortis/internal/store"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{"valid", `{"name":"food"}`, "food", ""},
		{"empty", "", "", "request body is required"},
		{"unknown field", `{"nom":"food"}`, "", "invalid JSON body"},
		{"trailing object", `{"name":"a"}{"name":"b"}`, "", "single JSON object"},
		{"malformed", `{"name":`, "", "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got payload
			err := DecodeJSON(req, &got)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, http.StatusBadRequest, statusFor(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		query string
		want  period.Policy
	}{
		{"", period.Rolling},
		{"?policy=calendar", period.Calendar},
		{"?policy=%20ROLLING%20", period.Rolling},
		{"?policy=weekly", period.Policy("weekly")},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		assert.Equal(t, tt.want, ParsePolicy(req), tt.query)
	}
}

func TestParseAmountParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?amount=12.50", nil)
	got, err := ParseAmountParam(req, "amount")
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = ParseAmountParam(req, "amount")
	assert.Equal(t, http.StatusBadRequest, statusFor(err))

	req = httptest.NewRequest(http.MethodGet, "/?amount=-3", nil)
	_, err = ParseAmountParam(req, "amount")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-03-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	_, err = ParseDate("  ")
	assert.ErrorIs(t, err, core.ErrZeroDate)

	_, err = ParseDate("15/03/2024")
	assert.Equal(t, http.StatusBadRequest, statusFor(err))
}

func TestSessionID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "  tab-1\x00 ")
	assert.Equal(t, "tab-1", SessionID(req))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", badRequest("nope"), http.StatusBadRequest},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"duplicate id", fmt.Errorf("transaction t1: %w", store.ErrDuplicateID), http.StatusConflict},
		{"store failure", store.Fail("save budgets", errors.New("disk full")), http.StatusServiceUnavailable},
		{"validation", core.ErrDuplicateCategory, http.StatusUnprocessableEntity},
		{"not dismissible", alerts.ErrNotDismissible, http.StatusUnprocessableEntity},
		{"unknown policy", period.ErrUnknownPolicy, http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Food\tand drink", sanitizeInput("  Food\tand\x07 drink "))
	assert.Equal(t, "", sanitizeInput("\x01\x02"))
}
