package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trip-planner-nosql/internal/domain"
)

func TestHTTPError_MapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("Invalid user ID: %w", domain.ErrBadRequest), http.StatusBadRequest, "Invalid user ID"},
		{fmt.Errorf("Only the trip creator can update it: %w", domain.ErrForbidden), http.StatusForbidden, "Only the trip creator can update it"},
		{fmt.Errorf("Notification not found: %w", domain.ErrNotFound), http.StatusNotFound, "Notification not found"},
		{fmt.Errorf("User already exists: %w", domain.ErrConflict), http.StatusConflict, "User already exists"},
		{fmt.Errorf("Trip saved but event publish failed: %w: %w", domain.ErrUpstream, errors.New("dial tcp")), http.StatusInternalServerError, "Trip saved but event publish failed"},
		{errors.New("ProvisionedThroughputExceededException: slow down"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		httpError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		env := decodeEnvelope(t, rr)
		assert.False(t, env.Success)
		assert.Equal(t, tc.msg, env.Message)
	}
}

func TestPing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/health-check/ping", nil)
	rr := httptest.NewRecorder()
	NewHealthHandler().Ping(rr, withParam(r, "action", "ping"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", decodeEnvelope(t, rr).Message)

	rr = httptest.NewRecorder()
	NewHealthHandler().Ping(rr, withParam(r, "action", "pong"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
