package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/transport/http/middleware"
)

// newReq builds a request with an optional JSON body.
func newReq(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, target, nil)
	}
	raw, ok := body.(string)
	if !ok {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		raw = string(b)
	}
	return httptest.NewRequest(method, target, bytes.NewBufferString(raw))
}

// asUser attaches an authenticated identity the way the auth middleware does.
func asUser(r *http.Request, userID, token string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserKey, &domain.User{UserID: userID})
	ctx = context.WithValue(ctx, middleware.TokenKey, token)
	return r.WithContext(ctx)
}

// withParam injects a chi URL param into the request context.
func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withChiID(r *http.Request, id string) *http.Request {
	return withParam(r, "id", id)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func wrap(msg string, sentinel error) error {
	return fmt.Errorf("%s: %w", msg, sentinel)
}
