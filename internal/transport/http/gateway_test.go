package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-nosql/internal/config"
	"go.uber.org/zap"
)

type echoed struct {
	Service   string `json:"service"`
	Path      string `json:"path"`
	Forwarded string `json:"forwarded"`
	Auth      string `json:"auth"`
}

func echoUpstream(t *testing.T, name string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(echoed{
			Service:   name,
			Path:      r.URL.Path,
			Forwarded: r.Header.Get("X-Forwarded-For"),
			Auth:      r.Header.Get("Authorization"),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGateway(t *testing.T, users, trips, notifications string) http.Handler {
	t.Helper()
	gw, err := NewGateway(&config.Config{
		UserServiceUpstream:         users,
		TripServiceUpstream:         trips,
		NotificationServiceUpstream: notifications,
		AllowedOrigins:              []string{"*"},
	}, zap.NewNop())
	require.NoError(t, err)
	return gw
}

func TestGateway_RoutesByPrefix(t *testing.T) {
	gw := newTestGateway(t,
		echoUpstream(t, "users").URL,
		echoUpstream(t, "trips").URL,
		echoUpstream(t, "notifications").URL)

	cases := []struct {
		path, service, upstreamPath string
	}{
		{"/user/login", "users", "/user/login"},
		{"/user", "users", "/user"},
		{"/friend/show", "users", "/friend/show"},
		{"/trips", "trips", "/trips"},
		{"/trips/created", "trips", "/trips/created"},
		{"/notifications", "notifications", "/"},
		{"/notifications/read", "notifications", "/read"},
		{"/notifications/01HX/toggle", "notifications", "/01HX/toggle"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set("Authorization", "Bearer abc")
		req.RemoteAddr = "203.0.113.7:5555"
		rr := httptest.NewRecorder()
		gw.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, tc.path)
		var got echoed
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, tc.service, got.Service, tc.path)
		assert.Equal(t, tc.upstreamPath, got.Path, tc.path)
		assert.Equal(t, "203.0.113.7", got.Forwarded, tc.path)
		assert.Equal(t, "Bearer abc", got.Auth, tc.path)
	}
}

func TestGateway_HealthAndUnknownPath(t *testing.T) {
	up := echoUpstream(t, "any").URL
	gw := newTestGateway(t, up, up, up)

	rr := httptest.NewRecorder()
	gw.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health-check/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	gw.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGateway_UpstreamDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()
	up := echoUpstream(t, "any").URL
	gw := newTestGateway(t, up, downURL, up)

	rr := httptest.NewRecorder()
	gw.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/trips", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"bad gateway"}`, rr.Body.String())
}

func TestNewGateway_RejectsBadUpstream(t *testing.T) {
	_, err := NewGateway(&config.Config{
		UserServiceUpstream:         "not a url",
		TripServiceUpstream:         "http://trips:3001",
		NotificationServiceUpstream: "http://notifications:3004",
	}, zap.NewNop())
	assert.Error(t, err)
}
