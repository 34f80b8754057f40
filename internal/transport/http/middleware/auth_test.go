package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-nosql/internal/application/identity"
	"github.com/trip-planner-nosql/internal/domain"
	identityinfra "github.com/trip-planner-nosql/internal/infrastructure/identity"
	jwtinfra "github.com/trip-planner-nosql/internal/infrastructure/jwt"
	redisinfra "github.com/trip-planner-nosql/internal/infrastructure/redis"
	"go.uber.org/zap"
)

type fixture struct {
	provider    *jwtinfra.Provider
	key         *rsa.PrivateKey
	revocations *redisinfra.RevocationList
	upstream    *httptest.Server
	calls       *atomic.Int32
	handler     http.Handler
}

// newFixture wires the middleware against a miniredis-backed revocation list
// and identity cache, and an httptest identity upstream that knows "u1".
func newFixture(t *testing.T, allowCookie bool) *fixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	provider := jwtinfra.NewProviderFromKeys(key, &key.PublicKey, time.Hour)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := &atomic.Int32{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/user/u1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"User not found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(domain.User{UserID: "u1", Name: "Ada", Email: "ada@example.com"})
	}))
	t.Cleanup(upstream.Close)

	revocations := redisinfra.NewRevocationList(client)
	resolver := identity.NewResolver(
		redisinfra.NewIdentityCache(client, time.Minute),
		identityinfra.NewClient(upstream.URL, time.Second, zap.NewNop()),
		zap.NewNop(),
	)
	h := Authenticate(AuthOptions{
		Revocations: revocations,
		Verifier:    provider,
		Resolver:    resolver,
		AllowCookie: allowCookie,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": u.UserID, "token": TokenFromContext(r.Context())})
	}))

	return &fixture{provider: provider, key: key, revocations: revocations, upstream: upstream, calls: calls, handler: h}
}

func (f *fixture) do(t *testing.T, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func assertUnauthorized(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"unauthorized"}`, rr.Body.String())
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	f := newFixture(t, false)
	assertUnauthorized(t, f.do(t, ""))
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	f := newFixture(t, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assertUnauthorized(t, rr)
}

func TestBearerToken_SchemeIsCaseInsensitive(t *testing.T) {
	for _, h := range []string{"Bearer abc", "bearer abc", "BEARER  abc "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", h)
		token, ok := BearerToken(req, false)
		assert.True(t, ok, h)
		assert.Equal(t, "abc", token, h)
	}
	for _, h := range []string{"Bearer", "Bearer   ", "Basic abc", "Bearerabc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", h)
		_, ok := BearerToken(req, false)
		assert.False(t, ok, h)
	}
}

func TestAuthenticate_LowercaseScheme(t *testing.T) {
	f := newFixture(t, false)
	signed, err := f.provider.Sign("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+signed)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthenticate_BadToken(t *testing.T) {
	f := newFixture(t, false)
	assertUnauthorized(t, f.do(t, "not-a-real-token"))
	assert.Zero(t, f.calls.Load())
}

func TestAuthenticate_ForeignKey(t *testing.T) {
	f := newFixture(t, false)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signed, err := jwtinfra.NewProviderFromKeys(other, &other.PublicKey, time.Hour).Sign("u1")
	require.NoError(t, err)

	assertUnauthorized(t, f.do(t, signed))
	assert.Zero(t, f.calls.Load())
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	f := newFixture(t, false)
	claims := &jwtinfra.Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(f.key)
	require.NoError(t, err)

	assertUnauthorized(t, f.do(t, signed))
}

func TestAuthenticate_MissingIDClaim(t *testing.T) {
	f := newFixture(t, false)
	signed, err := f.provider.Sign("")
	require.NoError(t, err)
	assertUnauthorized(t, f.do(t, signed))
}

func TestAuthenticate_RevokedTokenRejectedBeforeVerification(t *testing.T) {
	f := newFixture(t, false)
	signed, err := f.provider.Sign("u1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, f.do(t, signed).Code)

	require.NoError(t, f.revocations.Revoke(context.Background(), signed, time.Now().Add(time.Hour)))

	assertUnauthorized(t, f.do(t, signed))
}

func TestAuthenticate_CachesIdentity(t *testing.T) {
	f := newFixture(t, false)
	signed, err := f.provider.Sign("u1")
	require.NoError(t, err)

	first := f.do(t, signed)
	require.Equal(t, http.StatusOK, first.Code)
	second := f.do(t, signed)
	require.Equal(t, http.StatusOK, second.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(second.Body).Decode(&body))
	assert.Equal(t, "u1", body["id"])
	assert.Equal(t, signed, body["token"])
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestAuthenticate_UnknownUpstreamUser(t *testing.T) {
	f := newFixture(t, false)
	signed, err := f.provider.Sign("ghost")
	require.NoError(t, err)

	assertUnauthorized(t, f.do(t, signed))
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestAuthenticate_UpstreamDown(t *testing.T) {
	f := newFixture(t, false)
	f.upstream.Close()
	signed, err := f.provider.Sign("u1")
	require.NoError(t, err)

	assertUnauthorized(t, f.do(t, signed))
}

func TestAuthenticate_Cookie(t *testing.T) {
	signedFor := func(f *fixture) string {
		s, err := f.provider.Sign("u1")
		require.NoError(t, err)
		return s
	}
	serve := func(f *fixture, token string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, req)
		return rr.Code
	}

	withCookie := newFixture(t, true)
	assert.Equal(t, http.StatusOK, serve(withCookie, signedFor(withCookie)))

	headerOnly := newFixture(t, false)
	assert.Equal(t, http.StatusUnauthorized, serve(headerOnly, signedFor(headerOnly)))
}

type failingRevocations struct{}

func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func TestAuthenticate_RevocationStoreErrorDenies(t *testing.T) {
	f := newFixture(t, false)
	signed, err := f.provider.Sign("u1")
	require.NoError(t, err)

	h := Authenticate(AuthOptions{
		Revocations: failingRevocations{},
		Verifier:    f.provider,
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assertUnauthorized(t, rr)
}
