package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/trip-planner-nosql/internal/domain"
	jwtinfra "github.com/trip-planner-nosql/internal/infrastructure/jwt"
	"github.com/trip-planner-nosql/internal/logger"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "token"
)

// TokenCookie is the cookie the users service sets at login.
const TokenCookie = "token"

type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, userID, bearer string) (*domain.User, error)
}

type AuthOptions struct {
	Revocations RevocationChecker
	Verifier    TokenVerifier
	Resolver    IdentityResolver
	// AllowCookie also accepts the token cookie when no Authorization header
	// is present.
	AllowCookie bool
}

// Authenticate checks, in order: bearer present, not revoked, valid signature
// and expiry, id claim present, identity resolvable. The resolved user and
// the raw token are stored in the request context. Every failure produces
// the same 401 body; the reason only goes to the log.
func Authenticate(opts AuthOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := Log(r.Context())
			deny := func(reason string, fields ...zap.Field) {
				log.Info("request unauthorized", append(fields, zap.String("reason", reason))...)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			}

			token, ok := BearerToken(r, opts.AllowCookie)
			if !ok {
				deny("missing bearer token")
				return
			}
			tokenField := zap.String("token", logger.TokenPrefix(token))

			revoked, err := opts.Revocations.IsRevoked(r.Context(), token)
			if err != nil {
				log.Error("revocation lookup failed", tokenField, zap.Error(err))
				deny("revocation lookup failed", tokenField)
				return
			}
			if revoked {
				deny("token revoked", tokenField)
				return
			}

			claims, err := opts.Verifier.Verify(token)
			if err != nil {
				deny("token verification failed", tokenField, zap.Error(err))
				return
			}
			if claims.UserID == "" {
				deny("token has no id claim", tokenField)
				return
			}

			u, err := opts.Resolver.Resolve(r.Context(), claims.UserID, token)
			if err != nil {
				deny("identity lookup failed", tokenField, zap.String("user_id", claims.UserID), zap.Error(err))
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, u)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <t>", falling
// back to the token cookie when allowCookie is set.
func BearerToken(r *http.Request, allowCookie bool) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		token = strings.TrimSpace(token)
		return token, ok && strings.EqualFold(scheme, "Bearer") && token != ""
	}
	if allowCookie {
		if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

// UserFromContext returns the identity attached by Authenticate.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok && u != nil
}

func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(TokenKey).(string)
	return t
}
