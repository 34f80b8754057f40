package identity

import (
	"context"

	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/metrics"
	"go.uber.org/zap"
)

// Cache is a best-effort profile cache. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Set(ctx context.Context, u *domain.User) error
}

// Source is the authority for user profiles.
type Source interface {
	FetchUser(ctx context.Context, userID, bearer string) (*domain.User, error)
}

// Resolver turns a verified subject id into a user profile, consulting the
// cache before the source and filling it after a successful fetch.
type Resolver struct {
	cache  Cache
	source Source
	log    *zap.Logger
}

// NewResolver builds a resolver. cache may be nil to always hit the source.
func NewResolver(cache Cache, source Source, log *zap.Logger) *Resolver {
	return &Resolver{cache: cache, source: source, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, userID, bearer string) (*domain.User, error) {
	if r.cache != nil {
		u, err := r.cache.Get(ctx, userID)
		if err != nil {
			r.log.Warn("identity cache read failed, treating as miss", zap.String("user_id", userID), zap.Error(err))
		} else if u != nil {
			metrics.IdentityLookups.WithLabelValues("hit").Inc()
			return u, nil
		}
	}

	u, err := r.source.FetchUser(ctx, userID, bearer)
	if err != nil {
		metrics.IdentityLookups.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.IdentityLookups.WithLabelValues("miss").Inc()

	if r.cache != nil {
		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("identity cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return u, nil
}

type userGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// LocalSource reads profiles straight from the user store, for the service
// that owns them.
type LocalSource struct {
	users userGetter
}

func NewLocalSource(users userGetter) *LocalSource {
	return &LocalSource{users: users}
}

func (s *LocalSource) FetchUser(ctx context.Context, userID, _ string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}
