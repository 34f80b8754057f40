// Package bootstrap opens the shared infrastructure each service process
// needs and selects drivers from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	goredis "github.com/redis/go-redis/v9"
	"github.com/trip-planner-nosql/internal/application/identity"
	"github.com/trip-planner-nosql/internal/application/notification"
	"github.com/trip-planner-nosql/internal/broker"
	"github.com/trip-planner-nosql/internal/config"
	"github.com/trip-planner-nosql/internal/infrastructure/dynamo"
	identityinfra "github.com/trip-planner-nosql/internal/infrastructure/identity"
	kafkainfra "github.com/trip-planner-nosql/internal/infrastructure/kafka"
	"github.com/trip-planner-nosql/internal/infrastructure/mongodb"
	redisinfra "github.com/trip-planner-nosql/internal/infrastructure/redis"
	appmiddleware "github.com/trip-planner-nosql/internal/transport/http/middleware"
	"go.uber.org/zap"
)

const streamBlock = 2 * time.Second

// RevocationStore is the token revocation list shared by every service.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Infra holds the connections shared by a service process.
type Infra struct {
	Dynamo        *dynamodb.Client
	Redis         *goredis.Client
	Revocations   RevocationStore
	IdentityCache *redisinfra.IdentityCache
}

// Open connects to DynamoDB and Redis, creates missing tables and selects the
// revocation store.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Infra, error) {
	dyn, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	dynamo.Bootstrap(ctx, dyn, cfg.DynamoTables, log)

	rdb, err := redisinfra.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	infra := &Infra{
		Dynamo:        dyn,
		Redis:         rdb,
		IdentityCache: redisinfra.NewIdentityCache(rdb, cfg.IdentityCacheTTL),
	}
	switch cfg.RevocationStore {
	case "redis":
		infra.Revocations = redisinfra.NewRevocationList(rdb)
	case "dynamo", "":
		infra.Revocations = dynamo.NewRevokedTokenRepo(dyn, cfg.DynamoTables.RevokedTokens)
	default:
		_ = rdb.Close()
		return nil, fmt.Errorf("unknown REVOCATION_STORE %q", cfg.RevocationStore)
	}
	log.Info("infrastructure ready",
		zap.String("revocation_store", cfg.RevocationStore),
		zap.String("redis", cfg.RedisAddr))
	return infra, nil
}

func (i *Infra) Close() {
	_ = i.Redis.Close()
}

// AuthOptions wires the gateway middleware with the revocation list, the
// given verifier and a cached resolver over source.
func (i *Infra) AuthOptions(verifier appmiddleware.TokenVerifier, source identity.Source, log *zap.Logger) appmiddleware.AuthOptions {
	return appmiddleware.AuthOptions{
		Revocations: i.Revocations,
		Verifier:    verifier,
		Resolver:    i.Resolver(source, log),
	}
}

func (i *Infra) Resolver(source identity.Source, log *zap.Logger) *identity.Resolver {
	return identity.NewResolver(i.IdentityCache, source, log)
}

// RemoteIdentity is the HTTP source used by services that do not own users.
func RemoteIdentity(cfg *config.Config, log *zap.Logger) *identityinfra.Client {
	return identityinfra.NewClient(cfg.IdentityServiceURL, cfg.IdentityHTTPTimeout, log)
}

// NewBroker selects the driver named by BROKER_DRIVER.
func (i *Infra) NewBroker(cfg *config.Config, log *zap.Logger) (broker.Broker, error) {
	switch cfg.BrokerDriver {
	case "kafka":
		return kafkainfra.NewBroker(cfg.KafkaBrokers, cfg.KafkaClientID, cfg.ConsumerGroup, log), nil
	case "redis":
		return redisinfra.NewStreamBroker(i.Redis, cfg.ConsumerGroup, consumerName(cfg), streamBlock, log), nil
	case "memory":
		log.Warn("using in-process broker; events do not leave this process")
		return broker.NewMemory(log), nil
	}
	return nil, fmt.Errorf("unknown BROKER_DRIVER %q", cfg.BrokerDriver)
}

// NewNotificationStore selects the store named by NOTIFICATION_STORE. The
// returned close function releases any connection it opened.
func (i *Infra) NewNotificationStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (notification.Store, func(context.Context), error) {
	switch cfg.NotificationStore {
	case "dynamo", "":
		return dynamo.NewNotificationRepo(i.Dynamo, cfg.DynamoTables.Notifications), func(context.Context) {}, nil
	case "mongo":
		client, err := mongodb.NewClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		store := mongodb.NewNotificationStore(client.Database(cfg.MongoDatabase).Collection(mongodb.NotificationsCollection))
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Warn("could not create notification indexes", zap.Error(err))
		}
		return store, func(ctx context.Context) { _ = client.Disconnect(ctx) }, nil
	}
	return nil, nil, fmt.Errorf("unknown NOTIFICATION_STORE %q", cfg.NotificationStore)
}

func consumerName(cfg *config.Config) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return cfg.KafkaClientID + "-" + host
}
