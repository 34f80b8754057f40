package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/trip-planner-nosql/internal/application/friend"
	"github.com/trip-planner-nosql/internal/application/identity"
	"github.com/trip-planner-nosql/internal/application/session"
	"github.com/trip-planner-nosql/internal/application/user"
	"github.com/trip-planner-nosql/internal/bootstrap"
	"github.com/trip-planner-nosql/internal/config"
	"github.com/trip-planner-nosql/internal/infrastructure/dynamo"
	jwtinfra "github.com/trip-planner-nosql/internal/infrastructure/jwt"
	"github.com/trip-planner-nosql/internal/logger"
	transporthttp "github.com/trip-planner-nosql/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, reading from environment")
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat).With(zap.String("service", "users"))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("users service failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	infra, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	provider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return err
	}
	events, err := infra.NewBroker(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	userRepo := dynamo.NewUserRepo(infra.Dynamo, cfg.DynamoTables.Users)
	friendRepo := dynamo.NewFriendRequestRepo(infra.Dynamo, cfg.DynamoTables.FriendRequests)

	router := transporthttp.NewUserRouter(cfg, log, transporthttp.UserDeps{
		Users: user.NewService(user.ServiceDeps{UserRepo: userRepo}),
		Sessions: session.NewService(session.ServiceDeps{
			UserRepo:    userRepo,
			JWTProvider: provider,
			Revocations: infra.Revocations,
		}),
		Friends: friend.NewService(friend.ServiceDeps{
			FriendRequestRepo: friendRepo,
			UserRepo:          userRepo,
			Publisher:         events,
			Topic:             cfg.FriendRequestTopic,
		}),
		Auth:          infra.AuthOptions(provider, identity.NewLocalSource(userRepo), log),
		TokenLifetime: cfg.JWTExpiry,
	})

	return bootstrap.Serve(ctx, log, cfg.UserServicePort, router)
}
