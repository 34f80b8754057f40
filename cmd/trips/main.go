package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/trip-planner-nosql/internal/application/trip"
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
	log := logger.New(cfg.LogLevel, cfg.LogFormat).With(zap.String("service", "trips"))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("trips service failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	infra, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	verifier, err := jwtinfra.NewVerifier(cfg)
	if err != nil {
		return err
	}
	events, err := infra.NewBroker(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	users := bootstrap.RemoteIdentity(cfg, log)

	router := transporthttp.NewTripRouter(cfg, log, transporthttp.TripDeps{
		Trips: trip.NewService(trip.ServiceDeps{
			TripRepo:  dynamo.NewTripRepo(infra.Dynamo, cfg.DynamoTables.Trips),
			Identity:  infra.Resolver(users, log),
			Publisher: events,
			Topic:     cfg.TripPlannerTopic,
		}),
		Auth: infra.AuthOptions(verifier, users, log),
	})

	return bootstrap.Serve(ctx, log, cfg.TripServicePort, router)
}
