package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/trip-planner-nosql/internal/application/notification"
	"github.com/trip-planner-nosql/internal/bootstrap"
	"github.com/trip-planner-nosql/internal/config"
	jwtinfra "github.com/trip-planner-nosql/internal/infrastructure/jwt"
	"github.com/trip-planner-nosql/internal/logger"
	transporthttp "github.com/trip-planner-nosql/internal/transport/http"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, reading from environment")
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat).With(zap.String("service", "notifications"))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("notification service failed", zap.Error(err))
	}
}

// run serves the notification API and consumes events until ctx ends. Either
// side failing stops the other.
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
	store, closeStore, err := infra.NewNotificationStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(context.Background())

	events, err := infra.NewBroker(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	router := transporthttp.NewNotificationRouter(cfg, log, transporthttp.NotificationDeps{
		Notifications: notification.NewService(store),
		Auth:          infra.AuthOptions(verifier, bootstrap.RemoteIdentity(cfg, log), log),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return notification.NewConsumer(store, log).Run(gctx, events, cfg.NotificationTopics)
	})
	g.Go(func() error {
		return bootstrap.Serve(gctx, log, cfg.NotificationServicePort, router)
	})
	return g.Wait()
}
