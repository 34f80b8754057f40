package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/trip-planner-nosql/internal/bootstrap"
	"github.com/trip-planner-nosql/internal/config"
	"github.com/trip-planner-nosql/internal/logger"
	transporthttp "github.com/trip-planner-nosql/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, reading from environment")
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat).With(zap.String("service", "gateway"))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := transporthttp.NewGateway(cfg, log)
	if err != nil {
		log.Fatal("invalid gateway configuration", zap.Error(err))
	}
	if err := bootstrap.Serve(ctx, log, cfg.GatewayPort, gw); err != nil {
		log.Fatal("gateway failed", zap.Error(err))
	}
}
