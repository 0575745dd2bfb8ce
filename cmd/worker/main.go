package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	cacheAdapter "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/cache/adapter"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/database"
	queueAdapter "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/queue/adapter"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/task"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load(); err != nil {
		logger.Info(".env file not loaded", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	cache, err := cacheAdapter.NewRedisAdapter()
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = cache.Close() }()

	srv, err := queueAdapter.NewAsynqServer(logger)
	if err != nil {
		logger.Fatal("failed to construct queue server", zap.Error(err))
	}

	task.RegisterNotifyMessageTask(srv, pool, cache, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker running")
	if err := srv.Run(runCtx); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}
