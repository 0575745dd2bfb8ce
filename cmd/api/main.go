package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	cacheAdapter "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/cache/adapter"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/database"
	queueAdapter "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/queue/adapter"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/realtime"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/session"

	v1 "github.com/EyobKifle/agrihub-messaging/cmd/api/router/v1"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info(".env file not loaded", zap.Error(err))
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("failed to apply schema", zap.Error(err))
	}

	cache, err := cacheAdapter.NewRedisAdapter()
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = cache.Close() }()

	queueClient, err := queueAdapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Fatal("failed to construct queue client", zap.Error(err))
	}
	defer func() { _ = queueClient.Close() }()

	sessions := session.NewStore(cache)
	rtRouter := realtime.NewRouter()
	defer rtRouter.Close()

	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, pool, sessions, queueClient, rtRouter, logger)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop, stopCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopCancel()
	<-stop.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
	}
}

// requestLogger emits one structured line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
