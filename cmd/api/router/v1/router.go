package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	qport "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/queue/port"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/realtime"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/session"
	httpHandler "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, sessions *session.Store, client qport.Client, router *realtime.Router, logger *zap.Logger) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, sessions, client, router, logger)
}
