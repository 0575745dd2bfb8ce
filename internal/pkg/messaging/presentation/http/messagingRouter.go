package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	dirAdapter "github.com/EyobKifle/agrihub-messaging/internal/directory/adapter"
	qport "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/queue/port"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/realtime"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/session"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/adapter"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/presentation/controller"
)

// RegisterRoutes registers messaging HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes; every route runs behind the session middleware.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, sessions *session.Store, client qport.Client, router *realtime.Router, logger *zap.Logger) {
	repo := adapter.NewPgMessagingRepository(pool)
	users := dirAdapter.NewPgUserDirectory(pool)

	listCtl := controller.NewListConversationsController(repo)
	getMsgCtl := controller.NewGetMessagesController(repo)
	sendCtl := controller.NewSendMessageController(repo, users, client, router, logger)
	markReadCtl := controller.NewMarkReadController(repo)
	unreadCtl := controller.NewUnreadCountController(repo)
	socketCtl := controller.NewMessagingSocketController(repo, router)

	g.Use(session.Middleware(sessions))

	// GET /api/v1/conversations -> the caller's conversation list
	g.GET("/conversations", listCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> messages oldest first
	g.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())

	// GET /api/v1/conversations/:conversationId/unread -> unread count
	g.GET("/conversations/:conversationId/unread", unreadCtl.Handle())

	// POST /api/v1/conversations/:conversationId/read -> advance read marker
	g.POST("/conversations/:conversationId/read", markReadCtl.Handle())

	// POST /api/v1/messages -> send to a recipient or an existing conversation
	g.POST("/messages", sendCtl.Handle())

	// GET /api/v1/messaging/ws -> websocket endpoint for realtime messaging
	g.GET("/messaging/ws", socketCtl.Handle())
}
