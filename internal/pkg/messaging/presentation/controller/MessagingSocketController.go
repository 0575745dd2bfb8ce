package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/realtime"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/session"
	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/usecase"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// MessagingSocketController handles the websocket endpoint for realtime
// messaging traffic: joining conversation rooms, sending messages and read
// receipts.
type MessagingSocketController struct {
	router          *realtime.Router
	sendMessageUC   *usecase.SendMessageUseCase
	joinRoomUC      *usecase.JoinConversationUseCase
	markReadUC      *usecase.MarkReadUseCase
	inflightTimeout time.Duration
}

func NewMessagingSocketController(repo repository.MessagingRepository, router *realtime.Router) *MessagingSocketController {
	return &MessagingSocketController{
		router:          router,
		sendMessageUC:   usecase.NewSendMessageUseCase(repo),
		joinRoomUC:      usecase.NewJoinConversationUseCase(repo),
		markReadUC:      usecase.NewMarkReadUseCase(repo),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin policy is enforced by the edge proxy in deployment.
		return true
	},
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id,omitempty"`
}

type outboundMessage struct {
	Type           string         `json:"type"`
	ConversationID int64          `json:"conversation_id"`
	Message        messagePayload `json:"message"`
}

type readReceipt struct {
	Type           string    `json:"type"`
	ConversationID int64     `json:"conversation_id"`
	UserID         int64     `json:"user_id"`
	ReadAt         time.Time `json:"read_at"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until the
// client disconnects. The session middleware runs before the upgrade, so the
// principal is already authenticated.
func (ctl *MessagingSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := session.CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(principal.UserID, ws)
		ctl.router.Attach(conn)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(64 << 10)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(c, conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			case "message":
				ctl.handleMessage(c, conn, frame)
			case "read":
				ctl.handleRead(c, conn, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *MessagingSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID <= 0 {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	ctl.router.Join(frame.ConversationID, conn)

	if payload, err := json.Marshal(ackFrame{Type: "joined", ConversationID: frame.ConversationID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *MessagingSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID <= 0 {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}
	ctl.router.Leave(frame.ConversationID, conn)

	if payload, err := json.Marshal(ackFrame{Type: "left", ConversationID: frame.ConversationID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *MessagingSocketController) handleMessage(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID <= 0 {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	result, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: frame.ConversationID,
		SenderID:       conn.UserID,
		Content:        frame.Content,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	out := outboundMessage{
		Type:           "message",
		ConversationID: frame.ConversationID,
		Message:        toPayload(*result),
	}
	payload, err := json.Marshal(out)
	if err != nil {
		ctl.replyError(conn, "internal_error", "failed to encode message")
		return
	}

	ctl.router.Broadcast(frame.ConversationID, payload, conn.UserID)

	// Echo to the sender so their client converges on the persisted message.
	if !ctl.router.NotifyUser(conn.UserID, payload) {
		_ = conn.Send(payload)
	}
}

func (ctl *MessagingSocketController) handleRead(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID <= 0 {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	now := time.Now().UTC()
	err := ctl.markReadUC.Execute(ctx, usecase.MarkReadInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
		AsOf:           now,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	receipt := readReceipt{
		Type:           "read",
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
		ReadAt:         now,
	}
	if payload, err := json.Marshal(receipt); err == nil {
		ctl.router.Broadcast(frame.ConversationID, payload, conn.UserID)
		_ = conn.Send(payload)
	}
}

func (ctl *MessagingSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, messaging.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "user is not a participant in this conversation")
	case errors.Is(err, messaging.ErrEmptyContent):
		ctl.replyError(conn, "empty_content", "message content is empty")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *MessagingSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Type: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
