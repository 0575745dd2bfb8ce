package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	dirport "github.com/EyobKifle/agrihub-messaging/internal/directory/port"
	queueport "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/queue/port"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/realtime"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/session"
	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/task"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/usecase"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// SendMessageController appends a message, resolving the conversation first
// when the caller addresses a recipient instead of an existing thread
// (one controller per endpoint).
type SendMessageController struct {
	ResolveUC *usecase.ResolveConversationUseCase
	SendUC    *usecase.SendMessageUseCase

	repo   repository.MessagingRepository
	queue  queueport.Client
	rt     *realtime.Router
	logger *zap.Logger
}

func NewSendMessageController(repo repository.MessagingRepository, users dirport.UserDirectory, queue queueport.Client, rt *realtime.Router, logger *zap.Logger) *SendMessageController {
	return &SendMessageController{
		ResolveUC: usecase.NewResolveConversationUseCase(repo, users),
		SendUC:    usecase.NewSendMessageUseCase(repo),
		repo:      repo,
		queue:     queue,
		rt:        rt,
		logger:    logger,
	}
}

// sendMessageRequest is the DTO for the HTTP request body. Exactly one of
// RecipientID and ConversationID must be set.
type sendMessageRequest struct {
	RecipientID    *int64 `json:"recipient_id"`
	ConversationID *int64 `json:"conversation_id"`
	Content        string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := session.CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if (req.RecipientID == nil) == (req.ConversationID == nil) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of recipient_id and conversation_id is required"})
			return
		}
		// Reject blank content before the resolver runs so a failed send never
		// leaves behind a freshly created conversation.
		if strings.TrimSpace(req.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": messaging.ErrEmptyContent.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var conversationID int64
		var recipientID int64
		if req.ConversationID != nil {
			conversationID = *req.ConversationID
		} else {
			conv, err := h.ResolveUC.Execute(ctx, usecase.ResolveConversationInput{
				UserA: principal.UserID,
				UserB: *req.RecipientID,
			})
			if err != nil {
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			conversationID = conv.ID
			recipientID = *req.RecipientID
		}

		msg, err := h.SendUC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       principal.UserID,
			Content:        req.Content,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		h.fanOut(ctx, *msg, recipientID)

		c.JSON(http.StatusCreated, gin.H{
			"message_id":      msg.ID,
			"conversation_id": msg.ConversationID,
			"created_at":      msg.CreatedAt,
		})
	}
}

// fanOut notifies connected participants and schedules badge recomputation.
// Best-effort: the message is already committed, so failures are logged and
// not surfaced to the caller.
func (h *SendMessageController) fanOut(ctx context.Context, msg messaging.Message, recipientID int64) {
	if h.rt != nil {
		event := gin.H{"type": "message", "message": toPayload(msg)}
		if payload, err := json.Marshal(event); err == nil {
			h.rt.Broadcast(msg.ConversationID, payload, msg.SenderID)
		}
	}

	if h.queue == nil {
		return
	}
	if recipientID == 0 {
		// Caller addressed an existing conversation; resolve the peer for the
		// badge task.
		conv, err := h.repo.GetConversation(ctx, msg.ConversationID)
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("resolve recipient for notify task failed",
					zap.Int64("conversation_id", msg.ConversationID), zap.Error(err))
			}
			return
		}
		recipientID, _ = conv.OtherParticipant(msg.SenderID)
	}
	_, err := task.EnqueueNotifyMessage(ctx, h.queue, task.NotifyMessagePayload{
		ConversationID: msg.ConversationID,
		MessageID:      msg.ID,
		SenderID:       msg.SenderID,
		RecipientID:    recipientID,
	})
	if err != nil && h.logger != nil {
		h.logger.Warn("enqueue notify task failed",
			zap.Int64("conversation_id", msg.ConversationID),
			zap.Int64("message_id", msg.ID),
			zap.Error(err),
		)
	}
}
