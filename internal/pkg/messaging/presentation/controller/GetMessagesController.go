package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/session"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/usecase"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// GetMessagesController serves a conversation's messages oldest first
// (one controller per endpoint). Pure read: no read-state side effect.
type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(repo repository.MessagingRepository) *GetMessagesController {
	return &GetMessagesController{UC: usecase.NewGetMessagesUseCase(repo)}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := session.CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		conversationID, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
		if err != nil || conversationID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId must be a positive integer"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetMessagesInput{
			ConversationID: conversationID,
			UserID:         principal.UserID,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		out := make([]messagePayload, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, toPayload(m))
		}

		c.JSON(http.StatusOK, gin.H{
			"conversation_id": conversationID,
			"messages":        out,
			"count":           len(out),
		})
	}
}
