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

// MarkReadController advances the caller's read marker for one conversation
// (one controller per endpoint).
type MarkReadController struct {
	UC *usecase.MarkReadUseCase
}

func NewMarkReadController(repo repository.MessagingRepository) *MarkReadController {
	return &MarkReadController{UC: usecase.NewMarkReadUseCase(repo)}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
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

		err = h.UC.Execute(ctx, usecase.MarkReadInput{
			ConversationID: conversationID,
			UserID:         principal.UserID,
			AsOf:           time.Now(),
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.Status(http.StatusOK)
	}
}
