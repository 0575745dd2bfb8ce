package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/session"
	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/usecase"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// ListConversationsController serves the authenticated user's conversation
// list (one controller per endpoint).
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(repo repository.MessagingRepository) *ListConversationsController {
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(repo)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := session.CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		summaries, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: principal.UserID})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(summaries))
		for _, s := range summaries {
			item := gin.H{
				"conversation_id": s.ConversationID,
				"other_participant": gin.H{
					"id":           s.Other.ID,
					"display_name": s.Other.DisplayName,
					"avatar_url":   s.Other.AvatarURL,
				},
				"unread_count": s.UnreadCount,
				"created_at":   s.CreatedAt,
			}
			if s.LastMessagePreview != nil {
				item["last_message_preview"] = messaging.TruncatePreview(*s.LastMessagePreview, previewLength)
				item["last_message_at"] = s.LastMessageAt
			}
			out = append(out, item)
		}

		c.JSON(http.StatusOK, gin.H{
			"conversations": out,
			"count":         len(out),
		})
	}
}
