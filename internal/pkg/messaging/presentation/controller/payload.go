package controller

import (
	"errors"
	"net/http"
	"time"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/usecase"
)

// previewLength caps the conversation-list preview; full content is served by
// the messages endpoint.
const previewLength = 120

// messagePayload is the JSON shape of a message on the wire, shared by the
// HTTP and websocket surfaces.
type messagePayload struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func toPayload(m messaging.Message) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

// statusFor maps domain and use case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		return http.StatusInternalServerError
	case errors.Is(err, messaging.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, messaging.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, messaging.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
