package messaging

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. Ordering within a
// conversation is by CreatedAt, ties broken by the monotonically increasing ID
// assigned at insert time.
type Message struct {
	ID             int64     `db:"id"`
	ConversationID int64     `db:"conversation_id"`
	SenderID       int64     `db:"sender_id"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}

// NewMessage validates and normalizes a message before it is persisted.
// Content is trimmed; a message that is blank after trimming is rejected.
// CreatedAt is assigned server-side; client timestamps are never trusted.
func NewMessage(conversationID, senderID int64, content string, now time.Time) (*Message, error) {
	if conversationID <= 0 || senderID <= 0 {
		return nil, ErrInvalidParticipant
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}

	if now.IsZero() {
		now = time.Now()
	}

	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        trimmed,
		CreatedAt:      now.UTC(),
	}, nil
}

// Preview returns the message content truncated for conversation list rendering.
func (m Message) Preview(max int) string {
	return TruncatePreview(m.Content, max)
}

// TruncatePreview caps content at max runes, appending an ellipsis when it was
// cut. Zero or negative max disables truncation.
func TruncatePreview(content string, max int) string {
	if max <= 0 || len(content) <= max {
		return content
	}
	r := []rune(content)
	if len(r) <= max {
		return content
	}
	return string(r[:max]) + "…"
}
