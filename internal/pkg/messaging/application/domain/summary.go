package messaging

import "time"

// UserRef is the slice of user identity needed to render the other side of a
// conversation. Sourced from the user directory; read-only here.
type UserRef struct {
	ID          int64   `db:"id"`
	DisplayName string  `db:"display_name"`
	AvatarURL   *string `db:"avatar_url"`
}

// ConversationSummary is one row of a user's conversation list: the peer's
// identity, the latest message and the unread count. LastMessagePreview and
// LastMessageAt are nil for conversations with no messages yet.
type ConversationSummary struct {
	ConversationID     int64
	Other              UserRef
	LastMessagePreview *string
	LastMessageAt      *time.Time
	UnreadCount        int
	CreatedAt          time.Time
}
