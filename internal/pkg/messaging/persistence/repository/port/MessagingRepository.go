package repository

import (
	"context"
	"errors"
	"time"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
)

// ErrDuplicatePair signals that conversation creation lost the race against a
// concurrent insert for the same user pair. Callers re-run the lookup and adopt
// the winner's row.
var ErrDuplicatePair = errors.New("repository: conversation already exists for pair")

// MessagingRepository defines persistence operations for the messaging domain.
// Implementations must provide transactional atomicity for the two multi-row
// writes: conversation+participants creation and message insert+recency bump.
type MessagingRepository interface {
	// FindConversationByPair looks up the conversation for a normalized
	// (low, high) user pair. Returns (nil, nil) when no conversation exists.
	FindConversationByPair(ctx context.Context, userLow, userHigh int64) (*messaging.Conversation, error)

	// CreateConversation inserts the conversation and its two participant rows
	// in one atomic unit. Returns ErrDuplicatePair when the unique constraint
	// on the pair is violated.
	CreateConversation(ctx context.Context, userLow, userHigh int64, now time.Time) (*messaging.Conversation, error)

	// GetConversation fetches a conversation by id. Returns
	// messaging.ErrConversationNotFound when absent.
	GetConversation(ctx context.Context, conversationID int64) (*messaging.Conversation, error)

	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)

	// InsertMessage persists the message and bumps the conversation's
	// updated_at to the message's creation time, atomically. The returned
	// message carries the store-assigned id.
	InsertMessage(ctx context.Context, m messaging.Message) (*messaging.Message, error)

	// ListMessages returns all messages of a conversation in ascending
	// creation order, ties broken by id.
	ListMessages(ctx context.Context, conversationID int64) ([]messaging.Message, error)

	// AdvanceReadMarker moves last_read_at forward for the participant,
	// never backward. A call with an earlier timestamp is a no-op.
	AdvanceReadMarker(ctx context.Context, conversationID, userID int64, asOf time.Time) error

	// UnreadCount counts messages in the conversation sent by the peer and
	// created after the user's read marker.
	UnreadCount(ctx context.Context, conversationID, userID int64) (int, error)

	// TotalUnread sums unread counts across all of the user's conversations.
	TotalUnread(ctx context.Context, userID int64) (int, error)

	// ListConversationSummaries returns the user's conversation list ordered
	// by last message time descending; conversations without messages sort
	// after active threads, most recently created first.
	ListConversationSummaries(ctx context.Context, userID int64) ([]messaging.ConversationSummary, error)
}
