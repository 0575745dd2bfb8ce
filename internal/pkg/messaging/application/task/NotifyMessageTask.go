package task

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/cache/port"
	qport "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/queue/port"
	repoAdapter "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/adapter"
)

// NotifyMessageTaskType is the queue task name for post-commit fan-out work
// after a message lands in a conversation.
const NotifyMessageTaskType = "messaging:notify_message"

// BadgeKeyPrefix is the cache key prefix for per-user unread badges.
const BadgeKeyPrefix = "messaging:badge:"

// badgeTTL bounds staleness of the advisory badge; authoritative unread reads
// always hit the store.
const badgeTTL = 24 * time.Hour

// NotifyMessagePayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type NotifyMessagePayload struct {
	ConversationID int64 `json:"conversationId"`
	MessageID      int64 `json:"messageId"`
	SenderID       int64 `json:"senderId"`
	RecipientID    int64 `json:"recipientId"`
}

// EnqueueNotifyMessage schedules badge recomputation for the recipient.
// Best-effort: callers treat enqueue failures as non-fatal since the message
// is already committed.
func EnqueueNotifyMessage(ctx context.Context, client qport.Client, p NotifyMessagePayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return client.Enqueue(ctx, qport.Task{Type: NotifyMessageTaskType, Payload: b}, qport.EnqueueOption{
		Queue:    "messaging",
		MaxRetry: 10,
	})
}

// RegisterNotifyMessageTask binds the handler to the worker server. The
// handler recomputes the recipient's total unread count and refreshes the
// cached badge. Handlers are idempotent: recomputing twice converges.
func RegisterNotifyMessageTask(srv qport.Server, pool *pgxpool.Pool, cache cacheport.Cache, logger *zap.Logger) {
	srv.Register(NotifyMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyMessagePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying cannot help
			logger.Warn("notify task: malformed payload", zap.Error(err))
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		repo := repoAdapter.NewPgMessagingRepository(pool)
		total, err := repo.TotalUnread(ctx, p.RecipientID)
		if err != nil {
			return err
		}

		key := BadgeKeyPrefix + strconv.FormatInt(p.RecipientID, 10)
		if err := cache.Set(ctx, key, strconv.Itoa(total), badgeTTL); err != nil {
			return err
		}

		logger.Debug("notify task: badge refreshed",
			zap.Int64("recipient_id", p.RecipientID),
			zap.Int64("conversation_id", p.ConversationID),
			zap.Int("total_unread", total),
		)
		return nil
	})
}
