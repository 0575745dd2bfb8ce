package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

const uniqueViolation = "23505"

// PgMessagingRepository implements the messaging repository port on PostgreSQL
// via a pgx connection pool.
type PgMessagingRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessagingRepository(pool *pgxpool.Pool) *PgMessagingRepository {
	return &PgMessagingRepository{pool: pool}
}

var _ repository.MessagingRepository = (*PgMessagingRepository)(nil)

func (r *PgMessagingRepository) FindConversationByPair(ctx context.Context, userLow, userHigh int64) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	var c messaging.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_low, user_high, created_at, updated_at
		FROM conversations
		WHERE user_low = $1 AND user_high = $2
	`, userLow, userHigh).Scan(&c.ID, &c.UserLow, &c.UserHigh, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgMessagingRepository) CreateConversation(ctx context.Context, userLow, userHigh int64, now time.Time) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	c := messaging.Conversation{UserLow: userLow, UserHigh: userHigh}
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (user_low, user_high, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id, created_at, updated_at
	`, userLow, userHigh, now.UTC()).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicatePair
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO conversation_participants (conversation_id, user_id)
		VALUES ($1, $2), ($1, $3)
	`, c.ID, userLow, userHigh); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgMessagingRepository) GetConversation(ctx context.Context, conversationID int64) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	var c messaging.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_low, user_high, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`, conversationID).Scan(&c.ID, &c.UserLow, &c.UserHigh, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, messaging.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgMessagingRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgMessagingRepository: nil pool")
	}
	var one int
	err := r.pool.QueryRow(ctx, `
		SELECT 1 FROM conversation_participants
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PgMessagingRepository) InsertMessage(ctx context.Context, m messaging.Message) (*messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, m.ConversationID, m.SenderID, m.Content, m.CreatedAt.UTC()).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	// The recency bump rides in the same transaction: a message is never
	// recorded without the conversation's updated_at reflecting it.
	if _, err := tx.Exec(ctx, `
		UPDATE conversations SET updated_at = $2 WHERE id = $1
	`, m.ConversationID, m.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgMessagingRepository) ListMessages(ctx context.Context, conversationID int64) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender_id, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]messaging.Message, 0)
	for rows.Next() {
		var m messaging.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgMessagingRepository) AdvanceReadMarker(ctx context.Context, conversationID, userID int64, asOf time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	// The guard keeps the marker monotonic; zero rows affected is either a
	// no-op on an older timestamp or a missing participant row, and callers
	// check membership before invoking.
	_, err := r.pool.Exec(ctx, `
		UPDATE conversation_participants
		SET last_read_at = $3
		WHERE conversation_id = $1 AND user_id = $2
		  AND (last_read_at IS NULL OR last_read_at < $3)
	`, conversationID, userID, asOf.UTC())
	return err
}

func (r *PgMessagingRepository) UnreadCount(ctx context.Context, conversationID, userID int64) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessagingRepository: nil pool")
	}
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM messages m
		JOIN conversation_participants p
		  ON p.conversation_id = m.conversation_id AND p.user_id = $2
		WHERE m.conversation_id = $1
		  AND m.sender_id <> $2
		  AND (p.last_read_at IS NULL OR m.created_at > p.last_read_at)
	`, conversationID, userID).Scan(&n)
	return n, err
}

func (r *PgMessagingRepository) TotalUnread(ctx context.Context, userID int64) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessagingRepository: nil pool")
	}
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM messages m
		JOIN conversation_participants p
		  ON p.conversation_id = m.conversation_id AND p.user_id = $1
		WHERE m.sender_id <> $1
		  AND (p.last_read_at IS NULL OR m.created_at > p.last_read_at)
	`, userID).Scan(&n)
	return n, err
}

func (r *PgMessagingRepository) ListConversationSummaries(ctx context.Context, userID int64) ([]messaging.ConversationSummary, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id,
		       other_id,
		       u.display_name,
		       u.avatar_url,
		       lm.content,
		       lm.created_at,
		       COALESCE(un.n, 0),
		       c.created_at
		FROM conversations c
		CROSS JOIN LATERAL (
			SELECT CASE WHEN c.user_low = $1 THEN c.user_high ELSE c.user_low END AS other_id
		) o
		JOIN users u ON u.id = o.other_id
		JOIN conversation_participants me
		  ON me.conversation_id = c.id AND me.user_id = $1
		LEFT JOIN LATERAL (
			SELECT content, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON true
		LEFT JOIN LATERAL (
			SELECT count(*) AS n
			FROM messages m
			WHERE m.conversation_id = c.id
			  AND m.sender_id <> $1
			  AND (me.last_read_at IS NULL OR m.created_at > me.last_read_at)
		) un ON true
		WHERE c.user_low = $1 OR c.user_high = $1
		ORDER BY lm.created_at DESC NULLS LAST, c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]messaging.ConversationSummary, 0)
	for rows.Next() {
		var (
			s       messaging.ConversationSummary
			preview *string
			lastAt  *time.Time
		)
		if err := rows.Scan(&s.ConversationID, &s.Other.ID, &s.Other.DisplayName, &s.Other.AvatarURL, &preview, &lastAt, &s.UnreadCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.LastMessagePreview = preview
		s.LastMessageAt = lastAt
		out = append(out, s)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
