package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

type pairKey struct {
	low, high int64
}

// MemoryMessagingRepository is an in-memory implementation of the messaging
// repository port with the same semantics as the PostgreSQL adapter, including
// the duplicate-pair conflict on concurrent creation. Used by tests and local
// development; not for production.
type MemoryMessagingRepository struct {
	mu sync.Mutex

	nextConversationID int64
	nextMessageID      int64

	conversations map[int64]*messaging.Conversation
	pairs         map[pairKey]int64
	participants  map[int64]map[int64]*messaging.Participant // conversationID -> userID
	messages      map[int64][]messaging.Message              // conversationID -> append order

	// Identity is the user directory view used to render summaries.
	Identity map[int64]messaging.UserRef
}

func NewMemoryMessagingRepository() *MemoryMessagingRepository {
	return &MemoryMessagingRepository{
		conversations: make(map[int64]*messaging.Conversation),
		pairs:         make(map[pairKey]int64),
		participants:  make(map[int64]map[int64]*messaging.Participant),
		messages:      make(map[int64][]messaging.Message),
		Identity:      make(map[int64]messaging.UserRef),
	}
}

var _ repository.MessagingRepository = (*MemoryMessagingRepository)(nil)

// AddUser registers identity for summary rendering.
func (r *MemoryMessagingRepository) AddUser(u messaging.UserRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Identity[u.ID] = u
}

func (r *MemoryMessagingRepository) FindConversationByPair(ctx context.Context, userLow, userHigh int64) (*messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.pairs[pairKey{userLow, userHigh}]
	if !ok {
		return nil, nil
	}
	c := *r.conversations[id]
	return &c, nil
}

func (r *MemoryMessagingRepository) CreateConversation(ctx context.Context, userLow, userHigh int64, now time.Time) (*messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{userLow, userHigh}
	if _, exists := r.pairs[key]; exists {
		return nil, repository.ErrDuplicatePair
	}

	r.nextConversationID++
	c := &messaging.Conversation{
		ID:        r.nextConversationID,
		UserLow:   userLow,
		UserHigh:  userHigh,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	r.conversations[c.ID] = c
	r.pairs[key] = c.ID
	r.participants[c.ID] = map[int64]*messaging.Participant{
		userLow:  {ConversationID: c.ID, UserID: userLow},
		userHigh: {ConversationID: c.ID, UserID: userHigh},
	}
	out := *c
	return &out, nil
}

func (r *MemoryMessagingRepository) GetConversation(ctx context.Context, conversationID int64) (*messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return nil, messaging.ErrConversationNotFound
	}
	out := *c
	return &out, nil
}

func (r *MemoryMessagingRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parts, ok := r.participants[conversationID]
	if !ok {
		return false, nil
	}
	_, ok = parts[userID]
	return ok, nil
}

func (r *MemoryMessagingRepository) InsertMessage(ctx context.Context, m messaging.Message) (*messaging.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[m.ConversationID]
	if !ok {
		return nil, messaging.ErrConversationNotFound
	}

	r.nextMessageID++
	m.ID = r.nextMessageID
	m.CreatedAt = m.CreatedAt.UTC()
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	c.UpdatedAt = m.CreatedAt

	out := m
	return &out, nil
}

func (r *MemoryMessagingRepository) ListMessages(ctx context.Context, conversationID int64) ([]messaging.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.messages[conversationID]
	out := make([]messaging.Message, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryMessagingRepository) AdvanceReadMarker(ctx context.Context, conversationID, userID int64, asOf time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	parts, ok := r.participants[conversationID]
	if !ok {
		return nil
	}
	p, ok := parts[userID]
	if !ok {
		return nil
	}
	p.AdvanceRead(asOf)
	return nil
}

func (r *MemoryMessagingRepository) UnreadCount(ctx context.Context, conversationID, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unreadLocked(conversationID, userID), nil
}

func (r *MemoryMessagingRepository) TotalUnread(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for id, parts := range r.participants {
		if _, ok := parts[userID]; ok {
			total += r.unreadLocked(id, userID)
		}
	}
	return total, nil
}

func (r *MemoryMessagingRepository) ListConversationSummaries(ctx context.Context, userID int64) ([]messaging.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]messaging.ConversationSummary, 0)
	for id, c := range r.conversations {
		if !c.HasParticipant(userID) {
			continue
		}
		otherID, _ := c.OtherParticipant(userID)
		s := messaging.ConversationSummary{
			ConversationID: id,
			Other:          r.Identity[otherID],
			UnreadCount:    r.unreadLocked(id, userID),
			CreatedAt:      c.CreatedAt,
		}
		if msgs := r.messages[id]; len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			content := last.Content
			at := last.CreatedAt
			s.LastMessagePreview = &content
			s.LastMessageAt = &at
		}
		out = append(out, s)
	}

	// Active threads by last message time descending; empty conversations
	// after them, most recently created first.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.LastMessageAt != nil && b.LastMessageAt != nil:
			return a.LastMessageAt.After(*b.LastMessageAt)
		case a.LastMessageAt != nil:
			return true
		case b.LastMessageAt != nil:
			return false
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return out, nil
}

func (r *MemoryMessagingRepository) unreadLocked(conversationID, userID int64) int {
	c, ok := r.conversations[conversationID]
	if !ok {
		return 0
	}
	parts := make([]messaging.Participant, 0, len(r.participants[conversationID]))
	for _, p := range r.participants[conversationID] {
		parts = append(parts, *p)
	}
	n, err := messaging.NewThread(*c, parts).CountUnread(userID, r.messages[conversationID])
	if err != nil {
		return 0
	}
	return n
}
