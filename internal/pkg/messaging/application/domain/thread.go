package messaging

import (
	"errors"
	"time"
)

// Domain-level errors for messaging behaviors
var (
	ErrInvalidParticipant     = errors.New("messaging: participant pair is invalid")
	ErrNotParticipant         = errors.New("messaging: user is not a participant in the conversation")
	ErrEmptyContent           = errors.New("messaging: message content is empty")
	ErrConversationNotFound   = errors.New("messaging: conversation not found")
	ErrUnauthenticated        = errors.New("messaging: no authenticated principal")
	ErrBackdatedMessage       = errors.New("messaging: message timestamp is backdated")
)

// Thread is the in-memory aggregate for one conversation and its invariants:
// exactly two participants, message order by creation time, per-participant
// read markers. The application layer hydrates it before invoking behaviors;
// persistence stays in repositories.
type Thread struct {
	Conversation  Conversation
	Participants  map[int64]*Participant // keyed by userID; exactly two entries
	LastMessageAt *time.Time             // last persisted message CreatedAt, if known
}

// NewThread builds a hydrated aggregate for the conversation and its two
// participant rows.
func NewThread(c Conversation, parts []Participant) *Thread {
	t := &Thread{
		Conversation: c,
		Participants: make(map[int64]*Participant, len(parts)),
	}
	for i := range parts {
		p := parts[i]
		t.Participants[p.UserID] = &p
	}
	return t
}

// Post applies domain rules and returns a validated message ready to persist.
// The sender must be a participant; content must survive trimming; the message
// must not be backdated relative to LastMessageAt when that watermark is known.
// On success the watermark advances to the message's CreatedAt.
func (t *Thread) Post(senderID int64, content string, now time.Time) (*Message, error) {
	if !t.Conversation.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}
	if _, ok := t.Participants[senderID]; !ok {
		return nil, ErrNotParticipant
	}

	m, err := NewMessage(t.Conversation.ID, senderID, content, now)
	if err != nil {
		return nil, err
	}

	if t.LastMessageAt != nil && m.CreatedAt.Before(t.LastMessageAt.UTC()) {
		return nil, ErrBackdatedMessage
	}

	ts := m.CreatedAt
	t.LastMessageAt = &ts
	return m, nil
}

// MarkRead advances the read marker of userID. Monotonic; returns
// ErrNotParticipant when the user is not part of the thread.
func (t *Thread) MarkRead(userID int64, asOf time.Time) error {
	p, ok := t.Participants[userID]
	if !ok {
		return ErrNotParticipant
	}
	p.AdvanceRead(asOf)
	return nil
}

// CountUnread computes the unread count for userID over the given messages:
// messages sent by the peer and created after the user's read marker (all such
// messages when the marker is unset).
func (t *Thread) CountUnread(userID int64, msgs []Message) (int, error) {
	p, ok := t.Participants[userID]
	if !ok {
		return 0, ErrNotParticipant
	}
	n := 0
	for _, m := range msgs {
		if m.SenderID == userID {
			continue
		}
		if !p.HasRead(m.CreatedAt) {
			n++
		}
	}
	return n, nil
}
