package messaging

import "time"

// Participant captures membership and read state within a conversation.
// Primary key: (ConversationID, UserID). LastReadAt is nil until the user first
// opens the conversation.
type Participant struct {
	ConversationID int64      `db:"conversation_id"`
	UserID         int64      `db:"user_id"`
	LastReadAt     *time.Time `db:"last_read_at"`
}

// AdvanceRead moves the read marker forward to asOf. The marker is monotonic:
// a call with an earlier timestamp than the stored one is a no-op. Returns true
// when the marker actually moved.
func (p *Participant) AdvanceRead(asOf time.Time) bool {
	if p.LastReadAt != nil && !p.LastReadAt.Before(asOf) {
		return false
	}
	t := asOf.UTC()
	p.LastReadAt = &t
	return true
}

// HasRead reports whether a message created at the given time is covered by the
// participant's read marker.
func (p Participant) HasRead(createdAt time.Time) bool {
	return p.LastReadAt != nil && !createdAt.After(*p.LastReadAt)
}
