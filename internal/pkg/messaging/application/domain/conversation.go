package messaging

import "time"

// Conversation is a two-party thread. The unordered user pair is normalized into
// (UserLow, UserHigh) with UserLow < UserHigh; the pair is unique across the table.
type Conversation struct {
	ID        int64     `db:"id"`
	UserLow   int64     `db:"user_low"`
	UserHigh  int64     `db:"user_high"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasParticipant tells whether userID is one of the two parties.
func (c Conversation) HasParticipant(userID int64) bool {
	return userID == c.UserLow || userID == c.UserHigh
}

// OtherParticipant returns the peer of userID. The second return is false when
// userID is not part of this conversation.
func (c Conversation) OtherParticipant(userID int64) (int64, bool) {
	switch userID {
	case c.UserLow:
		return c.UserHigh, true
	case c.UserHigh:
		return c.UserLow, true
	}
	return 0, false
}

// NormalizePair orders two distinct user ids into the canonical (low, high) form
// used for conversation lookup and the uniqueness constraint.
func NormalizePair(a, b int64) (low, high int64, err error) {
	if a <= 0 || b <= 0 || a == b {
		return 0, 0, ErrInvalidParticipant
	}
	if a < b {
		return a, b, nil
	}
	return b, a, nil
}
