package usecase

import (
	"context"
	"fmt"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// UnreadCountInput identifies the participant asking for their unread count.
type UnreadCountInput struct {
	ConversationID int64
	UserID         int64
}

// UnreadCountUseCase computes the authoritative unread count for one
// conversation. Always served from the store so a markRead followed by
// unreadCount observes the update.
type UnreadCountUseCase struct {
	Repo repository.MessagingRepository
}

func NewUnreadCountUseCase(repo repository.MessagingRepository) *UnreadCountUseCase {
	return &UnreadCountUseCase{Repo: repo}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, in UnreadCountInput) (int, error) {
	ok, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return 0, messaging.ErrNotParticipant
	}

	n, err := uc.Repo.UnreadCount(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return n, nil
}
