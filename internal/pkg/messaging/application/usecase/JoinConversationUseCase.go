package usecase

import (
	"context"
	"fmt"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// JoinConversationInput validates a request to attach a user session to a conversation.
type JoinConversationInput struct {
	ConversationID int64
	UserID         int64
}

// JoinConversationUseCase ensures the user belongs to the conversation before
// joining the realtime room.
type JoinConversationUseCase struct {
	Repo repository.MessagingRepository
}

func NewJoinConversationUseCase(repo repository.MessagingRepository) *JoinConversationUseCase {
	return &JoinConversationUseCase{Repo: repo}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	if in.ConversationID <= 0 || in.UserID <= 0 {
		return fmt.Errorf("conversation_id and user_id are required")
	}

	ok, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return messaging.ErrNotParticipant
	}
	return nil
}
