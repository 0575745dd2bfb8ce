package usecase

import (
	"context"
	"errors"
	"fmt"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// GetMessagesInput identifies the conversation and the reader.
type GetMessagesInput struct {
	ConversationID int64
	UserID         int64
}

// GetMessagesUseCase returns all messages of a conversation, oldest first.
// Pure read: no read-state side effect; clients mark read explicitly.
type GetMessagesUseCase struct {
	Repo repository.MessagingRepository
}

func NewGetMessagesUseCase(repo repository.MessagingRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) ([]messaging.Message, error) {
	if _, err := uc.Repo.GetConversation(ctx, in.ConversationID); err != nil {
		if errors.Is(err, messaging.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	ok, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return nil, messaging.ErrNotParticipant
	}

	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
