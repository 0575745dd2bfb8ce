package usecase

import (
	"context"
	"fmt"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// ListConversationsInput wraps the user whose conversation list is requested.
type ListConversationsInput struct {
	UserID int64
}

// ListConversationsUseCase produces the user's conversation summaries: the
// other participant's identity, the latest message and the unread count,
// ordered by recency. Pure read.
type ListConversationsUseCase struct {
	Repo repository.MessagingRepository
}

func NewListConversationsUseCase(repo repository.MessagingRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]messaging.ConversationSummary, error) {
	if in.UserID <= 0 {
		return nil, messaging.ErrInvalidParticipant
	}
	summaries, err := uc.Repo.ListConversationSummaries(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return summaries, nil
}
