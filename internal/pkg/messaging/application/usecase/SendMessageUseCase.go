package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// SendMessageInput carries the data needed to append a new message.
// Content validation and trimming happen in the domain constructor.
type SendMessageInput struct {
	ConversationID int64
	SenderID       int64
	Content        string
}

// SendMessageUseCase appends an immutable message to a conversation. The
// hydrated Thread aggregate enforces membership, content and ordering rules;
// the insert and the conversation recency bump are one atomic unit inside the
// repository.
type SendMessageUseCase struct {
	Repo repository.MessagingRepository
}

func NewSendMessageUseCase(repo repository.MessagingRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

// Execute validates and persists a new message for a conversation.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*messaging.Message, error) {
	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, messaging.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// The two participant rows are implied by the pair columns; updated_at is
	// the ordering watermark since it tracks the last message's created_at.
	thread := messaging.NewThread(*conv, []messaging.Participant{
		{ConversationID: conv.ID, UserID: conv.UserLow},
		{ConversationID: conv.ID, UserID: conv.UserHigh},
	})
	watermark := conv.UpdatedAt
	thread.LastMessageAt = &watermark

	msg, err := thread.Post(in.SenderID, in.Content, time.Now())
	if err != nil {
		return nil, err
	}

	saved, err := uc.Repo.InsertMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return saved, nil
}
