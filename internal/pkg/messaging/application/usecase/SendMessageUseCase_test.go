package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/usecase"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/memory"
)

func mustConversation(t *testing.T, repo *memory.MemoryMessagingRepository, a, b int64) *messaging.Conversation {
	t.Helper()
	low, high, err := messaging.NormalizePair(a, b)
	require.NoError(t, err)
	conv, err := repo.CreateConversation(context.Background(), low, high, time.Now())
	require.NoError(t, err)
	return conv
}

func TestSendMessageAppends(t *testing.T) {
	repo, _ := newFixtures(1, 2)
	conv := mustConversation(t, repo, 1, 2)
	uc := usecase.NewSendMessageUseCase(repo)
	ctx := context.Background()

	msg, err := uc.Execute(ctx, usecase.SendMessageInput{
		ConversationID: conv.ID, SenderID: 1, Content: "Hello",
	})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "Hello", msg.Content)

	msgs, err := repo.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	// The recency bump rides with the insert
	stored, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.CreatedAt, stored.UpdatedAt)
}

func TestSendMessageRejectsWhitespaceWithoutSideEffects(t *testing.T) {
	repo, _ := newFixtures(1, 2)
	conv := mustConversation(t, repo, 1, 2)
	uc := usecase.NewSendMessageUseCase(repo)
	ctx := context.Background()

	_, err := uc.Execute(ctx, usecase.SendMessageInput{
		ConversationID: conv.ID, SenderID: 1, Content: "   ",
	})
	assert.ErrorIs(t, err, messaging.ErrEmptyContent)

	msgs, err := repo.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSendMessageRejectsOutsider(t *testing.T) {
	repo, _ := newFixtures(1, 2, 3)
	conv := mustConversation(t, repo, 1, 2)
	uc := usecase.NewSendMessageUseCase(repo)

	_, err := uc.Execute(context.Background(), usecase.SendMessageInput{
		ConversationID: conv.ID, SenderID: 3, Content: "hi",
	})
	assert.ErrorIs(t, err, messaging.ErrNotParticipant)
}

func TestListMessagesOrderedOldestFirst(t *testing.T) {
	repo, _ := newFixtures(1, 2)
	conv := mustConversation(t, repo, 1, 2)
	send := usecase.NewSendMessageUseCase(repo)
	get := usecase.NewGetMessagesUseCase(repo)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		_, err := send.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conv.ID, SenderID: 1, Content: content,
		})
		require.NoError(t, err)
	}

	msgs, err := get.Execute(ctx, usecase.GetMessagesInput{ConversationID: conv.ID, UserID: 2})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
	}
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "three", msgs[2].Content)
}

func TestGetMessagesErrors(t *testing.T) {
	repo, _ := newFixtures(1, 2, 3)
	conv := mustConversation(t, repo, 1, 2)
	get := usecase.NewGetMessagesUseCase(repo)
	ctx := context.Background()

	_, err := get.Execute(ctx, usecase.GetMessagesInput{ConversationID: 999, UserID: 1})
	assert.ErrorIs(t, err, messaging.ErrConversationNotFound)

	_, err = get.Execute(ctx, usecase.GetMessagesInput{ConversationID: conv.ID, UserID: 3})
	assert.ErrorIs(t, err, messaging.ErrNotParticipant)
}
