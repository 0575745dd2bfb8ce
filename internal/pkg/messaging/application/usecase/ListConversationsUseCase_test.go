package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/usecase"
)

func TestListConversationsSummaryScenario(t *testing.T) {
	repo, dir := newFixtures(1, 2)
	repo.AddUser(messaging.UserRef{ID: 2, DisplayName: "Abebe"})
	resolve := usecase.NewResolveConversationUseCase(repo, dir)
	send := usecase.NewSendMessageUseCase(repo)
	markRead := usecase.NewMarkReadUseCase(repo)
	list := usecase.NewListConversationsUseCase(repo)
	ctx := context.Background()

	conv, err := resolve.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 2})
	require.NoError(t, err)
	_, err = send.Execute(ctx, usecase.SendMessageInput{ConversationID: conv.ID, SenderID: 1, Content: "Hello"})
	require.NoError(t, err)
	require.NoError(t, markRead.Execute(ctx, usecase.MarkReadInput{ConversationID: conv.ID, UserID: 2}))
	_, err = send.Execute(ctx, usecase.SendMessageInput{ConversationID: conv.ID, SenderID: 2, Content: "Hi back"})
	require.NoError(t, err)

	summaries, err := list.Execute(ctx, usecase.ListConversationsInput{UserID: 1})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, conv.ID, s.ConversationID)
	assert.Equal(t, int64(2), s.Other.ID)
	assert.Equal(t, "Abebe", s.Other.DisplayName)
	require.NotNil(t, s.LastMessagePreview)
	assert.Equal(t, "Hi back", *s.LastMessagePreview)
	assert.Equal(t, 1, s.UnreadCount)
}

func TestListConversationsOrdering(t *testing.T) {
	repo, dir := newFixtures(1, 2, 3, 4)
	resolve := usecase.NewResolveConversationUseCase(repo, dir)
	send := usecase.NewSendMessageUseCase(repo)
	list := usecase.NewListConversationsUseCase(repo)
	ctx := context.Background()

	convA, err := resolve.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 2})
	require.NoError(t, err)
	convB, err := resolve.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 3})
	require.NoError(t, err)
	// convC never receives a message
	convC, err := resolve.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 4})
	require.NoError(t, err)

	_, err = send.Execute(ctx, usecase.SendMessageInput{ConversationID: convA.ID, SenderID: 2, Content: "first"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = send.Execute(ctx, usecase.SendMessageInput{ConversationID: convB.ID, SenderID: 3, Content: "second"})
	require.NoError(t, err)

	summaries, err := list.Execute(ctx, usecase.ListConversationsInput{UserID: 1})
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// Most recently active first; the empty conversation sorts last
	assert.Equal(t, convB.ID, summaries[0].ConversationID)
	assert.Equal(t, convA.ID, summaries[1].ConversationID)
	assert.Equal(t, convC.ID, summaries[2].ConversationID)
	assert.Nil(t, summaries[2].LastMessagePreview)
}

func TestListConversationsRejectsInvalidUser(t *testing.T) {
	repo, _ := newFixtures(1)
	list := usecase.NewListConversationsUseCase(repo)

	_, err := list.Execute(context.Background(), usecase.ListConversationsInput{UserID: 0})
	assert.ErrorIs(t, err, messaging.ErrInvalidParticipant)
}
