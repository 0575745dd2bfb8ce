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

func TestUnreadCountAfterFirstMessage(t *testing.T) {
	repo, dir := newFixtures(1, 2)
	resolve := usecase.NewResolveConversationUseCase(repo, dir)
	send := usecase.NewSendMessageUseCase(repo)
	unread := usecase.NewUnreadCountUseCase(repo)
	ctx := context.Background()

	// User 1 sends "Hello" to user 2: the conversation comes to exist
	conv, err := resolve.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 2})
	require.NoError(t, err)
	_, err = send.Execute(ctx, usecase.SendMessageInput{ConversationID: conv.ID, SenderID: 1, Content: "Hello"})
	require.NoError(t, err)

	n, err := unread.Execute(ctx, usecase.UnreadCountInput{ConversationID: conv.ID, UserID: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = unread.Execute(ctx, usecase.UnreadCountInput{ConversationID: conv.ID, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMarkReadThenReplyFlipsUnreadCounts(t *testing.T) {
	repo, dir := newFixtures(1, 2)
	resolve := usecase.NewResolveConversationUseCase(repo, dir)
	send := usecase.NewSendMessageUseCase(repo)
	markRead := usecase.NewMarkReadUseCase(repo)
	unread := usecase.NewUnreadCountUseCase(repo)
	ctx := context.Background()

	conv, err := resolve.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 2})
	require.NoError(t, err)
	_, err = send.Execute(ctx, usecase.SendMessageInput{ConversationID: conv.ID, SenderID: 1, Content: "Hello"})
	require.NoError(t, err)

	// User 2 reads, then replies
	require.NoError(t, markRead.Execute(ctx, usecase.MarkReadInput{ConversationID: conv.ID, UserID: 2}))
	_, err = send.Execute(ctx, usecase.SendMessageInput{ConversationID: conv.ID, SenderID: 2, Content: "Hi back"})
	require.NoError(t, err)

	n, err := unread.Execute(ctx, usecase.UnreadCountInput{ConversationID: conv.ID, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = unread.Execute(ctx, usecase.UnreadCountInput{ConversationID: conv.ID, UserID: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMarkReadIdempotentAndMonotonic(t *testing.T) {
	repo, _ := newFixtures(1, 2)
	conv := mustConversation(t, repo, 1, 2)
	send := usecase.NewSendMessageUseCase(repo)
	markRead := usecase.NewMarkReadUseCase(repo)
	unread := usecase.NewUnreadCountUseCase(repo)
	ctx := context.Background()

	msg, err := send.Execute(ctx, usecase.SendMessageInput{ConversationID: conv.ID, SenderID: 1, Content: "Hello"})
	require.NoError(t, err)

	readAt := msg.CreatedAt

	// Same timestamp twice: count unchanged after the second call
	require.NoError(t, markRead.Execute(ctx, usecase.MarkReadInput{ConversationID: conv.ID, UserID: 2, AsOf: readAt}))
	n1, err := unread.Execute(ctx, usecase.UnreadCountInput{ConversationID: conv.ID, UserID: 2})
	require.NoError(t, err)
	require.NoError(t, markRead.Execute(ctx, usecase.MarkReadInput{ConversationID: conv.ID, UserID: 2, AsOf: readAt}))
	n2, err := unread.Execute(ctx, usecase.UnreadCountInput{ConversationID: conv.ID, UserID: 2})
	require.NoError(t, err)
	assert.Equal(t, n1, n2)
	assert.Equal(t, 0, n2)

	// Earlier timestamp never moves the marker back
	require.NoError(t, markRead.Execute(ctx, usecase.MarkReadInput{ConversationID: conv.ID, UserID: 2, AsOf: readAt.Add(-time.Hour)}))
	n3, err := unread.Execute(ctx, usecase.UnreadCountInput{ConversationID: conv.ID, UserID: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, n3)
}

func TestMarkReadRejectsOutsider(t *testing.T) {
	repo, _ := newFixtures(1, 2, 3)
	conv := mustConversation(t, repo, 1, 2)
	markRead := usecase.NewMarkReadUseCase(repo)

	err := markRead.Execute(context.Background(), usecase.MarkReadInput{ConversationID: conv.ID, UserID: 3})
	assert.ErrorIs(t, err, messaging.ErrNotParticipant)
}
