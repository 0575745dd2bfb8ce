package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dirmem "github.com/EyobKifle/agrihub-messaging/internal/directory/memory"
	directory "github.com/EyobKifle/agrihub-messaging/internal/directory/port"
	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/usecase"
	"github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/memory"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

func newFixtures(userIDs ...int64) (*memory.MemoryMessagingRepository, *dirmem.MemoryUserDirectory) {
	repo := memory.NewMemoryMessagingRepository()
	dir := dirmem.NewMemoryUserDirectory()
	for _, id := range userIDs {
		dir.Add(directory.User{ID: id, DisplayName: "user"})
		repo.AddUser(messaging.UserRef{ID: id, DisplayName: "user"})
	}
	return repo, dir
}

func TestResolveConversationIsOrderInsensitive(t *testing.T) {
	repo, dir := newFixtures(1, 2)
	uc := usecase.NewResolveConversationUseCase(repo, dir)
	ctx := context.Background()

	first, err := uc.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 2})
	require.NoError(t, err)

	second, err := uc.Execute(ctx, usecase.ResolveConversationInput{UserA: 2, UserB: 1})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestResolveConversationRejectsInvalidPairs(t *testing.T) {
	repo, dir := newFixtures(1, 2)
	uc := usecase.NewResolveConversationUseCase(repo, dir)
	ctx := context.Background()

	_, err := uc.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 1})
	assert.ErrorIs(t, err, messaging.ErrInvalidParticipant)

	// User 9 is not in the directory
	_, err = uc.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 9})
	assert.ErrorIs(t, err, messaging.ErrInvalidParticipant)
}

func TestResolveConversationConcurrentCallsCreateOne(t *testing.T) {
	repo, dir := newFixtures(1, 2)
	uc := usecase.NewResolveConversationUseCase(repo, dir)
	ctx := context.Background()

	const n = 16
	ids := make([]int64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			conv, err := uc.Execute(ctx, usecase.ResolveConversationInput{UserA: 1, UserB: 2})
			require.NoError(t, err)
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

// racingRepo forces the find-then-create race: the first lookup misses, the
// create hits the unique constraint, and the retry lookup must win.
type racingRepo struct {
	repository.MessagingRepository
	mu    sync.Mutex
	finds int
}

func (r *racingRepo) FindConversationByPair(ctx context.Context, low, high int64) (*messaging.Conversation, error) {
	r.mu.Lock()
	r.finds++
	first := r.finds == 1
	r.mu.Unlock()
	if first {
		return nil, nil // simulate the pre-insert miss
	}
	return r.MessagingRepository.FindConversationByPair(ctx, low, high)
}

func (r *racingRepo) CreateConversation(ctx context.Context, low, high int64, now time.Time) (*messaging.Conversation, error) {
	// The competing writer got there first.
	if _, err := r.MessagingRepository.CreateConversation(ctx, low, high, now); err != nil {
		return nil, err
	}
	return nil, repository.ErrDuplicatePair
}

func TestResolveConversationRetriesOnDuplicatePair(t *testing.T) {
	base, dir := newFixtures(1, 2)
	uc := usecase.NewResolveConversationUseCase(&racingRepo{MessagingRepository: base}, dir)

	conv, err := uc.Execute(context.Background(), usecase.ResolveConversationInput{UserA: 1, UserB: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), conv.UserLow)
	assert.Equal(t, int64(2), conv.UserHigh)
}
