package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	dirport "github.com/EyobKifle/agrihub-messaging/internal/directory/port"
	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// ResolveConversationInput carries the unordered user pair to resolve.
type ResolveConversationInput struct {
	UserA int64
	UserB int64
}

// ResolveConversationUseCase finds the existing two-party conversation for a
// user pair or atomically creates it with both participant rows. Safe under
// concurrent invocation: creation that loses the race against the pair's
// unique constraint falls back to one re-lookup and adopts the winner's row.
type ResolveConversationUseCase struct {
	Repo  repository.MessagingRepository
	Users dirport.UserDirectory
}

func NewResolveConversationUseCase(repo repository.MessagingRepository, users dirport.UserDirectory) *ResolveConversationUseCase {
	return &ResolveConversationUseCase{Repo: repo, Users: users}
}

// Execute returns the conversation for the pair, creating it when absent.
func (uc *ResolveConversationUseCase) Execute(ctx context.Context, in ResolveConversationInput) (*messaging.Conversation, error) {
	low, high, err := messaging.NormalizePair(in.UserA, in.UserB)
	if err != nil {
		return nil, err
	}

	for _, id := range []int64{low, high} {
		ok, err := uc.Users.Exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if !ok {
			return nil, messaging.ErrInvalidParticipant
		}
	}

	conv, err := uc.Repo.FindConversationByPair(ctx, low, high)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv != nil {
		return conv, nil
	}

	conv, err = uc.Repo.CreateConversation(ctx, low, high, time.Now().UTC())
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, repository.ErrDuplicatePair) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Lost the creation race; the winner's row must be visible now.
	conv, err = uc.Repo.FindConversationByPair(ctx, low, high)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv == nil {
		return nil, fmt.Errorf("%w: conversation vanished after duplicate pair", ErrPersistence)
	}
	return conv, nil
}
