package usecase

import (
	"context"
	"fmt"
	"time"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
	repository "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/persistence/repository/port"
)

// MarkReadInput identifies the participant advancing their read marker.
// A zero AsOf means "now".
type MarkReadInput struct {
	ConversationID int64
	UserID         int64
	AsOf           time.Time
}

// MarkReadUseCase advances a participant's last_read_at. Monotonic: calls with
// a timestamp at or before the stored marker are no-ops.
type MarkReadUseCase struct {
	Repo repository.MessagingRepository
}

func NewMarkReadUseCase(repo repository.MessagingRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) error {
	ok, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return messaging.ErrNotParticipant
	}

	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	if err := uc.Repo.AdvanceReadMarker(ctx, in.ConversationID, in.UserID, asOf.UTC()); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
