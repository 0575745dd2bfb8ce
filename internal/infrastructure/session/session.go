package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	cacheport "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/cache/port"
	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
)

const keyPrefix = "session:"

// Store resolves opaque session tokens to user ids. Tokens are minted by the
// identity subsystem and shared through the cache; this service only reads.
type Store struct {
	cache cacheport.Cache
}

func NewStore(cache cacheport.Cache) *Store {
	return &Store{cache: cache}
}

// Resolve maps a session token to the authenticated principal.
// Unknown or expired tokens yield messaging.ErrUnauthenticated.
func (s *Store) Resolve(ctx context.Context, token string) (messaging.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return messaging.Principal{}, messaging.ErrUnauthenticated
	}

	raw, err := s.cache.Get(ctx, keyPrefix+token)
	if errors.Is(err, cacheport.ErrMiss) {
		return messaging.Principal{}, messaging.ErrUnauthenticated
	}
	if err != nil {
		return messaging.Principal{}, fmt.Errorf("session: resolve token: %w", err)
	}

	userID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || userID <= 0 {
		return messaging.Principal{}, messaging.ErrUnauthenticated
	}
	return messaging.Principal{UserID: userID}, nil
}
