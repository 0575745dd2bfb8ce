package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheport "github.com/EyobKifle/agrihub-messaging/internal/infrastructure/cache/port"
	"github.com/EyobKifle/agrihub-messaging/internal/infrastructure/session"
	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.entries[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.entries[k]; ok {
			delete(f.entries, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }
func (f *fakeCache) Close() error                   { return nil }

var _ cacheport.Cache = (*fakeCache)(nil)

func TestResolveKnownToken(t *testing.T) {
	cache := newFakeCache()
	require.NoError(t, cache.Set(context.Background(), "session:tok-abc", "42", 0))
	store := session.NewStore(cache)

	p, err := store.Resolve(context.Background(), "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.UserID)
}

func TestResolveUnknownTokenIsUnauthenticated(t *testing.T) {
	store := session.NewStore(newFakeCache())

	_, err := store.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, messaging.ErrUnauthenticated)

	_, err = store.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, messaging.ErrUnauthenticated)
}

func TestResolveGarbageValueIsUnauthenticated(t *testing.T) {
	cache := newFakeCache()
	require.NoError(t, cache.Set(context.Background(), "session:tok-bad", "not-a-number", 0))
	require.NoError(t, cache.Set(context.Background(), "session:tok-neg", "-7", 0))
	store := session.NewStore(cache)

	_, err := store.Resolve(context.Background(), "tok-bad")
	assert.ErrorIs(t, err, messaging.ErrUnauthenticated)
	_, err = store.Resolve(context.Background(), "tok-neg")
	assert.ErrorIs(t, err, messaging.ErrUnauthenticated)
}

func TestResolveCacheFailureIsNotUnauthenticated(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	store := session.NewStore(cache)

	_, err := store.Resolve(context.Background(), "tok-abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, messaging.ErrUnauthenticated)
}

func newAuthedRouter(store *session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", session.Middleware(store), func(c *gin.Context) {
		p, ok := session.CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no principal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": p.UserID})
	})
	return r
}

func TestMiddlewareBearerHeader(t *testing.T) {
	cache := newFakeCache()
	require.NoError(t, cache.Set(context.Background(), "session:tok-abc", "7", 0))
	r := newAuthedRouter(session.NewStore(cache))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer tok-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":7}`, w.Body.String())
}

func TestMiddlewareTokenQueryParam(t *testing.T) {
	cache := newFakeCache()
	require.NoError(t, cache.Set(context.Background(), "session:tok-ws", "9", 0))
	r := newAuthedRouter(session.NewStore(cache))

	req := httptest.NewRequest(http.MethodGet, "/whoami?token=tok-ws", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":9}`, w.Body.String())
}

func TestMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	r := newAuthedRouter(session.NewStore(newFakeCache()))

	for _, tc := range []struct {
		name   string
		header string
	}{
		{name: "no credentials", header: ""},
		{name: "unknown token", header: "Bearer nope"},
		{name: "malformed header", header: "tok-abc"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
