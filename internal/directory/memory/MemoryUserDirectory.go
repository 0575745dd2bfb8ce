package memory

import (
	"context"
	"sync"

	directory "github.com/EyobKifle/agrihub-messaging/internal/directory/port"
)

// MemoryUserDirectory is an in-memory user directory for tests and local
// development.
type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[int64]directory.User
}

func NewMemoryUserDirectory(users ...directory.User) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[int64]directory.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

var _ directory.UserDirectory = (*MemoryUserDirectory)(nil)

func (d *MemoryUserDirectory) Add(u directory.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *MemoryUserDirectory) Exists(ctx context.Context, id int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[id]
	return ok, nil
}
