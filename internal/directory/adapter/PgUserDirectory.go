package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	directory "github.com/EyobKifle/agrihub-messaging/internal/directory/port"
)

// PgUserDirectory reads user identity rows from the shared users table.
type PgUserDirectory struct {
	pool *pgxpool.Pool
}

func NewPgUserDirectory(pool *pgxpool.Pool) *PgUserDirectory {
	return &PgUserDirectory{pool: pool}
}

var _ directory.UserDirectory = (*PgUserDirectory)(nil)

func (r *PgUserDirectory) Exists(ctx context.Context, id int64) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgUserDirectory: nil pool")
	}
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
