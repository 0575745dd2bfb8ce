package directory

import (
	"context"
)

// User is the identity slice the messaging service reads from the user
// directory: id, display name, avatar. The directory is owned by the identity
// subsystem; this service never writes to it.
type User struct {
	ID          int64   `db:"id"`
	DisplayName string  `db:"display_name"`
	AvatarURL   *string `db:"avatar_url"`
}

// UserDirectory is the read-only contract against the user directory.
// Summary rendering joins the users table directly, so the port only covers
// the existence check the conversation resolver needs.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
