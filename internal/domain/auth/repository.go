package auth

import "context"

// UserStore resolves dashboard users by username.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
}
