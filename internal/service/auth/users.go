package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/salesops/kpi-backend-go/internal/domain/auth"
)

// StaticUserStore serves the dashboard login table loaded from configuration.
type StaticUserStore struct {
	users map[string]auth.User
}

// NewStaticUserStore parses "username:bcrypt-hash:role" entries. The role defaults to viewer.
func NewStaticUserStore(entries []string) (*StaticUserStore, error) {
	store := &StaticUserStore{users: make(map[string]auth.User, len(entries))}
	for i, entry := range entries {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("%w: entry %d", auth.ErrInvalidUserEntry, i)
		}

		role := auth.RoleViewer
		if len(parts) == 3 && parts[2] != "" {
			role = auth.Role(strings.ToLower(parts[2]))
		}
		if !role.Valid() {
			return nil, fmt.Errorf("%w: entry %d has unknown role %q", auth.ErrInvalidUserEntry, i, role)
		}
		if _, dup := store.users[parts[0]]; dup {
			return nil, fmt.Errorf("%w: duplicate username %q", auth.ErrInvalidUserEntry, parts[0])
		}

		store.users[parts[0]] = auth.User{Username: parts[0], PasswordHash: parts[1], Role: role}
	}
	return store, nil
}

func (s *StaticUserStore) GetByUsername(ctx context.Context, username string) (auth.User, error) {
	u, ok := s.users[username]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}
