package auth

import (
	"context"
	"errors"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/storage"
)

// LocalAuthProvider validates tokens against the user repository. Used in
// development and in single-node deployments without a separate auth service.
type LocalAuthProvider struct {
	users  storage.UserRepository
	logger internal.Logger
}

var _ Provider = (*LocalAuthProvider)(nil)

func NewLocalAuthProvider(users storage.UserRepository, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{users: users, logger: logger}
}

func (a *LocalAuthProvider) ValidateToken(ctx context.Context, token string) (*internal.User, error) {
	user, err := a.users.GetUserByToken(ctx, token)
	if err != nil {
		a.logger.Warnf("invalid token")
		return nil, errors.New("invalid token")
	}
	return user, nil
}
