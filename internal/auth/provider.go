package auth

import (
	"context"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
)

// Provider resolves an auth token to the user it belongs to. Main picks the
// implementation per environment: repository-backed in development, auth
// service elsewhere.
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*internal.User, error)
}
