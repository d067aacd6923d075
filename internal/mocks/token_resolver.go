package mocks

import (
	"context"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// MockTokenResolver implements auth.TokenResolver for testing
type MockTokenResolver struct {
	ResolveFn func(ctx context.Context, token string) (*domain.User, error)

	// LastToken records the token of the most recent call.
	LastToken string
}

var _ auth.TokenResolver = (*MockTokenResolver)(nil)

func (m *MockTokenResolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	m.LastToken = token
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, token)
	}
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	return nil, auth.ErrInvalidToken
}
