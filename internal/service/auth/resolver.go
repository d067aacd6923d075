package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// TokenResolver turns a bearer token into the user it identifies.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Resolver verifies tokens and provisions users on their first request.
type Resolver struct {
	verifier *TokenVerifier
	users    store.UserStore
	logger   *slog.Logger
	now      func() time.Time
}

var _ TokenResolver = (*Resolver)(nil)

// NewResolver creates a Resolver.
func NewResolver(verifier *TokenVerifier, users store.UserStore, logger *slog.Logger) (*Resolver, error) {
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", nil)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		verifier: verifier,
		users:    users,
		logger:   logger.With(slog.String("component", "auth_resolver")),
		now:      time.Now,
	}, nil
}

// Resolve verifies token and returns its user, creating the user when the subject
// has not been seen before.
func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	identity, err := r.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.GetByID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return r.provision(ctx, identity)
}

func (r *Resolver) provision(ctx context.Context, identity *Identity) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	user, err := domain.NewUser(
		identity.Subject,
		identity.Email,
		domain.DeriveDisplayName(identity.Name, identity.Email),
		r.now(),
	)
	if err != nil {
		log.Debug("identity claims cannot form a user", slog.String("error", err.Error()))
		return nil, ErrInvalidIdentityClaim
	}

	err = r.users.Create(ctx, user)
	if errors.Is(err, store.ErrUserExists) {
		// A concurrent request for the same subject won the insert.
		existing, getErr := r.users.GetByID(ctx, identity.Subject)
		if errors.Is(getErr, store.ErrUserNotFound) {
			// The email belongs to a different subject.
			log.Warn("identity email already registered to another user")
			return nil, domain.NewDuplicateError(domain.ResourceUser, "email", user.Email)
		}
		if getErr != nil {
			return nil, fmt.Errorf("failed to provision user: %w", getErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	log.Info("provisioned user from identity token",
		slog.String("user_id", user.ID),
		slog.Bool("has_email", user.Email != ""))
	return user, nil
}
