package auth

import (
	"fmt"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// Authentication failures. Each matches domain.ErrUnauthenticated with errors.Is.
var (
	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = fmt.Errorf("%w: authentication token is missing", domain.ErrUnauthenticated)

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = fmt.Errorf("%w: authentication token has expired", domain.ErrUnauthenticated)

	// ErrInvalidToken covers malformed tokens, bad signatures, disallowed algorithms,
	// unknown key ids, wrong audience or issuer and missing required claims.
	ErrInvalidToken = fmt.Errorf("%w: invalid authentication token", domain.ErrUnauthenticated)

	// ErrInvalidIdentityClaim indicates the subject claim cannot identify a user.
	ErrInvalidIdentityClaim = fmt.Errorf("%w: invalid identity claim", domain.ErrUnauthenticated)
)

// ErrKeySetUnavailable indicates the identity provider's key set could not be fetched.
// It is a store failure rather than an authentication failure.
var ErrKeySetUnavailable = fmt.Errorf("%w: identity provider key set unavailable", store.ErrStoreFailure)
