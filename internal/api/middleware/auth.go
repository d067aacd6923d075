package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// ErrorResponder writes the error envelope for a failed request.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// AuthMiddleware resolves bearer tokens to users for protected routes.
type AuthMiddleware struct {
	resolver auth.TokenResolver
	respond  ErrorResponder
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(resolver auth.TokenResolver, respond ErrorResponder, logger *slog.Logger) *AuthMiddleware {
	if resolver == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("token resolver cannot be nil for AuthMiddleware")
	}
	if respond == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("error responder cannot be nil for AuthMiddleware")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		resolver: resolver,
		respond:  respond,
		logger:   logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the bearer token from the Authorization header and adds
// the resolved user to the request context. Users seen for the first time are
// provisioned by the resolver.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		token, err := bearerToken(r)
		if err != nil {
			m.respond(w, r, err)
			return
		}

		user, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			// Expired and forged tokens share a response but not a log line.
			log.Info("authentication failed", slog.String("reason", redact.Error(err)))
			m.respond(w, r, err)
			return
		}

		ctx := shared.WithUser(r.Context(), user)
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", user.ID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", auth.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", auth.ErrMissingToken
	}
	return token, nil
}
