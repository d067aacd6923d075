package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// KeyProvider resolves a key id to a verification key.
type KeyProvider interface {
	Key(ctx context.Context, kid string) (any, error)
}

// Identity is the verified content of a token.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// VerifierConfig configures a TokenVerifier.
type VerifierConfig struct {
	// Algorithms lists the accepted signing algorithms. Only asymmetric algorithms are allowed.
	Algorithms []string
	Issuer     string
	Audience   string
	Leeway     time.Duration
	// Now overrides the clock used for time-based claims.
	Now func() time.Time
}

var asymmetricAlgorithms = map[string]bool{
	"RS256": true, "RS384": true, "RS512": true,
	"PS256": true, "PS384": true, "PS512": true,
	"ES256": true, "ES384": true, "ES512": true,
	"EdDSA": true,
}

// TokenVerifier checks signatures and registered claims of bearer tokens.
type TokenVerifier struct {
	keys   KeyProvider
	parser *jwt.Parser
}

// NewTokenVerifier creates a verifier. It fails when an algorithm is symmetric,
// "none" or unknown, or when issuer or audience is empty.
func NewTokenVerifier(keys KeyProvider, cfg VerifierConfig) (*TokenVerifier, error) {
	if keys == nil {
		return nil, errors.New("key provider cannot be nil")
	}
	if len(cfg.Algorithms) == 0 {
		return nil, errors.New("at least one signing algorithm is required")
	}
	for _, alg := range cfg.Algorithms {
		if !asymmetricAlgorithms[alg] {
			return nil, fmt.Errorf("signing algorithm %q is not an accepted asymmetric algorithm", alg)
		}
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("issuer and audience are required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(cfg.Algorithms),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}

	return &TokenVerifier{
		keys:   keys,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify parses tokenString and returns its identity. Errors are ErrExpiredToken,
// ErrInvalidToken, ErrInvalidIdentityClaim or ErrKeySetUnavailable.
func (v *TokenVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	log := logger.FromContext(ctx)

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header has no key id")
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrKeySetUnavailable):
			log.Warn("token verification failed: key set unavailable",
				slog.String("error", err.Error()))
			return nil, err
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token verification failed: token expired")
			return nil, ErrExpiredToken
		default:
			log.Debug("token verification failed",
				slog.String("error", err.Error()),
				slog.String("error_type", fmt.Sprintf("%T", err)))
			return nil, ErrInvalidToken
		}
	}

	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		log.Debug("token verification failed: missing iat claim")
		return nil, ErrInvalidToken
	}
	exp, _ := claims.GetExpirationTime()

	rawSub, ok := claims["sub"]
	if !ok {
		log.Debug("token verification failed: missing sub claim")
		return nil, ErrInvalidToken
	}
	sub, ok := rawSub.(string)
	if !ok || strings.TrimSpace(sub) == "" || len(sub) > domain.MaxUserIDLength {
		log.Debug("token verification failed: unusable sub claim",
			slog.String("sub_type", fmt.Sprintf("%T", rawSub)))
		return nil, ErrInvalidIdentityClaim
	}

	identity := &Identity{
		Subject:   sub,
		Email:     stringClaim(claims, "email"),
		Name:      stringClaim(claims, "name"),
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}

	log.Debug("token verified",
		slog.String("sub", identity.Subject),
		slog.Time("expires_at", identity.ExpiresAt))
	return identity, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return strings.TrimSpace(s)
}
