package testutils

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/require"
)

// Values a test identity provider signs into its tokens.
const (
	TestIssuer   = "https://auth.example.test"
	TestAudience = "tasks-api"
	TestKeyID    = "test-key-1"
)

// TokenSigner signs RS256 tokens with a throwaway key and publishes the matching
// public key as a JWK set.
type TokenSigner struct {
	KeyID string
	key   *rsa.PrivateKey
}

// NewTokenSigner generates a signing key identified by kid.
func NewTokenSigner(t *testing.T, kid string) *TokenSigner {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "Failed to generate RSA key")
	return &TokenSigner{KeyID: kid, key: key}
}

// PublicKey returns the verification half of the signing key.
func (s *TokenSigner) PublicKey() *rsa.PublicKey {
	return &s.key.PublicKey
}

// Sign returns a compact RS256 token carrying claims with the signer's kid.
func (s *TokenSigner) Sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.KeyID
	signed, err := token.SignedString(s.key)
	require.NoError(t, err, "Failed to sign test token")
	return signed
}

// JWK returns the public key as a JWK with kid and alg set.
func (s *TokenSigner) JWK(t *testing.T) jwk.Key {
	t.Helper()

	key, err := jwk.FromRaw(s.PublicKey())
	require.NoError(t, err, "Failed to build JWK")
	require.NoError(t, key.Set(jwk.KeyIDKey, s.KeyID))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256))
	return key
}

// KeySet builds a JWK set holding the public keys of signers.
func KeySet(t *testing.T, signers ...*TokenSigner) jwk.Set {
	t.Helper()

	set := jwk.NewSet()
	for _, s := range signers {
		require.NoError(t, set.AddKey(s.JWK(t)), "Failed to add key to set")
	}
	return set
}

// Claims returns a valid claim set for subject issued at now and expiring an hour later.
func Claims(subject string, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   subject,
		"iss":   TestIssuer,
		"aud":   TestAudience,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"email": subject + "@example.com",
		"name":  "Test " + subject,
	}
}

// StaticKeySource serves a fixed key set and counts how often it was fetched.
// Set and Err may be replaced between fetches with SetKeys and SetError.
type StaticKeySource struct {
	set   atomic.Pointer[jwk.Set]
	err   atomic.Pointer[error]
	calls atomic.Int32
}

// NewStaticKeySource returns a source serving set.
func NewStaticKeySource(set jwk.Set) *StaticKeySource {
	s := &StaticKeySource{}
	s.SetKeys(set)
	return s
}

func (s *StaticKeySource) FetchKeySet(ctx context.Context) (jwk.Set, error) {
	s.calls.Add(1)
	if errp := s.err.Load(); errp != nil && *errp != nil {
		return nil, *errp
	}
	return *s.set.Load(), nil
}

// SetKeys replaces the served key set.
func (s *StaticKeySource) SetKeys(set jwk.Set) {
	s.set.Store(&set)
}

// SetError makes subsequent fetches fail with err; nil restores normal service.
func (s *StaticKeySource) SetError(err error) {
	s.err.Store(&err)
}

// Calls reports how many fetches were made.
func (s *StaticKeySource) Calls() int {
	return int(s.calls.Load())
}
