package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// KeySource fetches the identity provider's current key set.
type KeySource interface {
	FetchKeySet(ctx context.Context) (jwk.Set, error)
}

// HTTPKeySource fetches a JWK set from a URL.
type HTTPKeySource struct {
	url    string
	client *http.Client
}

// NewHTTPKeySource creates a source for url whose requests give up after timeout.
func NewHTTPKeySource(url string, timeout time.Duration) *HTTPKeySource {
	return &HTTPKeySource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPKeySource) FetchKeySet(ctx context.Context) (jwk.Set, error) {
	set, err := jwk.Fetch(ctx, s.url, jwk.WithHTTPClient(s.client))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch key set from %s: %w", s.url, err)
	}
	return set, nil
}

// Defaults for KeySetCache.
const (
	DefaultKeySetTTL          = time.Hour
	DefaultMaxKeys            = 16
	DefaultMinRefetchInterval = 5 * time.Second
)

var errUnknownKeyID = errors.New("unknown key id")

// KeySetCache holds the verification keys of the identity provider by key id.
//
// The set is fetched lazily and kept for the TTL. A missing key id triggers one
// extra fetch, unless the set was fetched less than the minimum refetch interval
// ago. Only the first maxKeys signing keys of a fetched set are kept. Lookups that
// need a fetch are serialized so concurrent requests share one round trip.
type KeySetCache struct {
	source     KeySource
	ttl        time.Duration
	maxKeys    int
	minRefetch time.Duration
	now        func() time.Time

	mu        sync.Mutex
	keys      map[string]any
	fetchedAt time.Time
}

// CacheOption configures a KeySetCache.
type CacheOption func(*KeySetCache)

// WithCacheClock replaces the clock used for TTL checks.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *KeySetCache) {
		c.now = now
	}
}

// WithMinRefetchInterval sets how long after a fetch an unknown key id is
// rejected without fetching again. Zero refetches on every miss.
func WithMinRefetchInterval(d time.Duration) CacheOption {
	return func(c *KeySetCache) {
		c.minRefetch = d
	}
}

// NewKeySetCache creates an empty cache over source. Non-positive ttl or maxKeys
// select the defaults.
func NewKeySetCache(source KeySource, ttl time.Duration, maxKeys int, opts ...CacheOption) *KeySetCache {
	if ttl <= 0 {
		ttl = DefaultKeySetTTL
	}
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	c := &KeySetCache{
		source:     source,
		ttl:        ttl,
		maxKeys:    maxKeys,
		minRefetch: DefaultMinRefetchInterval,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the raw public key (*rsa.PublicKey, *ecdsa.PublicKey or
// ed25519.PublicKey) for kid.
func (c *KeySetCache) Key(ctx context.Context, kid string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fetched := false
	if c.keys == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		if err := c.refresh(ctx); err != nil {
			return nil, err
		}
		fetched = true
	}

	if key, ok := c.keys[kid]; ok {
		return key, nil
	}
	if fetched || c.now().Sub(c.fetchedAt) < c.minRefetch {
		return nil, fmt.Errorf("%w %q", errUnknownKeyID, kid)
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	if key, ok := c.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w %q", errUnknownKeyID, kid)
}

// Reset drops the cached keys so the next lookup fetches again.
func (c *KeySetCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = nil
	c.fetchedAt = time.Time{}
}

// Len reports how many keys are cached.
func (c *KeySetCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

// refresh must be called with c.mu held.
func (c *KeySetCache) refresh(ctx context.Context) error {
	set, err := c.source.FetchKeySet(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}

	keys := make(map[string]any, min(set.Len(), c.maxKeys))
	for i := 0; i < set.Len() && len(keys) < c.maxKeys; i++ {
		key, ok := set.Key(i)
		if !ok || key.KeyUsage() == string(jwk.ForEncryption) {
			continue
		}
		var raw any
		if err := key.Raw(&raw); err != nil {
			continue
		}
		keys[key.KeyID()] = raw
	}

	c.keys = keys
	c.fetchedAt = c.now()
	return nil
}
