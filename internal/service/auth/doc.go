// Package auth binds bearer tokens issued by an external identity provider to
// users of this service.
//
// Tokens are verified against the provider's published JSON Web Key Set, which
// is cached by KeySetCache and refetched on expiry or when a token names a key id
// the cache has not seen (key rotation). Resolver turns a verified token into a
// *domain.User, creating the user on first sight.
//
// Every authentication failure wraps domain.ErrUnauthenticated. A key set that
// cannot be fetched is reported as ErrKeySetUnavailable instead: the caller is
// not at fault and the request may succeed later.
package auth
