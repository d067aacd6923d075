package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/phrazzld/tasks-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFixture struct {
	verifierFixture
	db       *sqlx.DB
	users    store.UserStore
	resolver *auth.Resolver
}

func newResolverFixture(t *testing.T) resolverFixture {
	t.Helper()

	vf := newVerifierFixture(t, 0)
	db := testutils.NewTestDB(t)
	users := testutils.NewTestStores(db).Users
	resolver, err := auth.NewResolver(vf.verifier, users, testutils.DiscardLogger())
	require.NoError(t, err)
	return resolverFixture{verifierFixture: vf, db: db, users: users, resolver: resolver}
}

func TestResolver_MissingToken(t *testing.T) {
	f := newResolverFixture(t)
	_, err := f.resolver.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrMissingToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolver_ProvisionsOnFirstSight(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(jwt.MapClaims)
		wantName  string
		wantEmail string
	}{
		{"name claim", func(c jwt.MapClaims) { c["name"] = "Grace Hopper" }, "Grace Hopper", "newcomer@example.com"},
		{"email local part", func(c jwt.MapClaims) { delete(c, "name") }, "newcomer", "newcomer@example.com"},
		{"email without domain", func(c jwt.MapClaims) {
			delete(c, "name")
			c["email"] = "alice"
		}, "alice", "alice"},
		{"fallback", func(c jwt.MapClaims) {
			delete(c, "name")
			delete(c, "email")
		}, domain.FallbackDisplayName, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResolverFixture(t)
			claims := testutils.Claims("newcomer", f.now)
			tt.mutate(claims)

			user, err := f.resolver.Resolve(context.Background(), f.signer.Sign(t, claims))
			require.NoError(t, err)
			assert.Equal(t, "newcomer", user.ID)
			assert.Equal(t, tt.wantName, user.DisplayName)
			assert.Equal(t, tt.wantEmail, user.Email)

			stored, err := f.users.GetByID(context.Background(), "newcomer")
			require.NoError(t, err, "provisioned user is persisted")
			assert.Equal(t, tt.wantName, stored.DisplayName)
		})
	}
}

func TestResolver_ReturnsExistingUser(t *testing.T) {
	f := newResolverFixture(t)
	existing := testutils.MustInsertUser(t, f.db, "veteran")

	claims := testutils.Claims("veteran", f.now)
	claims["name"] = "A New Name"
	user, err := f.resolver.Resolve(context.Background(), f.signer.Sign(t, claims))
	require.NoError(t, err)
	assert.Equal(t, existing.DisplayName, user.DisplayName, "profile claims do not overwrite stored users")

	again, err := f.resolver.Resolve(context.Background(), f.signer.Sign(t, claims))
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestResolver_LosesProvisioningRace(t *testing.T) {
	vf := newVerifierFixture(t, 0)
	db := testutils.NewTestDB(t)
	winner := testutils.MustInsertUser(t, db, "contested")
	sqlUsers := testutils.NewTestStores(db).Users

	// The first lookup misses, as if a concurrent request created the user
	// between the lookup and the insert.
	lookups := 0
	users := &mocks.MockUserStore{
		GetByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			lookups++
			if lookups == 1 {
				return nil, store.ErrUserNotFound
			}
			return sqlUsers.GetByID(ctx, id)
		},
		CreateFn: sqlUsers.Create,
	}
	resolver, err := auth.NewResolver(vf.verifier, users, nil)
	require.NoError(t, err)

	user, err := resolver.Resolve(context.Background(), vf.signer.Sign(t, testutils.Claims("contested", vf.now)))
	require.NoError(t, err)
	assert.Equal(t, winner.ID, user.ID)
	assert.Equal(t, winner.DisplayName, user.DisplayName)
	assert.Equal(t, 2, lookups)
}

func TestResolver_StoreFailures(t *testing.T) {
	dbErr := store.NewStoreError(domain.ResourceUser, "get", "database operation failed",
		errors.New("connection refused"))

	tests := []struct {
		name        string
		lookupErr   error
		createErr   error
		wantCreates int
	}{
		{name: "lookup fails", lookupErr: dbErr, wantCreates: 0},
		{name: "insert fails", lookupErr: store.ErrUserNotFound, createErr: dbErr, wantCreates: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vf := newVerifierFixture(t, 0)
			creates := 0
			users := &mocks.MockUserStore{
				GetByIDFn: func(context.Context, string) (*domain.User, error) {
					return nil, tt.lookupErr
				},
				CreateFn: func(context.Context, *domain.User) error {
					creates++
					return tt.createErr
				},
			}
			resolver, err := auth.NewResolver(vf.verifier, users, testutils.DiscardLogger())
			require.NoError(t, err)

			user, err := resolver.Resolve(context.Background(), vf.signer.Sign(t, testutils.Claims("user-1", vf.now)))
			assert.Nil(t, user)
			assert.ErrorIs(t, err, store.ErrStoreFailure)
			assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
			assert.Equal(t, tt.wantCreates, creates)
		})
	}
}

func TestResolver_EmailOwnedByAnotherSubject(t *testing.T) {
	f := newResolverFixture(t)
	testutils.MustInsertUser(t, f.db, "original")

	claims := testutils.Claims("newcomer", f.now)
	claims["email"] = "original@example.com"
	_, err := f.resolver.Resolve(context.Background(), f.signer.Sign(t, claims))

	var dup *domain.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.users.GetByID(context.Background(), "newcomer")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestResolver_PropagatesVerificationErrors(t *testing.T) {
	f := newResolverFixture(t)

	expired := f.signer.Sign(t, testutils.Claims("late", f.now.Add(-3*time.Hour)))
	_, err := f.resolver.Resolve(context.Background(), expired)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	_, err = f.users.GetByID(context.Background(), "late")
	assert.ErrorIs(t, err, store.ErrUserNotFound, "rejected tokens never provision")
}

func TestResolver_KeySetUnavailable(t *testing.T) {
	f := newResolverFixture(t)
	f.source.SetError(errors.New("dial tcp: i/o timeout"))

	_, err := f.resolver.Resolve(context.Background(), f.signer.Sign(t, testutils.Claims("user-1", f.now)))
	assert.ErrorIs(t, err, auth.ErrKeySetUnavailable)
	assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestNewResolver_RequiresDependencies(t *testing.T) {
	f := newVerifierFixture(t, 0)

	_, err := auth.NewResolver(nil, &mocks.MockUserStore{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = auth.NewResolver(f.verifier, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
