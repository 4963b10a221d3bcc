package soulauth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	soulauth "github.com/rishav-raunak/SearchImage-unplace"
	"github.com/rishav-raunak/SearchImage-unplace/stores"
)

// countingStore counts writes so tests can assert that repeated logins
// do not touch storage.
type countingStore struct {
	soulauth.UserStore
	creates int
	saves   int
}

func (s *countingStore) CreateUser(ctx context.Context, user *soulauth.User) error {
	s.creates++
	return s.UserStore.CreateUser(ctx, user)
}

func (s *countingStore) SaveUser(ctx context.Context, user *soulauth.User) error {
	s.saves++
	return s.UserStore.SaveUser(ctx, user)
}

func newResolver() (*soulauth.Resolver, *countingStore) {
	store := &countingStore{UserStore: stores.NewMemUserStore()}
	return &soulauth.Resolver{Users: store}, store
}

func googleProfile(id, email, name string) *soulauth.Profile {
	p := &soulauth.Profile{ID: id, DisplayName: name}
	if email != "" {
		p.Emails = []string{email}
	}
	return p
}

func TestResolveCreatesNewUser(t *testing.T) {
	resolver, store := newResolver()
	ctx := context.Background()

	user, err := resolver.Resolve(ctx, soulauth.ProviderGoogle, googleProfile("g1", "a@x.com", "Alice"))
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "g1", user.GoogleID)
	assert.False(t, user.HasPassword())
	assert.Equal(t, 1, store.creates)
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver, store := newResolver()
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, soulauth.ProviderGoogle, googleProfile("g1", "a@x.com", "Alice"))
	require.NoError(t, err)

	// Second login with the same profile must return the same user and
	// write nothing.
	second, err := resolver.Resolve(ctx, soulauth.ProviderGoogle, googleProfile("g1", "a@x.com", "Alice"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 0, store.saves)
}

func TestResolveLinksByEmail(t *testing.T) {
	resolver, store := newResolver()
	ctx := context.Background()

	seed := &soulauth.User{Name: "Alice", Email: "a@x.com", PasswordHash: "$2a$10$seed"}
	require.NoError(t, store.UserStore.CreateUser(ctx, seed))

	user, err := resolver.Resolve(ctx, soulauth.ProviderGithub, &soulauth.Profile{
		ID: "gh9", Username: "alice-gh", Emails: []string{"a@x.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, seed.ID, user.ID)
	assert.Equal(t, "gh9", user.GithubID)
	// Existing name is never overwritten by the provider's.
	assert.Equal(t, "Alice", user.Name)
	assert.True(t, user.HasPassword())

	// Subsequent github logins hit the provider-id index directly.
	again, err := resolver.Resolve(ctx, soulauth.ProviderGithub, &soulauth.Profile{
		ID: "gh9", Emails: []string{"a@x.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, seed.ID, again.ID)
	assert.Equal(t, 1, store.saves)
}

func TestResolveBackfillsEmptyName(t *testing.T) {
	resolver, store := newResolver()
	ctx := context.Background()

	seed := &soulauth.User{Email: "a@x.com", PasswordHash: "$2a$10$seed"}
	require.NoError(t, store.UserStore.CreateUser(ctx, seed))

	user, err := resolver.Resolve(ctx, soulauth.ProviderGoogle, googleProfile("g1", "a@x.com", "Alice"))
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
}

func TestResolveLinksAcrossProviders(t *testing.T) {
	resolver, _ := newResolver()
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, soulauth.ProviderGoogle, googleProfile("g1", "a@x.com", "Alice"))
	require.NoError(t, err)

	second, err := resolver.Resolve(ctx, soulauth.ProviderFacebook, &soulauth.Profile{
		ID: "fb3", DisplayName: "Alice F", Emails: []string{"a@x.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "g1", second.GoogleID)
	assert.Equal(t, "fb3", second.FacebookID)
	assert.Equal(t, "Alice", second.Name)
}

func TestResolveMissingEmail(t *testing.T) {
	resolver, store := newResolver()
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, soulauth.ProviderGithub, &soulauth.Profile{ID: "gh9"})
	assert.ErrorIs(t, err, soulauth.ErrMissingEmail)
	assert.Equal(t, 0, store.creates)
	assert.Equal(t, 0, store.saves)
}

func TestResolveProviderConflict(t *testing.T) {
	resolver, _ := newResolver()
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, soulauth.ProviderGoogle, googleProfile("g1", "a@x.com", "Alice"))
	require.NoError(t, err)

	// Same email arrives from a different google account.
	_, err = resolver.Resolve(ctx, soulauth.ProviderGoogle, googleProfile("g2", "a@x.com", "Impostor"))
	assert.ErrorIs(t, err, soulauth.ErrProviderConflict)
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	resolver, _ := newResolver()
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, soulauth.Provider("myspace"), googleProfile("g1", "a@x.com", ""))
	assert.Error(t, err)

	_, err = resolver.Resolve(ctx, soulauth.ProviderGoogle, &soulauth.Profile{Emails: []string{"a@x.com"}})
	assert.Error(t, err)

	_, err = resolver.Resolve(ctx, soulauth.ProviderGoogle, nil)
	assert.Error(t, err)
}

// racingStore makes the first CreateUser fail as if a concurrent
// request won, seeding the winner before reporting the duplicate.
type racingStore struct {
	soulauth.UserStore
	raced bool
}

func (s *racingStore) CreateUser(ctx context.Context, user *soulauth.User) error {
	if !s.raced {
		s.raced = true
		winner := &soulauth.User{Name: "Winner", Email: user.Email, GoogleID: "g-winner"}
		if err := s.UserStore.CreateUser(ctx, winner); err != nil {
			return err
		}
		return soulauth.ErrDuplicateEmail
	}
	return s.UserStore.CreateUser(ctx, user)
}

func TestResolveCreateRaceFallsBackToLink(t *testing.T) {
	store := &racingStore{UserStore: stores.NewMemUserStore()}
	resolver := &soulauth.Resolver{Users: store}
	ctx := context.Background()

	user, err := resolver.Resolve(ctx, soulauth.ProviderGithub, &soulauth.Profile{
		ID: "gh9", Username: "alice-gh", Emails: []string{"a@x.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Winner", user.Name)
	assert.Equal(t, "g-winner", user.GoogleID)
	assert.Equal(t, "gh9", user.GithubID)
}
