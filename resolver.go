package soulauth

import (
	"context"
	"errors"
	"fmt"
)

// Profile is the normalized shape of a federated provider's account
// data, as produced by the oauth2 package. Only ID is guaranteed;
// providers differ on the rest.
type Profile struct {
	// ID is the provider-issued account identifier.
	ID string

	// DisplayName is the human name, when the provider supplies one.
	DisplayName string

	// Username is a provider-level handle (GitHub login). Used as a
	// display-name fallback.
	Username string

	// Emails holds the addresses the provider granted, most-preferred
	// first. Empty when the user declined the email scope.
	Emails []string
}

func (p *Profile) primaryEmail() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return p.Emails[0]
}

func (p *Profile) displayName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// Resolver maps a federated profile onto the canonical User record,
// creating or linking as needed.
type Resolver struct {
	Users UserStore
}

// Resolve finds or creates the User for a provider profile. First
// match wins:
//
//  1. A user already linked to (provider, profile.ID) is returned
//     unchanged.
//  2. A user with the profile's email gets the provider id linked and
//     an empty name backfilled. A profile without any email fails
//     with ErrMissingEmail before this lookup.
//  3. Otherwise a fresh user is created from the profile.
//
// Steps are not atomic as a whole; when two first logins race on the
// same new email the store's unique constraint rejects the second
// create, which is retried once as a linking attempt.
func (r *Resolver) Resolve(ctx context.Context, kind Provider, profile *Profile) (*User, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown provider %q", kind)
	}
	if profile == nil || profile.ID == "" {
		return nil, fmt.Errorf("profile has no provider id")
	}

	if user, err := r.Users.GetUserByProviderID(ctx, kind, profile.ID); err == nil {
		return user, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	email := profile.primaryEmail()
	if email == "" {
		return nil, ErrMissingEmail
	}

	user, err := r.Users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return r.link(ctx, user, kind, profile)
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	fresh := &User{
		Name:  profile.displayName(),
		Email: email,
	}
	if err := fresh.SetProviderID(kind, profile.ID); err != nil {
		return nil, err
	}
	err = r.Users.CreateUser(ctx, fresh)
	if err == nil {
		return fresh, nil
	}
	if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateProviderID) {
		// Lost a create race; whoever won holds our email now.
		user, lookupErr := r.Users.GetUserByEmail(ctx, email)
		if lookupErr != nil {
			return nil, err
		}
		return r.link(ctx, user, kind, profile)
	}
	return nil, err
}

// link attaches the provider id to an existing user, backfilling the
// name only when empty. Persists only when something changed.
func (r *Resolver) link(ctx context.Context, user *User, kind Provider, profile *Profile) (*User, error) {
	existing := user.ProviderID(kind)
	if existing == profile.ID {
		return user, nil
	}
	if existing != "" {
		// Same email, but the account is already tied to a different
		// identity on this provider.
		return nil, ErrProviderConflict
	}

	if err := user.SetProviderID(kind, profile.ID); err != nil {
		return nil, err
	}
	if user.Name == "" {
		user.Name = profile.displayName()
	}
	if err := r.Users.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
