package soulauth

import (
	"context"
	"fmt"
	"time"
)

// Provider identifies one of the supported federated identity sources.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderGithub   Provider = "github"
	ProviderFacebook Provider = "facebook"
)

// Providers lists all supported federated providers.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderGithub, ProviderFacebook}
}

// Valid reports whether p names a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderGithub, ProviderFacebook:
		return true
	}
	return false
}

// User is the canonical identity record. Exactly one User exists per
// email. PasswordHash is empty for accounts that never registered
// locally; its presence is what gates local login. Each provider id is
// empty when unlinked and unique across users when set.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `json:"-"`
	GithubID     string    `json:"-"`
	FacebookID   string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// HasPassword reports whether the user can log in locally.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// ProviderID returns the stored id for the given provider, or "" when
// the provider is not linked.
func (u *User) ProviderID(p Provider) string {
	switch p {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderGithub:
		return u.GithubID
	case ProviderFacebook:
		return u.FacebookID
	}
	return ""
}

// SetProviderID stores the provider-issued id on its dedicated field.
func (u *User) SetProviderID(p Provider, id string) error {
	switch p {
	case ProviderGoogle:
		u.GoogleID = id
	case ProviderGithub:
		u.GithubID = id
	case ProviderFacebook:
		u.FacebookID = id
	default:
		return fmt.Errorf("unknown provider %q", p)
	}
	return nil
}

// UserStore is the abstract keyed record store for Users. Lookups
// return ErrUserNotFound when no record matches. CreateUser assigns
// the ID and must enforce uniqueness of email and of every populated
// provider id at write time, returning ErrDuplicateEmail or
// ErrDuplicateProviderID on violation; two concurrent creates for the
// same email must not both succeed.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByProviderID(ctx context.Context, p Provider, providerID string) (*User, error)

	CreateUser(ctx context.Context, user *User) error

	// SaveUser updates an existing user in place.
	SaveUser(ctx context.Context, user *User) error
}
