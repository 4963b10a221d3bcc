// Package gorm is the production UserStore, backed by a relational
// database through GORM. The unique indexes on email and the three
// provider id columns are what give CreateUser its insert-if-absent
// semantics: a losing racer gets a duplicate-key error translated to
// the store sentinels, which the resolver retries as a linking attempt.
package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	soulauth "github.com/rishav-raunak/SearchImage-unplace"
)

// UserStore implements soulauth.UserStore on a *gorm.DB. The DB must
// be opened with a translating driver (the postgres driver is) so
// duplicate-key violations surface as gorm.ErrDuplicatedKey.
type UserStore struct {
	db *gorm.DB
}

var _ soulauth.UserStore = (*UserStore)(nil)

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// AutoMigrate creates the users table and its unique indexes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{})
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*soulauth.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*soulauth.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *UserStore) GetUserByProviderID(ctx context.Context, p soulauth.Provider, providerID string) (*soulauth.User, error) {
	column, err := providerColumn(p)
	if err != nil {
		return nil, err
	}
	return s.first(ctx, column+" = ?", providerID)
}

func (s *UserStore) first(ctx context.Context, query string, args ...any) (*soulauth.User, error) {
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, append([]any{query}, args...)...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, soulauth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *soulauth.User) error {
	user.ID = uuid.NewString()
	model := UserToModel(user)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		user.ID = ""
		return s.translateDuplicate(ctx, err, user)
	}
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func (s *UserStore) SaveUser(ctx context.Context, user *soulauth.User) error {
	if user.ID == "" {
		return soulauth.ErrUserNotFound
	}
	err := s.db.WithContext(ctx).Save(UserToModel(user)).Error
	if err != nil {
		return s.translateDuplicate(ctx, err, user)
	}
	return nil
}

// translateDuplicate decides which unique index rejected the write.
// The driver reports a bare duplicate-key error; re-querying by email
// tells the email index apart from the provider ones.
func (s *UserStore) translateDuplicate(ctx context.Context, err error, user *soulauth.User) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	var count int64
	lookupErr := s.db.WithContext(ctx).Model(&UserModel{}).
		Where("email = ? AND id <> ?", user.Email, user.ID).
		Count(&count).Error
	if lookupErr == nil && count > 0 {
		return soulauth.ErrDuplicateEmail
	}
	return soulauth.ErrDuplicateProviderID
}

func providerColumn(p soulauth.Provider) (string, error) {
	switch p {
	case soulauth.ProviderGoogle:
		return "google_id", nil
	case soulauth.ProviderGithub:
		return "github_id", nil
	case soulauth.ProviderFacebook:
		return "facebook_id", nil
	}
	return "", fmt.Errorf("unknown provider %q", p)
}
