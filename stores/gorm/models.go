package gorm

import (
	"time"

	soulauth "github.com/rishav-raunak/SearchImage-unplace"
)

// UserModel is the GORM model for the users table. Provider id columns
// are pointers so that unlinked providers store NULL and stay out of
// the unique indexes.
type UserModel struct {
	ID           string    `gorm:"primaryKey;size:64"`
	Name         string    `gorm:"size:255;not null"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash *string   `gorm:"size:128"`
	GoogleID     *string   `gorm:"size:64;uniqueIndex"`
	GithubID     *string   `gorm:"size:64;uniqueIndex"`
	FacebookID   *string   `gorm:"size:64;uniqueIndex"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToUser() *soulauth.User {
	return &soulauth.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: deref(m.PasswordHash),
		GoogleID:     deref(m.GoogleID),
		GithubID:     deref(m.GithubID),
		FacebookID:   deref(m.FacebookID),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func UserToModel(u *soulauth.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: optional(u.PasswordHash),
		GoogleID:     optional(u.GoogleID),
		GithubID:     optional(u.GithubID),
		FacebookID:   optional(u.FacebookID),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional maps "" to NULL so empty fields stay out of the sparse
// unique indexes.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
