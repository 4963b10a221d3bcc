package soulauth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher performs the one-way password transform for local accounts.
// bcrypt embeds a random salt, so hashing the same plaintext twice
// yields different tokens that both verify, and raising Cost makes
// offline guessing proportionally more expensive.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher at bcrypt's default cost.
func NewHasher() *Hasher {
	return &Hasher{Cost: bcrypt.DefaultCost}
}

func (h *Hasher) cost() int {
	if h.Cost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	return h.Cost
}

// Hash derives a salted hash token from plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), nil
}

// Verify reports whether plaintext produced hashToken. The comparison
// over the derived digest is constant time.
func (h *Hasher) Verify(plaintext, hashToken string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashToken), []byte(plaintext)) == nil
}
