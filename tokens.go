package soulauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is the absolute lifetime of an issued bearer token.
// There is no revocation: a token stays valid for the full window
// regardless of subsequent account changes.
const TokenValidity = 7 * 24 * time.Hour

// Issuer creates and verifies signed bearer tokens bound to a user id.
// The signing key is process-wide configuration, loaded once at
// startup; the same key verifies what it issued.
type Issuer struct {
	Name     string
	Secret   []byte
	Validity time.Duration

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewIssuer returns an Issuer with the 7-day default validity.
func NewIssuer(name string, secret []byte) *Issuer {
	return &Issuer{Name: name, Secret: secret, Validity: TokenValidity}
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) validity() time.Duration {
	if i.Validity <= 0 {
		return TokenValidity
	}
	return i.Validity
}

// Issue signs a token asserting subjectID, expiring Validity from now.
func (i *Issuer) Issue(subjectID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subjectID,
		Issuer:    i.Name,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.validity())),
	})
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates tokenString, returning the subject id.
// Expired or tampered tokens fail.
func (i *Issuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) { return i.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}
