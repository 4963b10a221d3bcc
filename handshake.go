package soulauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultStateMaxAge bounds how long an OAuth handshake may take
// between the redirect to the provider and the callback.
const DefaultStateMaxAge = 10 * time.Minute

var (
	ErrStateInvalid = errors.New("oauth state invalid")
	ErrStateExpired = errors.New("oauth state expired")
)

// StateCodec issues and verifies the signed nonce that survives the
// multi-redirect OAuth handshake. The nonce is the only server-side
// session-like state in the system; everything after login rides on
// the bearer token.
//
// Format: base64(nonce).issuedAtUnix.base64(hmac-sha256(nonce.issuedAt)).
type StateCodec struct {
	Secret []byte
	MaxAge time.Duration

	Now func() time.Time
}

func (c *StateCodec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *StateCodec) maxAge() time.Duration {
	if c.MaxAge <= 0 {
		return DefaultStateMaxAge
	}
	return c.MaxAge
}

// Issue creates a fresh signed state value.
func (c *StateCodec) Issue() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate state nonce: %w", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(nonce) + "." +
		strconv.FormatInt(c.now().Unix(), 10)
	return payload + "." + c.sign(payload), nil
}

// Verify checks the signature and age of a state value.
func (c *StateCodec) Verify(state string) error {
	idx := strings.LastIndexByte(state, '.')
	if idx <= 0 {
		return ErrStateInvalid
	}
	payload, sig := state[:idx], state[idx+1:]
	if !hmac.Equal([]byte(c.sign(payload)), []byte(sig)) {
		return ErrStateInvalid
	}
	parts := strings.Split(payload, ".")
	if len(parts) != 2 {
		return ErrStateInvalid
	}
	issuedAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrStateInvalid
	}
	age := c.now().Sub(time.Unix(issuedAt, 0))
	if age < 0 || age > c.maxAge() {
		return ErrStateExpired
	}
	return nil
}

func (c *StateCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.Secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
