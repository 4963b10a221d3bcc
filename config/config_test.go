package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishav-raunak/SearchImage-unplace/config"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	t.Setenv("AUTH_STATE_SECRET", "state-secret")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("PROVIDERS_GOOGLE_CLIENT_ID", "gid")
	t.Setenv("PROVIDERS_GOOGLE_CLIENT_SECRET", "gsecret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.FrontendOrigin)
	assert.Equal(t, "jwt-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Providers.Google.Configured())
	assert.False(t, cfg.Providers.Github.Configured())
	assert.Equal(t, "/auth/google/callback", cfg.Providers.Google.CallbackURL)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_STATE_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestDatabaseDSN(t *testing.T) {
	var db config.DatabaseConfig
	assert.Empty(t, db.DSN())

	db.URL = "postgres://u:p@db:5432/soul"
	assert.Equal(t, "postgres://u:p@db:5432/soul", db.DSN())

	db = config.DatabaseConfig{
		Host: "db", Port: 5432, User: "soul", Password: "pw", Database: "soulapp",
	}
	assert.Equal(t, "postgres://soul:pw@db:5432/soulapp?sslmode=disable", db.DSN())
}

func TestValidatePortRange(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	t.Setenv("AUTH_STATE_SECRET", "state-secret")
	t.Setenv("SERVER_PORT", "99999")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
