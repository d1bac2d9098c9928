package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cinelight")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("API_PREFIX", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("CORS_ORIGIN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cinelight")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestDatabaseURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USERNAME", "rent")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_NAME", "cinelight")
	t.Setenv("DB_SSLMODE", "")

	assert.Equal(t, "postgres://rent:p%40ss@db:6543/cinelight?sslmode=disable", databaseURL())
}

func TestGetDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"90m": 90 * time.Minute,
		"30":  30 * time.Second,
		"1d":  24 * time.Hour,
		"7d":  7 * 24 * time.Hour,
		"bad": time.Hour,
	}
	for in, want := range tests {
		t.Setenv("TEST_TTL", in)
		assert.Equal(t, want, getDuration("TEST_TTL", time.Hour), in)
	}
}

func TestGetList(t *testing.T) {
	t.Setenv("TEST_ORIGINS", "https://a.example, https://b.example,,")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, getList("TEST_ORIGINS", nil))
}

func TestLoadDatabaseSkipsSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cinelight")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/cinelight", cfg.DatabaseURL)
}
