package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAuthRequiresSecret(t *testing.T) {
	t.Setenv("LEADFLOW_JWT_SECRET", "")
	_, err := LoadAuth()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEADFLOW_JWT_SECRET")
}

func TestLoadAuthDefaults(t *testing.T) {
	t.Setenv("LEADFLOW_JWT_SECRET", "secret")

	cfg, err := LoadAuth()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:4001", cfg.Server.Addr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "http://127.0.0.1:4002", cfg.DirectoryURL)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadAuthOverrides(t *testing.T) {
	t.Setenv("LEADFLOW_JWT_SECRET", "secret")
	t.Setenv("PORT", "9001")
	t.Setenv("LEADFLOW_TOKEN_TTL", "30m")
	t.Setenv("LEADFLOW_DIRECTORY_URL", "http://users.internal:8080")
	t.Setenv("LEADFLOW_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := LoadAuth()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9001", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "http://users.internal:8080", cfg.DirectoryURL)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoadUserRequiresDatabase(t *testing.T) {
	t.Setenv("LEADFLOW_JWT_SECRET", "secret")
	t.Setenv("LEADFLOW_DATABASE_URL", "")

	_, err := LoadUser()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEADFLOW_DATABASE_URL")
}

func TestLoadUserDefaults(t *testing.T) {
	t.Setenv("LEADFLOW_JWT_SECRET", "secret")
	t.Setenv("LEADFLOW_DATABASE_URL", "postgres://localhost/leadflow?sslmode=disable")

	cfg, err := LoadUser()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:4002", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Database.MaxConns)
}

func TestLoadLeadDefaults(t *testing.T) {
	t.Setenv("LEADFLOW_JWT_SECRET", "secret")
	t.Setenv("LEADFLOW_DATABASE_URL", "postgres://localhost/leadflow?sslmode=disable")

	cfg, err := LoadLead()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:4003", cfg.Server.Addr)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.StageCacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.StaleAfter)
}

func TestGetEnvDurationIgnoresGarbage(t *testing.T) {
	t.Setenv("LEADFLOW_SWEEP_INTERVAL", "not-a-duration")
	t.Setenv("LEADFLOW_JWT_SECRET", "secret")
	t.Setenv("LEADFLOW_DATABASE_URL", "postgres://localhost/leadflow")

	cfg, err := LoadLead()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
}
