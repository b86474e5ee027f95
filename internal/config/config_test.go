package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/horizon")
	t.Setenv("PLAID_CLIENT_ID", "cid")
	t.Setenv("PLAID_SECRET", "ps")
	t.Setenv("DWOLLA_KEY", "dk")
	t.Setenv("DWOLLA_SECRET", "ds")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sandbox", cfg.PlaidEnv)
	assert.Equal(t, "https://api-sandbox.dwolla.com", cfg.DwollaBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestGetEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9999")

	assert.Equal(t, "9999", getEnv("PORT", "8080"))
	assert.Equal(t, "fallback", getEnv("PORT_MISSING", "fallback"))
}
