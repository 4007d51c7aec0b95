package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "registry.db", cfg.Database.Path)
	assert.Equal(t, "whatsapp", cfg.Notifier.Channel)
	assert.Equal(t, 10*time.Second, cfg.Notifier.SendTimeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 50.0, cfg.RateLimit.RPS)
	assert.Equal(t, 30*time.Second, cfg.Cache.DashboardTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("REGISTRY_SERVER_PORT", "9090")
	t.Setenv("REGISTRY_DATABASE_DRIVER", "postgres")
	t.Setenv("REGISTRY_NOTIFIER_CHANNEL", "smtp")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "smtp", cfg.Notifier.Channel)
}
