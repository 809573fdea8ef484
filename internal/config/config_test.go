// internal/config/config_test.go
package config

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, 1080, cfg.Browser.ViewportHeight)
	assert.Equal(t, 90*time.Second, cfg.Network.NavigationTimeout)
	assert.Equal(t, 60*time.Second, cfg.Network.LoginTimeout)
	assert.True(t, cfg.Humanoid.Enabled)
	assert.Equal(t, 3, cfg.Humanoid.MinScrolls)
	assert.Equal(t, 6, cfg.Humanoid.MaxScrolls)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 256, cfg.Cache.MaxEntries)
	assert.Equal(t, "https://www.linkedin.com/login", cfg.Linkedin.LoginURL)

	require.NoError(t, cfg.Validate())
}

func TestNewFromViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set("server.addr", ":9999")
	v.Set("browser.headless", false)
	v.Set("humanoid.enabled", false)

	cfg, err := NewFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.False(t, cfg.Browser.Headless)
	assert.False(t, cfg.Humanoid.Enabled)
	// Untouched keys keep their defaults.
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestNewFromViperCredentialsFromEnv(t *testing.T) {
	t.Setenv("LINKEDIN_EMAIL", "user@example.com")
	t.Setenv("LINKEDIN_PASSWORD", "hunter2")
	t.Setenv("PROSPECTOR_API_KEY", "key-from-env")

	cfg, err := NewFromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", cfg.Linkedin.Email)
	assert.Equal(t, "hunter2", cfg.Linkedin.Password)
	assert.Equal(t, "key-from-env", cfg.Server.APIKey)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero viewport", func(c *Config) { c.Browser.ViewportWidth = 0 }},
		{"zero navigation timeout", func(c *Config) { c.Network.NavigationTimeout = 0 }},
		{"zero login timeout", func(c *Config) { c.Network.LoginTimeout = 0 }},
		{"inverted scroll bounds", func(c *Config) { c.Humanoid.MinScrolls = 9; c.Humanoid.MaxScrolls = 2 }},
		{"inverted delays", func(c *Config) { c.Humanoid.MaxActionDelay = time.Millisecond; c.Humanoid.MinActionDelay = time.Second }},
		{"pointer chance out of range", func(c *Config) { c.Humanoid.PointerMoveChance = 1.5 }},
		{"non-positive cache", func(c *Config) { c.Cache.MaxEntries = 0 }},
		{"relative login url", func(c *Config) { c.Linkedin.LoginURL = "/login" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefault()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigContextRoundTrip(t *testing.T) {
	cfg := NewDefault()
	cfg.Server.Addr = ":7070"

	ctx := IntoContext(context.Background(), cfg)
	got := FromContext(ctx)
	assert.Same(t, cfg, got)

	// Absent config falls back to defaults instead of nil.
	fallback := FromContext(context.Background())
	require.NotNil(t, fallback)
	assert.Equal(t, ":8080", fallback.Server.Addr)
}
