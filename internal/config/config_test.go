package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Default Values", func(t *testing.T) {
		cfg, err := LoadConfig()
		assert.NoError(t, err)
		assert.Equal(t, "local", cfg.AppEnv)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 600, cfg.ResetTokenTTL)
		assert.Equal(t, 25, cfg.PostsPerPage)
		assert.Equal(t, "uksouth", cfg.TranslatorRegion)
		assert.Empty(t, cfg.TrustedProxyList())
		assert.False(t, cfg.BehindCloudflare)
	})

	t.Run("Environment Variables", func(t *testing.T) {
		os.Setenv("PORT", "9999")
		os.Setenv("RESET_TOKEN_TTL", "60")
		defer os.Unsetenv("PORT")
		defer os.Unsetenv("RESET_TOKEN_TTL")

		cfg, err := LoadConfig()
		assert.NoError(t, err)
		assert.Equal(t, "9999", cfg.Port)
		assert.Equal(t, 60, cfg.ResetTokenTTL)
	})

	t.Run("Session secret falls back to secret key", func(t *testing.T) {
		os.Setenv("SECRET_KEY", "top-secret")
		defer os.Unsetenv("SECRET_KEY")

		cfg, err := LoadConfig()
		assert.NoError(t, err)
		assert.Equal(t, "top-secret", cfg.SessionSecret)
	})
}

func TestLanguageList(t *testing.T) {
	assert.Equal(t, []string{"en", "es"}, Config{Languages: " en , es,"}.LanguageList())
	assert.Equal(t, []string{"en"}, Config{}.LanguageList())
}

func TestAdminList(t *testing.T) {
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, Config{Admins: "a@x.io, b@x.io"}.AdminList())
	assert.Empty(t, Config{}.AdminList())
}

func TestTrustedProxyList(t *testing.T) {
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, Config{TrustedProxies: "10.0.0.0/8, 192.168.1.1"}.TrustedProxyList())
	assert.Empty(t, Config{}.TrustedProxyList())
}
