package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(New(afero.NewMemMapFs()), "")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "lumina", cfg.DatabaseName)
	assert.Equal(t, 30, cfg.CacheTTLSeconds)
	assert.Equal(t, "communityposts", cfg.ESIndex)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadFileAndEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/lumina.yaml", []byte(`
port: 9000
database_url: mongodb://file:27017
redis_addr: localhost:6379
request_timeout: 3s
`), 0o644))

	t.Run("file values", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("DATABASE_URL", "")
		cfg, err := Load(New(fs), "/etc/lumina.yaml")
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, "mongodb://file:27017", cfg.DatabaseURL)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("PORT", "8123")
		t.Setenv("DATABASE_URL", "mongodb://env:27017")
		cfg, err := Load(New(fs), "/etc/lumina.yaml")
		require.NoError(t, err)
		assert.Equal(t, 8123, cfg.Port)
		assert.Equal(t, "mongodb://env:27017", cfg.DatabaseURL)
	})
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(New(afero.NewMemMapFs()), "/nope.yaml")
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("PORT", "70000")
		_, err := Load(New(afero.NewMemMapFs()), "")
		assert.ErrorContains(t, err, "invalid port")
	})

	t.Run("bad log format", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")
		_, err := Load(New(afero.NewMemMapFs()), "")
		assert.ErrorContains(t, err, "log_format")
	})
}
