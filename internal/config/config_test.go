package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/lumina/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LUMINA_ENV", "LUMINA_STORAGE", "LUMINA_DATA_DIR", "GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadFile_FirstRunWritesTemplate(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBackend, cfg.Storage.Backend)
	assert.Equal(t, config.DefaultModel, cfg.Gemini.Model)
	assert.Equal(t, config.DefaultServeAddr, cfg.Serve.Addr)

	_, err = os.Stat(path)
	require.NoError(t, err, "template should be written on first run")

	// The written template must parse back to the same defaults.
	again, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFile_PartialFileGetsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	content := `// my settings
{
  // only storage
  "storage": {"backend": "sqlite"},
  "expenses": {"default_currency": "EUR"}
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "EUR", cfg.Expenses.DefaultCurrency)
	assert.Equal(t, config.DefaultDateLayout, cfg.Expenses.DateLayout)
	assert.Equal(t, config.DefaultEnv, cfg.Env)
	assert.Equal(t, config.DefaultProbeTimeout, cfg.Connectivity.Timeout())
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{ nope"), 0o600))

	cfg, err := config.LoadFile(path)
	assert.Error(t, err)
	assert.Equal(t, config.DefaultBackend, cfg.Storage.Backend, "defaults are still returned")
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg config.Config)
	}{
		{
			name: "storage and env",
			env:  map[string]string{"LUMINA_STORAGE": "memory", "LUMINA_ENV": "production", "LUMINA_DATA_DIR": "/tmp/trip"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "memory", cfg.Storage.Backend)
				assert.Equal(t, "production", cfg.Env)
				assert.Equal(t, "/tmp/trip", cfg.Storage.Dir)
			},
		},
		{
			name: "gemini key",
			env:  map[string]string{"GEMINI_API_KEY": "k1", "API_KEY": "k2"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "k1", cfg.Gemini.APIKey)
			},
		},
		{
			name: "legacy key",
			env:  map[string]string{"API_KEY": "k2"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "k2", cfg.Gemini.APIKey)
			},
		},
		{
			name: "model",
			env:  map[string]string{"GEMINI_MODEL": "gemini-2.5-pro"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "config.json"))
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConnectivityTimeout(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, config.ConnectivityConfig{ProbeTimeout: "500ms"}.Timeout())
	assert.Equal(t, config.DefaultProbeTimeout, config.ConnectivityConfig{ProbeTimeout: "soon"}.Timeout())
	assert.Equal(t, config.DefaultProbeTimeout, config.ConnectivityConfig{ProbeTimeout: "-1s"}.Timeout())
}

func TestOAuthEnabled(t *testing.T) {
	assert.False(t, config.OAuthConfig{ClientID: "id"}.Enabled())
	assert.True(t, config.OAuthConfig{ClientID: "id", ClientSecret: "s"}.Enabled())
}
