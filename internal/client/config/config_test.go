package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"client"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	require.Equal(t, "http://127.0.0.1:8000", cfg.ServiceURL)
	require.Equal(t, "mindspend.db", cfg.CacheDBPath)
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_RequiresServiceKey(t *testing.T) {
	resetArgs(t)
	_, err := LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "service key")
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	resetArgs(t)
	t.Setenv("MINDSPEND_SERVICE_KEY", "anon-key")
	t.Setenv("MINDSPEND_SERVICE_URL", "https://proj.example.co")
	t.Setenv("MINDSPEND_HTTP_TIMEOUT", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "anon-key", cfg.ServiceKey)
	require.Equal(t, "https://proj.example.co", cfg.ServiceURL)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestLoadConfig_JsonLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"service_url": "https://json.example.co",
		"service_key": "json-key",
		"http_timeout": "20s"
	}`), 0o600))

	resetArgs(t, "-c", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://json.example.co", cfg.ServiceURL)
	require.Equal(t, "json-key", cfg.ServiceKey)
	require.Equal(t, 20*time.Second, cfg.HTTPTimeout)
	// Fields absent from the file keep their defaults.
	require.Equal(t, "mindspend.db", cfg.CacheDBPath)
}

func TestLoadConfig_FlagsWinOverEnv(t *testing.T) {
	resetArgs(t, "-s", "https://flag.example.co", "-t", "5")
	t.Setenv("MINDSPEND_SERVICE_KEY", "anon-key")
	t.Setenv("MINDSPEND_SERVICE_URL", "https://env.example.co")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://flag.example.co", cfg.ServiceURL)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}
