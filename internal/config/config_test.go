package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("DATAVAULT_HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7300", cfg.ListenAddr)
	assert.Equal(t, home, cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, int64(16<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 5, cfg.Keygen.PerMinute)
	assert.Equal(t, "ijaxt-data-export", cfg.Export.FilePrefix)
	assert.Equal(t, "http://127.0.0.1:7300", cfg.ServerURL)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.File)
}

func TestLoadHomeConfigFile(t *testing.T) {
	home := isolate(t)
	yaml := "listen_addr: 0.0.0.0:9000\nstore:\n  backend: badger\n  timeout: 2s\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, "badger", cfg.Store.Backend)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.File)
}

func TestLoadExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  file_prefix: nightly\nserver_url: http://vault:7300/\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nightly", cfg.Export.FilePrefix)
	assert.Equal(t, "http://vault:7300", cfg.ServerURL)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("store:\n  backend: badger\n"), 0o600))
	t.Setenv("DATAVAULT_STORE_BACKEND", "memory")
	t.Setenv("DATAVAULT_API_KEY", "ijaxt_abc")
	t.Setenv("DATAVAULT_KEYGEN_PER_MINUTE", "12")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "ijaxt_abc", cfg.APIKey)
	assert.Equal(t, 12, cfg.Keygen.PerMinute)
}

func TestLoadExpandsTilde(t *testing.T) {
	isolate(t)
	t.Setenv("DATAVAULT_DATA_DIR", "~/vault-data")
	userHome, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(userHome, "vault-data"), cfg.DataDir)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string][2]string{
		"backend":    {"DATAVAULT_STORE_BACKEND", "redis"},
		"timeout":    {"DATAVAULT_STORE_TIMEOUT", "0s"},
		"body":       {"DATAVAULT_HTTP_MAX_BODY_BYTES", "0"},
		"keygen":     {"DATAVAULT_KEYGEN_PER_MINUTE", "0"},
		"log level":  {"DATAVAULT_LOG_LEVEL", "loud"},
		"log format": {"DATAVAULT_LOG_FORMAT", "xml"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load("")
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoggerFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}
