package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.StateDir)
	assert.Equal(t, 30*time.Second, cfg.Remote.TimeoutDuration())
	assert.Equal(t, "coordinator", cfg.Sync.FallbackAssignee)
	assert.Equal(t, "admin", cfg.Sync.FallbackAdmin)
	assert.Empty(t, cfg.Redis.Addr, "redis transport is off by default")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fieldops.yaml")
	content := `
state_dir: /var/lib/fieldops
remote:
  base_url: https://ops.example.org
  timeout: 10s
sync:
  fallback_admin: jefe
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/fieldops", cfg.StateDir)
	assert.Equal(t, "https://ops.example.org", cfg.Remote.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Remote.TimeoutDuration())
	assert.Equal(t, "jefe", cfg.Sync.FallbackAdmin)
	assert.Equal(t, "coordinator", cfg.Sync.FallbackAssignee, "unset keys keep defaults")
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Remote.BaseURL, cfg.Remote.BaseURL)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote: ["), 0644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FIELDOPS_STATE_DIR", "/tmp/elsewhere")
	t.Setenv("FIELDOPS_REMOTE_URL", "http://env.example:9000")
	t.Setenv("FIELDOPS_REDIS_ADDR", "redis:6379")
	t.Setenv("GEMINI_API_KEY", "k-123")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere", cfg.StateDir)
	assert.Equal(t, "http://env.example:9000", cfg.Remote.BaseURL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "k-123", cfg.Summary.APIKey)
}
