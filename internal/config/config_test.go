package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envValue string
		want     string
	}{
		{"flag takes precedence", "/path/from/flag", "/path/from/env", "/path/from/flag"},
		{"env when no flag", "", "/path/from/env", "/path/from/env"},
		{"empty when neither", "", "", ""},
		{"whitespace flag", "  ", "/path/from/env", "/path/from/env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ROOTDNS_CONFIG", tt.envValue)
			got := ResolveConfigPath(tt.flag)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8053, cfg.Server.Port)
	assert.Equal(t, "198.41.0.4", cfg.Resolver.RootServer)
	assert.Equal(t, 16, cfg.Resolver.MaxSteps)
	assert.Equal(t, 4, cfg.Resolver.GlueDepth)
	assert.Equal(t, "2s", cfg.Resolver.UpstreamTimeout)
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 5353

resolver:
  root_server: "192.203.230.10"
  max_steps: 8
  upstream_timeout: "500ms"

logging:
  level: "DEBUG"
  structured: true

admin:
  enabled: true
  port: 9090
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 5353, cfg.Server.Port)
	assert.Equal(t, "192.203.230.10", cfg.Resolver.RootServer)
	assert.Equal(t, 8, cfg.Resolver.MaxSteps)
	assert.Equal(t, "500ms", cfg.Resolver.UpstreamTimeout)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Structured)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, 9090, cfg.Admin.Port)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: [invalid"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeInvalidPort(t *testing.T) {
	content := `
server:
  port: 0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeInvalidAdminPort(t *testing.T) {
	content := `
admin:
  enabled: true
  port: 0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeDefaultsZeroSteps(t *testing.T) {
	content := `
resolver:
  max_steps: 0
  glue_depth: 0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Resolver.MaxSteps)
	assert.Equal(t, 4, cfg.Resolver.GlueDepth)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROOTDNS_SERVER_HOST", "192.168.1.1")
	t.Setenv("ROOTDNS_SERVER_PORT", "8053")
	t.Setenv("ROOTDNS_RESOLVER_ROOT_SERVER", "199.9.14.201")
	t.Setenv("ROOTDNS_RESOLVER_MAX_STEPS", "12")
	t.Setenv("ROOTDNS_LOGGING_LEVEL", "debug")
	t.Setenv("ROOTDNS_ADMIN_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1", cfg.Server.Host)
	assert.Equal(t, 8053, cfg.Server.Port)
	assert.Equal(t, "199.9.14.201", cfg.Resolver.RootServer)
	assert.Equal(t, 12, cfg.Resolver.MaxSteps)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.True(t, cfg.Admin.Enabled)
}
