package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 70.0, cfg.Compliance.PassThreshold)
	assert.Equal(t, 3, cfg.RateLimit.AnonymousBurst)
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9090"
auth:
  jwt_secret: "yaml-secret-value-long"
compliance:
  pass_threshold: 80
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 80.0, cfg.Compliance.PassThreshold)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Auth:       AuthConfig{JWTSecret: "short"},
		RateLimit:  RateLimitConfig{AnonymousBurst: 1, UserBurst: 1},
		Compliance: ComplianceConfig{PassThreshold: 70},
	}
	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "long-enough-secret-value"
	assert.NoError(t, cfg.Validate())

	cfg.Compliance.PassThreshold = 120
	assert.Error(t, cfg.Validate())
}
