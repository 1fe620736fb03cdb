package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "Animerch", cfg.System.Appname)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "0.0.0.0:1816", cfg.GetWebAddr())
}

func TestLoadConfigFromFile(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "animerch.yml")
	require.NoError(t, os.WriteFile(cfile, []byte(`
system:
  appname: AnimerchTest
  workdir: /tmp/animerch-test
web:
  host: 127.0.0.1
  port: 9090
jwt:
  secret: file-secret
  expire_min: 15
`), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, "AnimerchTest", cfg.System.Appname)
	assert.Equal(t, "127.0.0.1:9090", cfg.GetWebAddr())
	assert.Equal(t, "file-secret", cfg.Jwt.Secret)
	assert.Equal(t, 15, cfg.Jwt.ExpireMin)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANIMERCH_WEB_PORT", "7070")
	t.Setenv("ANIMERCH_JWT_SECRET", "env-secret")
	t.Setenv("ANIMERCH_DB_DEBUG", "true")

	cfg := LoadConfig("")
	assert.Equal(t, 7070, cfg.Web.Port)
	assert.Equal(t, "env-secret", cfg.Jwt.Secret)
	assert.True(t, cfg.Database.Debug)

	// Missing file falls back to defaults before overrides.
	cfg = LoadConfig("/nonexistent/animerch.yml")
	assert.Equal(t, 7070, cfg.Web.Port)
}
