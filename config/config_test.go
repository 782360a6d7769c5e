package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9000
  read_timeout: 3s
log:
  level: debug
  format: console
model:
  path: /opt/diapredict/model.json
  watch: true
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Http.Port)
	assert.Equal(t, 3*time.Second, cfg.Http.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Http.WriteTimeout)
	assert.Equal(t, "0.0.0.0", cfg.Http.Host)
	assert.Equal(t, []string{"*"}, cfg.Http.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Model.Watch)
	assert.True(t, cfg.Metrics.Enabled)

	modelPath, err := cfg.ModelPath()
	require.NoError(t, err)
	assert.Equal(t, "/opt/diapredict/model.json", modelPath)
}

func TestLoadFileRejectsBadPort(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 70000\n")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "http: [port\n")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 9000\nmodel:\n  path: a.json\n")
	t.Setenv(configPathEnv, path)
	t.Setenv(portEnv, "9100")
	t.Setenv(hostEnv, "127.0.0.1")
	t.Setenv(modelPathEnv, "b.json")
	t.Setenv(logLevelEnv, "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Http.Port)
	assert.Equal(t, "127.0.0.1:9100", cfg.Addr())
	assert.Equal(t, "b.json", cfg.Model.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)
	t.Setenv(configPathEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Http.Port)
	assert.Equal(t, "model.json", cfg.Model.Path)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFileEmpty(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadBadPortEnv(t *testing.T) {
	t.Setenv(configPathEnv, writeConfig(t, "{}\n"))
	t.Setenv(portEnv, "eighty")
	_, err := Load()
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv/app", "model.json"), ResolvePath("/srv/app", "model.json"))
	assert.Equal(t, "/data/model.json", ResolvePath("/srv/app", "/data/model.json"))

	cfg := Default()
	path, err := cfg.ModelPath()
	require.NoError(t, err)
	dir, err := ExecutableDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model.json"), path)
}
