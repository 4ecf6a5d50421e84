package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/scenechat/internal/session"
)

func TestDefault_MatchesSessionDefaults(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())
	assert.Equal(t, session.DefaultConfig(), d.Session.ToSession())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "scenechat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset:
  path: /srv/scenes.json
  watch: true
session:
  thinking_label: "생각중"
  min_loading: 1500ms
log:
  level: DEBUG
`), 0o644))
	t.Setenv("SCENECHAT_SERVER_HTTP_ADDR", ":9999")
	t.Setenv("SCENECHAT_SESSION_TYPE_INTERVAL", "20ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/scenes.json", cfg.Dataset.Path)
	assert.True(t, cfg.Dataset.Watch)
	assert.Equal(t, "생각중", cfg.Session.ThinkingLabel)
	assert.Equal(t, 1500*time.Millisecond, cfg.Session.MinLoading)
	assert.Equal(t, 20*time.Millisecond, cfg.Session.TypeInterval)
	assert.Equal(t, ":9999", cfg.Server.HTTPAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.ThinkingPeriod)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SCENECHAT_TRANSCRIPT_PATH=log.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SCENECHAT_TRANSCRIPT_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "log.db", cfg.Transcript.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Path = ""
	cfg.Session.TypeInterval = 0
	cfg.Log.Level = "loud"
	cfg.Tracing = TracingConfig{Enabled: true}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"dataset.path", "type_interval", "log.level", "tracing.endpoint"} {
		assert.Contains(t, err.Error(), want)
	}
}
