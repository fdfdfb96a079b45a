package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/immerse/webxr"
	"github.com/spaghettifunk/immerse/webxr/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "immerse.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
device = "desktop"

[projection]
near = 0.25
far = 250.0

[session]
mode = "inline"
required_feature = "local"
optional_feature = "hit-test"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "desktop", cfg.Device)
	assert.Equal(t, core.DebugLevel, cfg.Level())
	assert.Equal(t, float32(0.25), cfg.Projection.Near)
	assert.Equal(t, float32(250.0), cfg.Projection.Far)
	assert.Equal(t, webxr.SESSION_MODE_INLINE, cfg.SessionMode())

	required, optional := cfg.Features()
	assert.Equal(t, webxr.SESSION_FEATURE_LOCAL, required)
	assert.Equal(t, webxr.SESSION_FEATURE_HIT_TEST, optional)
}

func TestLoadKeepsDefaultsForOmittedKeys(t *testing.T) {
	path := writeConfig(t, `
[projection]
near = 0.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, float32(0.5), cfg.Projection.Near)
	assert.Equal(t, defaults.Projection.Far, cfg.Projection.Far)
	assert.Equal(t, defaults.Device, cfg.Device)
	assert.Equal(t, defaults.Session.Mode, cfg.Session.Mode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, `log_level = `)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestUnknownNamesFallBack(t *testing.T) {
	cfg := Default()
	cfg.Session.Mode = "holodeck"
	cfg.Session.RequiredFeature = "teleportation"
	cfg.LogLevel = "whisper"

	assert.Equal(t, webxr.SESSION_MODE_INLINE, cfg.SessionMode())
	required, _ := cfg.Features()
	assert.Equal(t, webxr.SESSION_FEATURE_LOCAL, required)
	assert.Equal(t, core.InfoLevel, cfg.Level())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, `device = "sim"`)

	reloaded := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	// Give the watcher a moment to arm before the write.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`device = "desktop"`), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "desktop", cfg.Device)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not deliver the reloaded config")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "immerse.toml")
	require.NoError(t, os.WriteFile(path, []byte(`device = "sim"`), 0o644))

	reloaded := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte(`device = "desktop"`), 0o644))

	select {
	case <-reloaded:
		t.Fatal("sibling file write must not trigger a reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchCloseIdempotent(t *testing.T) {
	path := writeConfig(t, `device = "sim"`)
	w, err := Watch(path, func(cfg *Config) {})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatchRequiresCallback(t *testing.T) {
	_, err := Watch("immerse.toml", nil)
	assert.Error(t, err)
}
