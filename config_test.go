package main

import (
	"log/slog"
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
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.True(t, cfg.Confirmations)
	assert.Equal(t, 40, cfg.DefaultEmojiSize)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir: /tmp/emojiart-data
confirmations: false
default_emoji_size: 64
fetch_timeout: 5s
max_image_bytes: 1024
log_level: debug
export_width: 640
export_height: 480
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/emojiart-data", cfg.DataDir)
	assert.False(t, cfg.Confirmations)
	assert.Equal(t, 64, cfg.DefaultEmojiSize)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int64(1024), cfg.MaxImageBytes)
	assert.Equal(t, slog.LevelDebug, cfg.slogLevel())
	assert.Equal(t, 640, cfg.ExportWidth)
	assert.Equal(t, 480, cfg.ExportHeight)
	assert.Equal(t, filepath.Join("/tmp/emojiart-data", "emojiart.log"), cfg.logPath())
}

func TestLoadConfigRepairsInvalidValues(t *testing.T) {
	path := writeConfig(t, "default_emoji_size: 0\nexport_width: -1\nlog_level: loud\n")
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, defaultEmojiSize, cfg.DefaultEmojiSize)
	assert.Equal(t, 1024, cfg.ExportWidth)
	assert.Equal(t, 768, cfg.ExportHeight)
	assert.Equal(t, slog.LevelInfo, cfg.slogLevel())
}

func TestLoadConfigExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := loadConfig(writeConfig(t, "save_directory: ~/art\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "art"), cfg.SaveDirectory)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "confirmations: [nope\n"))
	assert.Error(t, err)
}

func TestGetSavePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	cfg := &Config{SaveDirectory: dir}

	assert.Equal(t, filepath.Join(dir, "a.png"), cfg.GetSavePath("a.png"))
	assert.DirExists(t, dir)
	assert.Equal(t, "/abs/a.png", cfg.GetSavePath("/abs/a.png"))
	assert.Equal(t, "a.png", (&Config{}).GetSavePath("a.png"))
}
