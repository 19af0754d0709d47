package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"emojiart/internal/document"
	"emojiart/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI runs the app against a temporary data directory.
func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out

	argv := []string{"emojiart",
		"--config", filepath.Join(dataDir, "config.yaml"),
		"--data-dir", dataDir,
	}
	err := app.Run(append(argv, args...))
	return out.String(), err
}

// seedDocument writes a saved document straight into the store.
func seedDocument(t *testing.T, dataDir, data string) {
	t.Helper()
	s, err := store.OpenSQLite(dataDir)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Set(context.Background(), document.StorageKey, []byte(data)))
}

func TestShowPrintsSavedDocument(t *testing.T) {
	dir := t.TempDir()
	seedDocument(t, dir, `{"emojis":[{"id":3,"text":"🍎","x":1,"y":2,"size":40}],"nextID":4}`)

	out, err := runCLI(t, dir, "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"text": "🍎"`)
	assert.Contains(t, out, `"nextID": 4`)
}

func TestShowWithoutSavedDocument(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"nextID": 0`)
}

func TestClearDeletesSavedDocument(t *testing.T) {
	dir := t.TempDir()
	seedDocument(t, dir, `{"emojis":[{"id":0,"text":"🍎","x":1,"y":2,"size":40}],"nextID":1}`)

	out, err := runCLI(t, dir, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared")

	s, err := store.OpenSQLite(dir)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Get(context.Background(), document.StorageKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExportWritesPNG(t *testing.T) {
	dir := t.TempDir()
	seedDocument(t, dir, `{"emojis":[{"id":0,"text":"A","x":0,"y":0,"size":30}],"nextID":1}`)
	target := filepath.Join(t.TempDir(), "art.png")

	out, err := runCLI(t, dir, "export", "--width", "120", "--height", "90", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported")

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, 90, cfg.Height)
}

func TestExportWithBrokenBackgroundStillRenders(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.png")
	seedDocument(t, dir, `{"backgroundURL":"file://`+missing+`","emojis":[{"id":0,"text":"A","x":0,"y":0,"size":30}],"nextID":1}`)
	target := filepath.Join(t.TempDir(), "art.png")

	out, err := runCLI(t, dir, "export", "--fit", target)
	require.NoError(t, err)
	assert.Contains(t, out, "background not loaded")
	assert.FileExists(t, target)
}

func TestExportEmptyDocumentFails(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "export", filepath.Join(t.TempDir(), "art.png"))
	assert.EqualError(t, err, "nothing to export")
}

func TestExportNeedsOutputFile(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "export")
	assert.Error(t, err)
}

func TestConfigFileIsRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("export_width: 50\nexport_height: 20\n"), 0644))
	seedDocument(t, dir, `{"emojis":[{"id":0,"text":"A","x":0,"y":0,"size":10}],"nextID":1}`)
	target := filepath.Join(t.TempDir(), "art.png")

	_, err := runCLI(t, dir, "export", target)
	require.NoError(t, err)

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}
