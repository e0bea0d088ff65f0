package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "./fractal-storage", cfg.Store)
		assert.Equal(t, "file", cfg.Backend)
	})

	t.Run("ReadsYAML", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		content := "store: /data/codex\nbackend: badger\nremote_url: https://seeds.example/nodes\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0o644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "/data/codex", cfg.Store)
		assert.Equal(t, "badger", cfg.Backend)
		assert.Equal(t, "https://seeds.example/nodes", cfg.RemoteURL)
	})

	t.Run("PartialFileKeepsDefaults", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("remote_url: https://x\n"), 0o644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "./fractal-storage", cfg.Store)
		assert.Equal(t, "file", cfg.Backend)
	})

	t.Run("BadYAML", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("store: [unclosed"), 0o644))

		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})
}

func TestSaveConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{Store: "/data/codex", Backend: "file", SeedRepo: "https://git.example/seeds"}
	require.NoError(t, SaveConfig(dir, cfg))

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
