package bootstrap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/living-codex/codex-go/internal/graph"
)

func writeSeedFile(t *testing.T, dir, name string, node *graph.Node) {
	t.Helper()
	data, err := json.Marshal(node)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestLoadSeedDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeSeedFile(t, dir, "codex_Custom.json", &graph.Node{
		ID:   "codex:Custom",
		Type: graph.NodeSeed,
		Name: "Custom",
		Meta: graph.Meta{WaterState: "Liquid"},
	})
	writeSeedFile(t, dir, "other.json", &graph.Node{
		ID:   "other:Thing",
		Name: "Other",
	})

	// Non-node files are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("seeds"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	nodes, err := LoadSeedDir(dir)
	require.NoError(t, err)

	require.Len(t, nodes, 1)
	assert.Equal(t, "codex:Custom", nodes[0].ID)
	assert.Equal(t, "Liquid", nodes[0].Meta.WaterState)
	assert.Equal(t, "git", nodes[0].Structure.Source)
}

func TestLoadSeedDir_SkipsGitDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.Mkdir(gitDir, 0o755))
	writeSeedFile(t, gitDir, "codex_Hidden.json", &graph.Node{ID: "codex:Hidden"})

	nodes, err := LoadSeedDir(dir)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
