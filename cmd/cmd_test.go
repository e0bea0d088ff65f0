package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/living-codex/codex-go/internal/ontology"
	"github.com/living-codex/codex-go/internal/storage"
)

func bootstrapStore(t *testing.T, expand bool) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "store")

	boot := &BootstrapCmd{
		storeFlags:   storeFlags{Store: dir, Backend: "file"},
		NoExpand:     !expand,
		NoEmbeddings: true,
	}
	require.NoError(t, boot.Run())
	return dir
}

func openFileStore(t *testing.T, dir string) *storage.FileStore {
	t.Helper()
	store := storage.NewFileStore(ontology.NewTagger(ontology.NewRegistry()))
	require.NoError(t, store.Initialize(dir, true))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBootstrapCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("SeedOnly", func(t *testing.T) {
		t.Parallel()
		dir := bootstrapStore(t, false)

		assert.FileExists(t, filepath.Join(dir, "manifest.json"))
		assert.FileExists(t, filepath.Join(dir, "nodes", "codex_Void.json"))

		store := openFileStore(t, dir)
		assert.Equal(t, 12, store.NodeCount())
	})

	t.Run("WithExpansion", func(t *testing.T) {
		t.Parallel()
		dir := bootstrapStore(t, true)

		store := openFileStore(t, dir)
		assert.Equal(t, 120, store.NodeCount())

		node, err := store.Get(context.Background(), "codex:Flow:water:flow")
		require.NoError(t, err)
		assert.Equal(t, "codex:Flow", node.ParentID)
	})

	t.Run("BadgerBackend", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "badger-store")
		boot := &BootstrapCmd{
			storeFlags:   storeFlags{Store: dir, Backend: "badger"},
			NoExpand:     true,
			NoEmbeddings: true,
		}
		require.NoError(t, boot.Run())
	})
}

func TestGetCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, false)

	t.Run("Found", func(t *testing.T) {
		cmd := &GetCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, ID: "codex:Void"}
		assert.NoError(t, cmd.Run())
	})

	t.Run("FoundJSON", func(t *testing.T) {
		cmd := &GetCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, ID: "codex:Void", JSON: true}
		assert.NoError(t, cmd.Run())
	})

	t.Run("Missing", func(t *testing.T) {
		cmd := &GetCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, ID: "codex:Nope"}
		assert.NoError(t, cmd.Run())
	})
}

func TestQueryCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, false)

	t.Run("FreeText", func(t *testing.T) {
		cmd := &QueryCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, Query: "void chaos", Limit: 5}
		assert.NoError(t, cmd.Run())
	})

	t.Run("WithStoredEmbeddings", func(t *testing.T) {
		t.Parallel()
		embDir := filepath.Join(t.TempDir(), "store")
		boot := &BootstrapCmd{
			storeFlags: storeFlags{Store: embDir, Backend: "file"},
			NoExpand:   true,
		}
		require.NoError(t, boot.Run())

		cmd := &QueryCmd{storeFlags: storeFlags{Store: embDir, Backend: "file"}, Query: "flow movement adaptation", Limit: 5}
		assert.NoError(t, cmd.Run())
	})

	t.Run("WaterStateFilter", func(t *testing.T) {
		cmd := &QueryCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, Query: "void", Limit: 5, WaterState: "plasma"}
		assert.NoError(t, cmd.Run())
	})

	t.Run("TypeFilter", func(t *testing.T) {
		cmd := &QueryCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, Query: "flow", Limit: 5, Type: "seed"}
		assert.NoError(t, cmd.Run())
	})

	t.Run("UnknownThemeFilter", func(t *testing.T) {
		cmd := &QueryCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, Query: "void", Limit: 5, Theme: "fire"}
		assert.Error(t, cmd.Run())
	})
}

func TestExpandCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, false)

	cmd := &ExpandCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, ID: "codex:Flow"}
	require.NoError(t, cmd.Run())

	store := openFileStore(t, dir)
	node, err := store.Get(context.Background(), "codex:Flow")
	require.NoError(t, err)
	assert.Len(t, node.Children, 9)
}

func TestContextCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, true)
	cmd := &ContextCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, ID: "codex:Void"}
	assert.NoError(t, cmd.Run())
}

func TestScoreCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, false)
	cmd := &ScoreCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, ID: "codex:Void"}
	assert.NoError(t, cmd.Run())
}

func TestSimilarCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, false)
	cmd := &SimilarCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, ID: "codex:Void", Limit: 5}
	assert.NoError(t, cmd.Run())
}

func TestThemeCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, false)

	t.Run("KnownTheme", func(t *testing.T) {
		cmd := &ThemeCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, Theme: "ice"}
		assert.NoError(t, cmd.Run())
	})

	t.Run("UnknownTheme", func(t *testing.T) {
		cmd := &ThemeCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, Theme: "fire"}
		assert.Error(t, cmd.Run())
	})
}

func TestContributeCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, false)

	cmd := &ContributeCmd{
		storeFlags: storeFlags{Store: dir, Backend: "file"},
		ID:         "codex:Void",
		Content:    "the void breathes",
		User:       "tester",
		Resonance:  0.8,
	}
	require.NoError(t, cmd.Run())

	store := openFileStore(t, dir)
	contributions, err := store.Contributions(context.Background(), "codex:Void")
	require.NoError(t, err)
	require.Len(t, contributions, 1)
	assert.Equal(t, "tester", contributions[0].UserID)

	t.Run("MissingNode", func(t *testing.T) {
		bad := &ContributeCmd{
			storeFlags: storeFlags{Store: dir, Backend: "file"},
			ID:         "codex:Nope",
			Content:    "x",
			User:       "tester",
			Resonance:  0.5,
		}
		assert.Error(t, bad.Run())
	})

	t.Run("ResonanceOutOfRange", func(t *testing.T) {
		bad := &ContributeCmd{
			storeFlags: storeFlags{Store: dir, Backend: "file"},
			ID:         "codex:Void",
			Content:    "x",
			Resonance:  1.5,
		}
		assert.Error(t, bad.Run())
	})
}

func TestStatusCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, false)
	cmd := &StatusCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}}
	assert.NoError(t, cmd.Run())
}

func TestCleanCmd_Run(t *testing.T) {
	t.Parallel()

	dir := bootstrapStore(t, false)

	cmd := &CleanCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, Force: true}
	require.NoError(t, cmd.Run())

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	t.Run("NothingToClean", func(t *testing.T) {
		again := &CleanCmd{storeFlags: storeFlags{Store: dir, Backend: "file"}, Force: true}
		assert.Error(t, again.Run())
	})
}
