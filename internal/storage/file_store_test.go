package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/ontology"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	store := NewFileStore(ontology.NewTagger(ontology.NewRegistry()))
	require.NoError(t, store.Initialize(t.TempDir(), false))
	return store
}

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFileStore(t)

	original := &graph.Node{
		ID:   "codex:Flow",
		Type: graph.NodeSeed,
		Name: "Flow",
		Meta: graph.Meta{
			WaterState: "Liquid",
			Resonance:  0.7,
			Archetypes: []string{"River", "Current", "Adaptation"},
		},
	}
	require.NoError(t, store.Put(ctx, original))

	loaded, err := store.Get(ctx, "codex:Flow")
	require.NoError(t, err)

	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.Type, loaded.Type)
	assert.Equal(t, "Liquid", loaded.Meta.WaterState)
	assert.Equal(t, 0.7, loaded.Meta.Resonance)
	assert.Equal(t, original.Meta.Archetypes, loaded.Meta.Archetypes)
	assert.NotEmpty(t, loaded.CreatedAt)
	assert.GreaterOrEqual(t, loaded.UpdatedAt, loaded.CreatedAt)
}

func TestFileStore_FileNaming(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewFileStore(nil)
	root := t.TempDir()
	require.NoError(t, store.Initialize(root, false))

	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Flow:water:flow", Type: graph.NodeAspect}))

	assert.FileExists(t, filepath.Join(root, "nodes", "codex_Flow_water_flow.json"))

	// 2-space indentation is part of the layout.
	data, err := os.ReadFile(filepath.Join(root, "nodes", "codex_Flow_water_flow.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"id\"")
}

func TestFileStore_BackfillOnRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFileStore(t)

	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Void", Type: graph.NodeSeed, Name: "Void"}))

	loaded, err := store.Get(ctx, "codex:Void")
	require.NoError(t, err)

	assert.Equal(t, "Crown", loaded.Meta.Chakra)
	assert.Equal(t, "#EE82EE", loaded.Meta.ColorHex)
	assert.Equal(t, 963.0, loaded.Meta.BaseFrequencyHz)
	assert.Equal(t, "Sun", loaded.Meta.Planet)
}

func TestFileStore_GetMissing(t *testing.T) {
	t.Parallel()

	store := newFileStore(t)

	_, err := store.Get(context.Background(), "codex:Missing")
	assert.True(t, IsNotFound(err))
}

func TestFileStore_PutRejectsInvalid(t *testing.T) {
	t.Parallel()

	store := newFileStore(t)

	err := store.Put(context.Background(), &graph.Node{ID: "x", Meta: graph.Meta{Resonance: 2.0}})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestFileStore_Manifest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFileStore(t)

	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Flow", Type: graph.NodeSeed, Name: "Flow"}))
	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Flow:water:flow", Type: graph.NodeAspect, Name: "Flow flow"}))

	m, err := store.Manifest(ctx)
	require.NoError(t, err)

	assert.Equal(t, ManifestVersion, m.Version)
	assert.NotEmpty(t, m.StoreID)
	assert.Equal(t, 2, m.TotalNodes)
	assert.Equal(t, 1, m.TotalSubnodes)
	assert.NotEmpty(t, m.LastUpdated)
	assert.Contains(t, m.Nodes, "codex:Flow")
	assert.Equal(t, "seed", m.Nodes["codex:Flow"].Type)
}

func TestFileStore_ManifestSurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()

	store := NewFileStore(nil)
	require.NoError(t, store.Initialize(root, false))
	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Flow", Type: graph.NodeSeed}))
	m1, err := store.Manifest(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened := NewFileStore(nil)
	require.NoError(t, reopened.Initialize(root, false))
	m2, err := reopened.Manifest(ctx)
	require.NoError(t, err)

	assert.Equal(t, m1.StoreID, m2.StoreID)
	assert.Equal(t, 1, m2.TotalNodes)
}

func TestFileStore_ListAndByType(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFileStore(t)

	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Void", Type: graph.NodeSeed}))
	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Flow", Type: graph.NodeSeed}))
	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Flow:water:flow", Type: graph.NodeAspect}))

	all, err := CollectNodes(store.List(ctx, nil))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	seeds, err := CollectNodes(store.ByType(ctx, graph.NodeSeed))
	require.NoError(t, err)
	assert.Len(t, seeds, 2)
	assert.Equal(t, "codex:Flow", seeds[0].ID)
}

func TestFileStore_ListIsLazyAndRestartable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFileStore(t)

	for _, id := range []string{"codex:Void", "codex:Flow", "codex:Memory"} {
		require.NoError(t, store.Put(ctx, &graph.Node{ID: id, Type: graph.NodeSeed}))
	}

	seq := store.List(ctx, nil)

	// Stopping early reads only the nodes the caller consumed.
	var first string
	for node, err := range seq {
		require.NoError(t, err)
		first = node.ID
		break
	}
	assert.Equal(t, "codex:Flow", first)

	// Re-ranging the same sequence restarts from the beginning.
	var ids []string
	for node, err := range seq {
		require.NoError(t, err)
		ids = append(ids, node.ID)
	}
	assert.Equal(t, []string{"codex:Flow", "codex:Memory", "codex:Void"}, ids)
}

func TestFileStore_ListStopsOnCorruptFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	store := NewFileStore(nil)
	require.NoError(t, store.Initialize(root, false))
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Void", Type: graph.NodeSeed}))
	require.NoError(t, os.WriteFile(filepath.Join(store.NodesDir(), "broken.json"), []byte("{"), 0o644))

	_, err := CollectNodes(store.List(ctx, nil))
	require.Error(t, err)
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestFileStore_Contributions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFileStore(t)

	c := &Contribution{
		ID:        "abc123",
		NodeID:    "codex:Flow",
		UserID:    "user-1",
		Content:   "flow observation",
		Resonance: 0.8,
		CreatedAt: graph.Timestamp(),
	}
	require.NoError(t, store.PutContribution(ctx, c))
	// Content addressing makes the same record a no-op for the counter.
	require.NoError(t, store.PutContribution(ctx, c))

	m, err := store.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalContributions)
	assert.Equal(t, 1, m.TotalUsers)

	got, err := store.Contributions(ctx, "codex:Flow")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "flow observation", got[0].Content)

	none, err := store.Contributions(ctx, "codex:Void")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFileStore_ReadOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()

	rw := NewFileStore(nil)
	require.NoError(t, rw.Initialize(root, false))
	require.NoError(t, rw.Put(ctx, &graph.Node{ID: "codex:Flow", Type: graph.NodeSeed}))

	ro := NewFileStore(nil)
	require.NoError(t, ro.Initialize(root, true))

	_, err := ro.Get(ctx, "codex:Flow")
	assert.NoError(t, err)

	err = ro.Put(ctx, &graph.Node{ID: "codex:Void", Type: graph.NodeSeed})
	var se *StorageError
	assert.ErrorAs(t, err, &se)
}

func TestFileStore_BulkLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFileStore(t)

	g := graph.NewCodexGraph()
	g.AddNode(&graph.Node{ID: "codex:Void", Type: graph.NodeSeed, Name: "Void"})
	g.AddNode(&graph.Node{ID: "codex:Flow", Type: graph.NodeSeed, Name: "Flow"})

	require.NoError(t, store.BulkLoad(ctx, g))

	assert.Equal(t, 2, store.NodeCount())
	loaded, err := store.Get(ctx, "codex:Void")
	require.NoError(t, err)
	assert.Equal(t, "Void", loaded.Name)
}
