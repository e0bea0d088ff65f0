package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/ontology"
)

func newBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	store := NewBadgerStore(ontology.NewTagger(ontology.NewRegistry()))
	require.NoError(t, store.Initialize(t.TempDir(), false))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newBadgerStore(t)

	original := &graph.Node{
		ID:   "codex:Pattern",
		Type: graph.NodeSeed,
		Name: "Pattern",
		Meta: graph.Meta{
			WaterState: "Structured",
			Resonance:  0.9,
			Archetypes: []string{"Sacred Geometry", "Crystal", "Lattice"},
		},
	}
	require.NoError(t, store.Put(ctx, original))

	loaded, err := store.Get(ctx, "codex:Pattern")
	require.NoError(t, err)

	assert.Equal(t, original.Name, loaded.Name)
	assert.Equal(t, "Structured", loaded.Meta.WaterState)
	assert.Equal(t, 0.9, loaded.Meta.Resonance)
	assert.Equal(t, original.Meta.Archetypes, loaded.Meta.Archetypes)
	// Backfill through the seed's canonical chakra.
	assert.Equal(t, "Throat", loaded.Meta.Chakra)
	assert.Equal(t, 741.0, loaded.Meta.BaseFrequencyHz)
}

func TestBadgerStore_GetMissing(t *testing.T) {
	t.Parallel()

	store := newBadgerStore(t)

	_, err := store.Get(context.Background(), "codex:Missing")
	assert.True(t, IsNotFound(err))
}

func TestBadgerStore_ManifestAndCounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newBadgerStore(t)

	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Flow", Type: graph.NodeSeed}))
	require.NoError(t, store.Put(ctx, &graph.Node{ID: "codex:Flow:water:flow", Type: graph.NodeAspect}))

	assert.Equal(t, 2, store.NodeCount())

	m, err := store.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalNodes)
	assert.Equal(t, 1, m.TotalSubnodes)
	assert.NotEmpty(t, m.StoreID)
}

func TestBadgerStore_ListIterates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newBadgerStore(t)

	for _, id := range []string{"codex:Void", "codex:Flow", "codex:Memory"} {
		require.NoError(t, store.Put(ctx, &graph.Node{ID: id, Type: graph.NodeSeed}))
	}

	// Key order is ID order; stopping early closes the transaction.
	for node, err := range store.List(ctx, nil) {
		require.NoError(t, err)
		assert.Equal(t, "codex:Flow", node.ID)
		break
	}

	seeds, err := CollectNodes(store.ByType(ctx, graph.NodeSeed))
	require.NoError(t, err)
	assert.Len(t, seeds, 3)
}

func TestBadgerStore_BulkLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newBadgerStore(t)

	g := graph.NewCodexGraph()
	g.AddNode(&graph.Node{ID: "codex:Void", Type: graph.NodeSeed, Name: "Void"})
	g.AddNode(&graph.Node{ID: "codex:Field", Type: graph.NodeSeed, Name: "Field"})

	require.NoError(t, store.BulkLoad(ctx, g))

	assert.Equal(t, 2, store.NodeCount())
	m, err := store.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalNodes)
}

func TestBadgerStore_Contributions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newBadgerStore(t)

	c := &Contribution{
		ID:        "deadbeef",
		NodeID:    "codex:Flow",
		UserID:    "user-1",
		Content:   "note",
		Resonance: 0.5,
		CreatedAt: graph.Timestamp(),
	}
	require.NoError(t, store.PutContribution(ctx, c))
	require.NoError(t, store.PutContribution(ctx, c))

	m, err := store.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalContributions)
	assert.Equal(t, 1, m.TotalUsers)

	got, err := store.Contributions(ctx, "codex:Flow")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBadgerStore_SearchSurfaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newBadgerStore(t)

	require.NoError(t, store.Put(ctx, &graph.Node{
		ID: "codex:Flow", Type: graph.NodeSeed, Name: "Flow",
		Content: "movement and adaptation",
	}))
	require.NoError(t, store.Put(ctx, &graph.Node{
		ID: "codex:Void", Type: graph.NodeSeed, Name: "Void",
	}))
	require.NoError(t, store.StoreEmbeddings(ctx, []NodeEmbedding{
		{NodeID: "codex:Flow", Embedding: []float32{1, 0, 0}},
		{NodeID: "codex:Void", Embedding: []float32{0, 1, 0}},
	}))

	text, err := store.TextSearch(ctx, "movement", 5)
	require.NoError(t, err)
	require.Len(t, text, 1)
	assert.Equal(t, "codex:Flow", text[0].NodeID)

	vec, err := store.VectorSearch(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, vec)
	assert.Equal(t, "codex:Flow", vec[0].NodeID)

	hybrid, err := store.HybridSearch(ctx, "flow", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, hybrid)
	assert.Equal(t, "codex:Flow", hybrid[0].NodeID)
}
