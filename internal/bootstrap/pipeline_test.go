package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/living-codex/codex-go/internal/embeddings"
	"github.com/living-codex/codex-go/internal/index"
	"github.com/living-codex/codex-go/internal/ontology"
	"github.com/living-codex/codex-go/internal/storage"
)

func newTestStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore(ontology.NewTagger(ontology.NewRegistry()))
	require.NoError(t, store.Initialize("", false))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("SeedOnly", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		g, result, err := Run(context.Background(), store, nil, Options{})
		require.NoError(t, err)

		assert.Equal(t, 12, result.Seeds)
		assert.Equal(t, 12, result.Nodes)
		assert.Zero(t, result.Expanded)
		assert.Equal(t, 12, store.NodeCount())

		void := g.GetNode("codex:Void")
		require.NotNil(t, void)
		// Tagger fills the ontological defaults during bootstrap.
		assert.Equal(t, "Crown", void.Meta.Chakra)
		assert.Equal(t, "#EE82EE", void.Meta.ColorHex)
		assert.Equal(t, 963.0, void.Meta.BaseFrequencyHz)
		assert.Equal(t, "Sun", void.Meta.Planet)
		// Scoring backfills the derived fields.
		assert.NotEmpty(t, void.Meta.ResonancePattern)
		assert.Greater(t, void.Meta.SelfSimilarity, 0.0)
	})

	t.Run("WithExpansion", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		_, result, err := Run(context.Background(), store, nil, Options{Expand: true})
		require.NoError(t, err)

		// Nine expansion slots per seed node.
		assert.Equal(t, 12*9, result.Expanded)
		assert.Equal(t, 12*10, result.Nodes)
		assert.Equal(t, 12*10, store.NodeCount())

		manifest, err := store.Manifest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 12*9, manifest.TotalSubnodes)
	})

	t.Run("PopulatesIndex", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		engine := index.NewEngine(ontology.NewRegistry())

		_, _, err := Run(context.Background(), store, engine, Options{})
		require.NoError(t, err)

		assert.Equal(t, 12, engine.NodeCount())
		result := engine.Exact(index.FieldChakra, "ch.crown")
		assert.NotEmpty(t, result.Entries)
	})

	t.Run("WithEmbeddings", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		_, _, err := Run(context.Background(), store, nil, Options{Embeddings: true})
		require.NoError(t, err)

		vec := make([]float32, 100)
		vec[0] = 1
		hits, err := store.VectorSearch(context.Background(), vec, 5)
		require.NoError(t, err)
		assert.NotEmpty(t, hits)
	})

	t.Run("RefittedQueryFindsStoredVectors", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		_, _, err := Run(context.Background(), store, nil, Options{Embeddings: true})
		require.NoError(t, err)

		// An embedder refitted on the stored corpus embeds queries into
		// the vector space the bootstrap wrote.
		corpus, err := storage.CollectNodes(store.List(context.Background(), nil))
		require.NoError(t, err)
		embedder := embeddings.NewTFIDFEmbedder()
		embedder.Fit(corpus)

		hits, err := store.VectorSearch(context.Background(), embedder.Embed("flow movement adaptation"), 3)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "codex:Flow", hits[0].NodeID)
	})

	t.Run("ReportsProgressPhases", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		var phases []string
		progress := func(phase string, p float64) {
			if p == 0.0 {
				phases = append(phases, phase)
			}
		}

		_, _, err := Run(context.Background(), store, nil, Options{Progress: progress})
		require.NoError(t, err)

		assert.Contains(t, phases, "Seeding nodes")
		assert.Contains(t, phases, "Applying ontology")
		assert.Contains(t, phases, "Scoring nodes")
		assert.Contains(t, phases, "Loading to storage")
	})
}

func TestMergeSeeds(t *testing.T) {
	t.Parallel()

	seeds := SeedNodes()
	extra := SeedNodes()[:1]
	extra[0].Meta.Resonance = 0.42
	extra = append(extra, SeedNodes()[1])
	extra[1].ID = "codex:Custom"
	extra[1].Name = "Custom"

	merged := mergeSeeds(seeds, extra)

	assert.Len(t, merged, 13)
	assert.Equal(t, 0.42, merged[0].Meta.Resonance)
	assert.Equal(t, "codex:Custom", merged[12].ID)
}
