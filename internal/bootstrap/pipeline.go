package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/living-codex/codex-go/internal/embeddings"
	"github.com/living-codex/codex-go/internal/fractal"
	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/index"
	"github.com/living-codex/codex-go/internal/ontology"
	"github.com/living-codex/codex-go/internal/resonance"
	"github.com/living-codex/codex-go/internal/storage"
)

// ProgressCallback is called with phase name and progress (0.0-1.0).
type ProgressCallback func(phase string, progress float64)

// Options configures a bootstrap run.
type Options struct {
	// RemoteURL optionally points at a seed endpoint whose ontological
	// overrides take precedence over the built-in defaults. Fetch
	// failures fall back to the built-in seed table.
	RemoteURL string

	// SeedDir optionally names a directory of node JSON files (for
	// example a cloned seed repository) merged over the canonical set.
	SeedDir string

	// Expand runs the fractal expansion over every seed node.
	Expand bool

	// Embeddings generates and stores TF-IDF embeddings.
	Embeddings bool

	// Progress reports phase transitions; may be nil.
	Progress ProgressCallback
}

// Result summarizes a bootstrap run.
type Result struct {
	Seeds         int
	Nodes         int
	Expanded      int
	RemoteApplied bool
	DurationSecs  float64
}

// Run executes the full bootstrap pipeline: seed, tag, expand, score,
// index, embed and persist. The engine may be nil when no query index
// is wanted.
func Run(ctx context.Context, store storage.Store, engine *index.Engine, opts Options) (*graph.CodexGraph, *Result, error) {
	start := time.Now()
	result := &Result{}
	progress := opts.Progress
	if progress == nil {
		progress = func(string, float64) {}
	}

	reg := ontology.NewRegistry()
	tagger := ontology.NewTagger(reg)
	scorer := resonance.NewScorer(reg)

	// Phase 1: Seeding
	progress("Seeding nodes", 0.0)
	seeds := SeedNodes()
	if opts.RemoteURL != "" {
		if remote, err := FetchRemoteSeeds(ctx, opts.RemoteURL); err == nil {
			for _, node := range seeds {
				if seed, ok := remote[node.ID]; ok {
					ApplyRemoteSeed(node, seed)
					result.RemoteApplied = true
				}
			}
		}
		// A failed fetch is not an error; the built-in table stands.
	}
	if opts.SeedDir != "" {
		extra, err := LoadSeedDir(opts.SeedDir)
		if err != nil {
			return nil, nil, fmt.Errorf("loading seed dir: %w", err)
		}
		seeds = mergeSeeds(seeds, extra)
	}
	result.Seeds = len(seeds)
	progress("Seeding nodes", 1.0)

	// Phase 2: Ontology defaults
	progress("Applying ontology", 0.0)
	g := graph.NewCodexGraph()
	for _, node := range seeds {
		node.Meta = tagger.ApplyDefaults(node.ID, node.Meta)
		node.Touch()
		g.AddNode(node)
	}
	progress("Applying ontology", 1.0)

	// Phase 3: Fractal expansion
	if opts.Expand {
		progress("Expanding nodes", 0.0)
		for i, node := range seeds {
			children := fractal.ExpandGraph(g, node)
			result.Expanded += len(children)
			progress("Expanding nodes", float64(i+1)/float64(len(seeds)))
		}
	}

	// Phase 4: Scoring
	progress("Scoring nodes", 0.0)
	for node := range g.IterNodes() {
		scorer.Score(node)
		node.Meta.Resonance = clampResonance(node)
	}
	progress("Scoring nodes", 1.0)

	// Phase 5: Indexing
	if engine != nil {
		progress("Indexing nodes", 0.0)
		for node := range g.IterNodes() {
			engine.Index(node)
		}
		progress("Indexing nodes", 1.0)
	}

	// Phase 6: Embeddings
	if opts.Embeddings {
		progress("Generating embeddings", 0.0)
		if err := GenerateAndStoreEmbeddings(ctx, g, store); err != nil {
			// Embeddings are an enrichment, not a bootstrap requirement.
			fmt.Printf("Warning: embedding generation failed: %v\n", err)
		}
		progress("Generating embeddings", 1.0)
	}

	// Phase 7: Persist
	if store != nil {
		progress("Loading to storage", 0.0)
		if err := store.BulkLoad(ctx, g); err != nil {
			return nil, nil, fmt.Errorf("bulk load: %w", err)
		}
		progress("Loading to storage", 1.0)
	}

	result.Nodes = g.NodeCount()
	result.DurationSecs = time.Since(start).Seconds()
	return g, result, nil
}

// GenerateAndStoreEmbeddings embeds every node in the graph and
// persists the vectors.
func GenerateAndStoreEmbeddings(ctx context.Context, g *graph.CodexGraph, store storage.Store) error {
	if store == nil {
		return nil
	}

	nodes := g.Nodes()
	embedder := embeddings.NewTFIDFEmbedder()
	vectors := embedder.EmbedNodes(nodes)

	records := make([]storage.NodeEmbedding, 0, len(nodes))
	for i, node := range nodes {
		records = append(records, storage.NodeEmbedding{
			NodeID:    node.ID,
			Embedding: vectors[i],
		})
	}
	return store.StoreEmbeddings(ctx, records)
}

// mergeSeeds overlays extra nodes onto the canonical seeds; extras with
// a known ID replace the canonical entry, others append.
func mergeSeeds(seeds, extra []*graph.Node) []*graph.Node {
	byID := make(map[string]int, len(seeds))
	for i, node := range seeds {
		byID[node.ID] = i
	}
	for _, node := range extra {
		if i, ok := byID[node.ID]; ok {
			seeds[i] = node
		} else {
			byID[node.ID] = len(seeds)
			seeds = append(seeds, node)
		}
	}
	return seeds
}

// clampResonance keeps a caller-supplied resonance inside [0,1].
func clampResonance(node *graph.Node) float64 {
	r := node.Meta.Resonance
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
