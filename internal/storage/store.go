// Package storage provides durable node stores for the codex.
//
// It defines the Store interface that all backends satisfy, along with
// the error taxonomy, search result types, the manifest, and
// contribution records. Three backends exist: FileStore (one JSON file
// per node plus manifest.json, the primary layout), BadgerStore, and
// MemoryStore for tests and ephemeral use.
package storage

import (
	"context"
	"iter"

	"github.com/living-codex/codex-go/internal/graph"
)

// ManifestVersion is written into every manifest.
const ManifestVersion = "1.0"

// SearchResult represents a search hit from a store.
type SearchResult struct {
	// NodeID is the ID of the matching node.
	NodeID string

	// Score is the relevance score (higher is better).
	Score float64

	// Name is the node name.
	Name string

	// Type is the node type.
	Type string

	// WaterState is the node's water state, if any.
	WaterState string

	// Snippet is a content excerpt.
	Snippet string
}

// HybridResult represents a result from RRF-fused hybrid search.
type HybridResult struct {
	NodeID     string
	Score      float64
	Name       string
	Type       string
	WaterState string
	Snippet    string
}

// NodeEmbedding represents a vector embedding for a node.
type NodeEmbedding struct {
	NodeID    string
	Embedding []float32
}

// NodeSummary is the per-node entry in the manifest.
type NodeSummary struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	WaterState string  `json:"water_state,omitempty"`
	Chakra     string  `json:"chakra,omitempty"`
	Resonance  float64 `json:"resonance,omitempty"`
	Children   int     `json:"children"`
	UpdatedAt  string  `json:"updated_at"`
}

// Manifest summarizes the contents of a store.
type Manifest struct {
	Version            string                 `json:"version"`
	StoreID            string                 `json:"store_id"`
	TotalNodes         int                    `json:"total_nodes"`
	TotalSubnodes      int                    `json:"total_subnodes"`
	TotalContributions int                    `json:"total_contributions"`
	TotalUsers         int                    `json:"total_users"`
	LastUpdated        string                 `json:"last_updated"`
	Nodes              map[string]NodeSummary `json:"nodes"`
}

// Contribution is a content-addressed user contribution to a node.
// Its ID is the SHA-256 of node, user, content and resonance, so the
// same contribution always lands on the same record.
type Contribution struct {
	ID        string  `json:"id"`
	NodeID    string  `json:"node_id"`
	UserID    string  `json:"user_id"`
	Content   string  `json:"content"`
	Resonance float64 `json:"resonance"`
	CreatedAt string  `json:"created_at"`
}

// Store defines the interface all storage backends satisfy.
//
// Implementations are safe for concurrent readers; concurrent writers
// to the same node ID race with last-write-wins semantics.
type Store interface {
	// Initialize opens or creates the store at the given path.
	// If readOnly is true, writes fail.
	Initialize(path string, readOnly bool) error

	// Close releases all resources held by the store.
	Close() error

	// Put validates and persists a node, updating the manifest.
	Put(ctx context.Context, node *graph.Node) error

	// Get returns the node with the given ID with ontological defaults
	// backfilled, or a NotFoundError.
	Get(ctx context.Context, id string) (*graph.Node, error)

	// List returns a lazy, restartable iterator over nodes matching
	// pred, in stable ID order. A nil pred matches everything. Nodes
	// are read and decoded one at a time, so callers may stop early;
	// re-ranging the sequence restarts it from the beginning. On a
	// read failure the sequence yields (nil, error) once and stops.
	List(ctx context.Context, pred func(*graph.Node) bool) iter.Seq2[*graph.Node, error]

	// ByType iterates over all nodes with the given type.
	ByType(ctx context.Context, t graph.NodeType) iter.Seq2[*graph.Node, error]

	// BulkLoad persists the entire contents of the graph.
	BulkLoad(ctx context.Context, g *graph.CodexGraph) error

	// PutContribution persists a contribution record.
	PutContribution(ctx context.Context, c *Contribution) error

	// Contributions returns the contributions attached to a node.
	Contributions(ctx context.Context, nodeID string) ([]*Contribution, error)

	// StoreEmbeddings persists node embeddings.
	StoreEmbeddings(ctx context.Context, embeddings []NodeEmbedding) error

	// VectorSearch finds nodes closest to the given vector.
	VectorSearch(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)

	// TextSearch performs tokenized text search over name, content and
	// archetypes.
	TextSearch(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// HybridSearch combines text and vector search using RRF.
	HybridSearch(ctx context.Context, query string, vector []float32, limit int) ([]HybridResult, error)

	// NodeCount returns the number of stored nodes.
	NodeCount() int

	// Manifest returns the current manifest.
	Manifest(ctx context.Context) (*Manifest, error)
}

// CollectNodes drains a node iterator into a slice, stopping at the
// first error.
func CollectNodes(seq iter.Seq2[*graph.Node, error]) ([]*graph.Node, error) {
	var nodes []*graph.Node
	for node, err := range seq {
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// ValidateNode checks the data-model invariants before a write.
func ValidateNode(node *graph.Node) error {
	if node == nil {
		return &ValidationError{Field: "node", Reason: "nil"}
	}
	if node.ID == "" {
		return &ValidationError{Field: "id", Reason: "empty"}
	}
	scores := []struct {
		field string
		value float64
	}{
		{"resonance", node.Meta.Resonance},
		{"coherence_score", node.Meta.Coherence},
		{"dissonance_level", node.Meta.Dissonance},
		{"self_similarity_score", node.Meta.SelfSimilarity},
	}
	for _, s := range scores {
		if s.value < 0 || s.value > 1 {
			return &ValidationError{ID: node.ID, Field: s.field, Reason: "outside [0,1]"}
		}
	}
	if node.UpdatedAt != "" && node.CreatedAt != "" && node.UpdatedAt < node.CreatedAt {
		return &ValidationError{ID: node.ID, Field: "updated_at", Reason: "precedes created_at"}
	}
	return nil
}

// summarize builds the manifest entry for a node.
func summarize(node *graph.Node) NodeSummary {
	return NodeSummary{
		Name:       node.Name,
		Type:       string(node.Type),
		WaterState: node.Meta.WaterState,
		Chakra:     node.Meta.Chakra,
		Resonance:  node.Meta.Resonance,
		Children:   len(node.Children),
		UpdatedAt:  node.UpdatedAt,
	}
}

// countSubnodes counts manifest entries below the seed level.
func countSubnodes(nodes map[string]NodeSummary) int {
	count := 0
	for id := range nodes {
		if id != graph.BaseID(id) {
			count++
		}
	}
	return count
}
