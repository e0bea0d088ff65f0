package storage

import (
	"context"
	"iter"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/ontology"
)

// MemoryStore is an in-memory Store for tests and ephemeral use.
type MemoryStore struct {
	mu            sync.RWMutex
	tagger        *ontology.Tagger
	nodes         map[string]*graph.Node
	embeddings    map[string][]float32
	contributions map[string]*Contribution
	manifest      *Manifest
	users         map[string]bool
}

// NewMemoryStore creates an in-memory store. The tagger, when non-nil,
// backfills ontological defaults on every read.
func NewMemoryStore(tagger *ontology.Tagger) *MemoryStore {
	return &MemoryStore{tagger: tagger}
}

// Initialize implements Store; path is ignored.
func (m *MemoryStore) Initialize(path string, readOnly bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes = make(map[string]*graph.Node)
	m.embeddings = make(map[string][]float32)
	m.contributions = make(map[string]*Contribution)
	m.users = make(map[string]bool)
	m.manifest = &Manifest{
		Version:     ManifestVersion,
		StoreID:     uuid.NewString(),
		LastUpdated: graph.Timestamp(),
		Nodes:       make(map[string]NodeSummary),
	}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = nil
	m.embeddings = nil
	m.contributions = nil
	return nil
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, node *graph.Node) error {
	if err := ValidateNode(node); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	node.Touch()
	m.nodes[node.ID] = node.Clone()
	m.manifest.Nodes[node.ID] = summarize(node)
	m.manifest.TotalNodes = len(m.manifest.Nodes)
	m.manifest.TotalSubnodes = countSubnodes(m.manifest.Nodes)
	m.manifest.LastUpdated = graph.Timestamp()
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, id string) (*graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	out := node.Clone()
	if m.tagger != nil {
		out.Meta = m.tagger.ApplyDefaults(out.ID, out.Meta)
	}
	return out, nil
}

// List implements Store. The ID snapshot is taken up front; nodes are
// cloned and backfilled one at a time as the iteration advances.
func (m *MemoryStore) List(ctx context.Context, pred func(*graph.Node) bool) iter.Seq2[*graph.Node, error] {
	return func(yield func(*graph.Node, error) bool) {
		m.mu.RLock()
		ids := make([]string, 0, len(m.nodes))
		for id := range m.nodes {
			ids = append(ids, id)
		}
		m.mu.RUnlock()
		sort.Strings(ids)

		for _, id := range ids {
			m.mu.RLock()
			node, ok := m.nodes[id]
			var out *graph.Node
			if ok {
				out = node.Clone()
				if m.tagger != nil {
					out.Meta = m.tagger.ApplyDefaults(out.ID, out.Meta)
				}
			}
			m.mu.RUnlock()

			if out == nil || (pred != nil && !pred(out)) {
				continue
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

// ByType implements Store.
func (m *MemoryStore) ByType(ctx context.Context, t graph.NodeType) iter.Seq2[*graph.Node, error] {
	return m.List(ctx, func(n *graph.Node) bool { return n.Type == t })
}

// BulkLoad implements Store.
func (m *MemoryStore) BulkLoad(ctx context.Context, g *graph.CodexGraph) error {
	for node := range g.IterNodes() {
		if err := m.Put(ctx, node); err != nil {
			return err
		}
	}
	return nil
}

// PutContribution implements Store.
func (m *MemoryStore) PutContribution(ctx context.Context, c *Contribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.contributions[c.ID]; !exists {
		m.manifest.TotalContributions++
	}
	cc := *c
	m.contributions[c.ID] = &cc
	if c.UserID != "" {
		m.users[c.UserID] = true
		m.manifest.TotalUsers = len(m.users)
	}
	m.manifest.LastUpdated = graph.Timestamp()
	return nil
}

// Contributions implements Store.
func (m *MemoryStore) Contributions(ctx context.Context, nodeID string) ([]*Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Contribution
	for _, c := range m.contributions {
		if c.NodeID == nodeID {
			cc := *c
			result = append(result, &cc)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// StoreEmbeddings implements Store.
func (m *MemoryStore) StoreEmbeddings(ctx context.Context, embeddings []NodeEmbedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, emb := range embeddings {
		m.embeddings[emb.NodeID] = emb.Embedding
	}
	return nil
}

// VectorSearch implements Store.
func (m *MemoryStore) VectorSearch(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lookup := func(id string) *graph.Node { return m.nodes[id] }
	return searchVectors(m.embeddings, lookup, vector, limit), nil
}

// TextSearch implements Store.
func (m *MemoryStore) TextSearch(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	nodes, err := CollectNodes(m.List(ctx, nil))
	if err != nil {
		return nil, err
	}
	return searchText(nodes, query, limit), nil
}

// HybridSearch implements Store.
func (m *MemoryStore) HybridSearch(ctx context.Context, query string, vector []float32, limit int) ([]HybridResult, error) {
	return hybridSearch(ctx, m, query, vector, limit, 60)
}

// NodeCount implements Store.
func (m *MemoryStore) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// Manifest implements Store.
func (m *MemoryStore) Manifest(ctx context.Context) (*Manifest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := *m.manifest
	out.Nodes = make(map[string]NodeSummary, len(m.manifest.Nodes))
	for id, s := range m.manifest.Nodes {
		out.Nodes[id] = s
	}
	return &out, nil
}
