package storage

import (
	"context"
	"encoding/json"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/ontology"
)

// DefaultPath is the default root directory for a file store.
const DefaultPath = "./fractal-storage"

const (
	nodesDir         = "nodes"
	embeddingsDir    = "embeddings"
	contributionsDir = "contributions"
	manifestFile     = "manifest.json"
)

// FileStore persists one JSON file per node under <root>/nodes/, with
// embeddings and contributions in sibling directories and a
// manifest.json summary at the root.
//
// File names are the node ID with ":" replaced by "_" plus ".json";
// files are written with 2-space indentation so external edits stay
// readable. The layout is append/overwrite only, nodes are never
// physically deleted.
type FileStore struct {
	mu       sync.RWMutex
	root     string
	readOnly bool
	tagger   *ontology.Tagger
	manifest *Manifest
	users    map[string]bool
}

// NewFileStore creates a file store. The tagger, when non-nil, backfills
// ontological defaults on every read.
func NewFileStore(tagger *ontology.Tagger) *FileStore {
	return &FileStore{tagger: tagger}
}

// Initialize opens or creates the store layout at the given path.
func (f *FileStore) Initialize(path string, readOnly bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if path == "" {
		path = DefaultPath
	}
	f.root = path
	f.readOnly = readOnly

	if !readOnly {
		for _, dir := range []string{nodesDir, embeddingsDir, contributionsDir} {
			if err := os.MkdirAll(filepath.Join(path, dir), 0o755); err != nil {
				return &StorageError{Op: "mkdir", Path: filepath.Join(path, dir), Err: err}
			}
		}
	}

	if err := f.loadManifest(); err != nil {
		return err
	}
	return f.loadContributionUsers()
}

func (f *FileStore) loadManifest() error {
	path := filepath.Join(f.root, manifestFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		f.manifest = &Manifest{
			Version:     ManifestVersion,
			StoreID:     uuid.NewString(),
			LastUpdated: graph.Timestamp(),
			Nodes:       make(map[string]NodeSummary),
		}
		if f.readOnly {
			return nil
		}
		return f.writeManifest()
	}
	if err != nil {
		return &StorageError{Op: "read", Path: path, Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return &StorageError{Op: "decode", Path: path, Err: err}
	}
	if m.Nodes == nil {
		m.Nodes = make(map[string]NodeSummary)
	}
	f.manifest = &m
	return nil
}

func (f *FileStore) loadContributionUsers() error {
	f.users = make(map[string]bool)
	entries, err := os.ReadDir(filepath.Join(f.root, contributionsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &StorageError{Op: "readdir", Path: filepath.Join(f.root, contributionsDir), Err: err}
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.root, contributionsDir, entry.Name()))
		if err != nil {
			continue
		}
		var c Contribution
		if json.Unmarshal(data, &c) == nil && c.UserID != "" {
			f.users[c.UserID] = true
		}
	}
	return nil
}

// Close releases resources. The file store holds no open handles.
func (f *FileStore) Close() error {
	return nil
}

// fileName maps a node ID to its on-disk file name.
func fileName(id string) string {
	return strings.ReplaceAll(id, ":", "_") + ".json"
}

func (f *FileStore) nodePath(id string) string {
	return filepath.Join(f.root, nodesDir, fileName(id))
}

// writeJSON writes v with the 2-space indentation of the layout.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Path: path, Err: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (f *FileStore) writeManifest() error {
	return writeJSON(filepath.Join(f.root, manifestFile), f.manifest)
}

// Put validates and persists a node, then updates the manifest.
func (f *FileStore) Put(ctx context.Context, node *graph.Node) error {
	if err := ValidateNode(node); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readOnly {
		return &StorageError{Op: "put", Path: f.root, Err: os.ErrPermission}
	}

	node.Touch()
	if err := writeJSON(f.nodePath(node.ID), node); err != nil {
		return err
	}

	f.recordNode(node)
	return f.writeManifest()
}

// recordNode updates the manifest entry and counters for a node.
// Caller holds the write lock.
func (f *FileStore) recordNode(node *graph.Node) {
	f.manifest.Nodes[node.ID] = summarize(node)
	f.manifest.TotalNodes = len(f.manifest.Nodes)
	f.manifest.TotalSubnodes = countSubnodes(f.manifest.Nodes)
	f.manifest.LastUpdated = graph.Timestamp()
}

// Get returns the node with defaults backfilled, or a NotFoundError.
func (f *FileStore) Get(ctx context.Context, id string) (*graph.Node, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.getLocked(id)
}

func (f *FileStore) getLocked(id string) (*graph.Node, error) {
	path := f.nodePath(id)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Path: path, Err: err}
	}

	var node graph.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, &StorageError{Op: "decode", Path: path, Err: err}
	}

	if f.tagger != nil {
		node.Meta = f.tagger.ApplyDefaults(node.ID, node.Meta)
	}
	return &node, nil
}

// List returns a lazy, restartable iterator over nodes matching pred,
// in file-name (ID) order. Each node file is read and decoded only
// when the iteration reaches it, so callers that stop early do not pay
// for the rest of the store.
func (f *FileStore) List(ctx context.Context, pred func(*graph.Node) bool) iter.Seq2[*graph.Node, error] {
	return func(yield func(*graph.Node, error) bool) {
		f.mu.RLock()
		dir := filepath.Join(f.root, nodesDir)
		entries, err := os.ReadDir(dir)
		f.mu.RUnlock()
		if err != nil {
			if !os.IsNotExist(err) {
				yield(nil, &StorageError{Op: "readdir", Path: dir, Err: err})
			}
			return
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			node, err := f.readNodeFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				yield(nil, err)
				return
			}
			if pred != nil && !pred(node) {
				continue
			}
			if !yield(node, nil) {
				return
			}
		}
	}
}

// readNodeFile decodes a single node file with defaults backfilled.
func (f *FileStore) readNodeFile(path string) (*graph.Node, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: path, Err: err}
	}
	var node graph.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, &StorageError{Op: "decode", Path: path, Err: err}
	}
	if f.tagger != nil {
		node.Meta = f.tagger.ApplyDefaults(node.ID, node.Meta)
	}
	return &node, nil
}

// ByType iterates over all nodes with the given type.
func (f *FileStore) ByType(ctx context.Context, t graph.NodeType) iter.Seq2[*graph.Node, error] {
	return f.List(ctx, func(n *graph.Node) bool { return n.Type == t })
}

// BulkLoad persists the entire graph, writing the manifest once.
func (f *FileStore) BulkLoad(ctx context.Context, g *graph.CodexGraph) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readOnly {
		return &StorageError{Op: "bulkload", Path: f.root, Err: os.ErrPermission}
	}

	for node := range g.IterNodes() {
		if err := ValidateNode(node); err != nil {
			return err
		}
		node.Touch()
		if err := writeJSON(f.nodePath(node.ID), node); err != nil {
			return err
		}
		f.recordNode(node)
	}

	return f.writeManifest()
}

// PutContribution persists a contribution record and updates the
// manifest counters.
func (f *FileStore) PutContribution(ctx context.Context, c *Contribution) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readOnly {
		return &StorageError{Op: "contribute", Path: f.root, Err: os.ErrPermission}
	}

	path := filepath.Join(f.root, contributionsDir, c.ID+".json")
	isNew := true
	if _, err := os.Stat(path); err == nil {
		isNew = false
	}
	if err := writeJSON(path, c); err != nil {
		return err
	}

	if isNew {
		f.manifest.TotalContributions++
	}
	if c.UserID != "" && !f.users[c.UserID] {
		f.users[c.UserID] = true
		f.manifest.TotalUsers = len(f.users)
	}
	f.manifest.LastUpdated = graph.Timestamp()
	return f.writeManifest()
}

// Contributions returns the contributions attached to a node, sorted by
// creation time.
func (f *FileStore) Contributions(ctx context.Context, nodeID string) ([]*Contribution, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	dir := filepath.Join(f.root, contributionsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "readdir", Path: dir, Err: err}
	}

	var result []*Contribution
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var c Contribution
		if json.Unmarshal(data, &c) != nil {
			continue
		}
		if c.NodeID == nodeID {
			result = append(result, &c)
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

// StoreEmbeddings persists node embeddings as JSON arrays.
func (f *FileStore) StoreEmbeddings(ctx context.Context, embeddings []NodeEmbedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readOnly {
		return &StorageError{Op: "embeddings", Path: f.root, Err: os.ErrPermission}
	}

	for _, emb := range embeddings {
		path := filepath.Join(f.root, embeddingsDir, fileName(emb.NodeID))
		if err := writeJSON(path, emb); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileStore) loadEmbeddings() (map[string][]float32, error) {
	dir := filepath.Join(f.root, embeddingsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "readdir", Path: dir, Err: err}
	}

	result := make(map[string][]float32)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var emb NodeEmbedding
		if json.Unmarshal(data, &emb) == nil && emb.NodeID != "" {
			result[emb.NodeID] = emb.Embedding
		}
	}
	return result, nil
}

// VectorSearch finds nodes closest to the given vector.
func (f *FileStore) VectorSearch(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	embeddings, err := f.loadEmbeddings()
	if err != nil {
		return nil, err
	}

	lookup := func(id string) *graph.Node {
		node, err := f.getLocked(id)
		if err != nil {
			return nil
		}
		return node
	}
	return searchVectors(embeddings, lookup, vector, limit), nil
}

// TextSearch performs tokenized text search over all nodes.
func (f *FileStore) TextSearch(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	nodes, err := CollectNodes(f.List(ctx, nil))
	if err != nil {
		return nil, err
	}
	return searchText(nodes, query, limit), nil
}

// HybridSearch combines text and vector search using RRF.
func (f *FileStore) HybridSearch(ctx context.Context, query string, vector []float32, limit int) ([]HybridResult, error) {
	return hybridSearch(ctx, f, query, vector, limit, 60)
}

// NodeCount returns the number of stored nodes.
func (f *FileStore) NodeCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.manifest == nil {
		return 0
	}
	return len(f.manifest.Nodes)
}

// Manifest returns a copy of the current manifest.
func (f *FileStore) Manifest(ctx context.Context) (*Manifest, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.manifest == nil {
		return nil, &StorageError{Op: "manifest", Path: f.root, Err: os.ErrInvalid}
	}

	m := *f.manifest
	m.Nodes = make(map[string]NodeSummary, len(f.manifest.Nodes))
	for id, s := range f.manifest.Nodes {
		m.Nodes[id] = s
	}
	return &m, nil
}

// Root returns the store's root directory.
func (f *FileStore) Root() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.root
}

// NodesDir returns the directory holding node JSON files, for watchers.
func (f *FileStore) NodesDir() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return filepath.Join(f.root, nodesDir)
}
