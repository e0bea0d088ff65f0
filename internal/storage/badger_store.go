package storage

import (
	"context"
	"encoding/json"
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/ontology"
)

// Key prefixes for the badger keyspace
const (
	prefixNode         = "n:" // node data
	prefixEmbedding    = "e:" // embedding data
	prefixContribution = "c:" // contribution data
	keyManifest        = "m:manifest"
)

// BadgerStore is a BadgerDB-backed Store mirroring the file layout
// semantics in a single keyspace.
type BadgerStore struct {
	mu     sync.RWMutex
	db     *badger.DB
	tagger *ontology.Tagger
	users  map[string]bool
}

// NewBadgerStore creates a badger store. The tagger, when non-nil,
// backfills ontological defaults on every read.
func NewBadgerStore(tagger *ontology.Tagger) *BadgerStore {
	return &BadgerStore{tagger: tagger}
}

// Initialize opens or creates the BadgerDB database at the given path.
func (b *BadgerStore) Initialize(path string, readOnly bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithNumMemtables(5).
		WithLoggingLevel(badger.ERROR)

	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	var err error
	b.db, err = badger.Open(opts)
	if err != nil {
		return &StorageError{Op: "open", Path: path, Err: err}
	}

	if err := b.ensureManifest(readOnly); err != nil {
		return err
	}
	return b.loadContributionUsers()
}

func (b *BadgerStore) ensureManifest(readOnly bool) error {
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyManifest))
		if err == nil {
			found = true
		}
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return &StorageError{Op: "manifest", Err: err}
	}
	if found || readOnly {
		return nil
	}

	m := &Manifest{
		Version:     ManifestVersion,
		StoreID:     uuid.NewString(),
		LastUpdated: graph.Timestamp(),
		Nodes:       make(map[string]NodeSummary),
	}
	return b.writeManifest(m)
}

func (b *BadgerStore) loadContributionUsers() error {
	b.users = make(map[string]bool)
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixContribution)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var c Contribution
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				continue
			}
			if c.UserID != "" {
				b.users[c.UserID] = true
			}
		}
		return nil
	})
}

// Close releases all resources held by the store.
func (b *BadgerStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func (b *BadgerStore) readManifest(txn *badger.Txn) (*Manifest, error) {
	item, err := txn.Get([]byte(keyManifest))
	if err != nil {
		return nil, &StorageError{Op: "manifest", Err: err}
	}
	var m Manifest
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &m)
	}); err != nil {
		return nil, &StorageError{Op: "manifest", Err: err}
	}
	if m.Nodes == nil {
		m.Nodes = make(map[string]NodeSummary)
	}
	return &m, nil
}

func (b *BadgerStore) writeManifest(m *Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return &StorageError{Op: "manifest", Err: err}
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyManifest), data)
	})
	if err != nil {
		return &StorageError{Op: "manifest", Err: err}
	}
	return nil
}

// Put validates and persists a node, then updates the manifest record.
func (b *BadgerStore) Put(ctx context.Context, node *graph.Node) error {
	if err := ValidateNode(node); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	node.Touch()
	err := b.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(node)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(prefixNode+node.ID), data); err != nil {
			return err
		}

		m, err := b.readManifest(txn)
		if err != nil {
			return err
		}
		m.Nodes[node.ID] = summarize(node)
		m.TotalNodes = len(m.Nodes)
		m.TotalSubnodes = countSubnodes(m.Nodes)
		m.LastUpdated = graph.Timestamp()

		mdata, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyManifest), mdata)
	})
	if err != nil {
		return &StorageError{Op: "put", Path: node.ID, Err: err}
	}
	return nil
}

// Get returns the node with defaults backfilled, or a NotFoundError.
func (b *BadgerStore) Get(ctx context.Context, id string) (*graph.Node, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var node graph.Node
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixNode + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &node)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Path: id, Err: err}
	}

	if b.tagger != nil {
		node.Meta = b.tagger.ApplyDefaults(node.ID, node.Meta)
	}
	return &node, nil
}

// List returns a lazy, restartable iterator over nodes matching pred.
// Badger iterates the node prefix in key order, which is ID order, and
// each value is decoded only when the iteration reaches it.
func (b *BadgerStore) List(ctx context.Context, pred func(*graph.Node) bool) iter.Seq2[*graph.Node, error] {
	return func(yield func(*graph.Node, error) bool) {
		err := b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(prefixNode)
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				var node graph.Node
				if err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &node)
				}); err != nil {
					continue
				}
				if b.tagger != nil {
					node.Meta = b.tagger.ApplyDefaults(node.ID, node.Meta)
				}
				n := node
				if pred != nil && !pred(&n) {
					continue
				}
				if !yield(&n, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(nil, &StorageError{Op: "list", Err: err})
		}
	}
}

// ByType iterates over all nodes with the given type.
func (b *BadgerStore) ByType(ctx context.Context, t graph.NodeType) iter.Seq2[*graph.Node, error] {
	return b.List(ctx, func(n *graph.Node) bool { return n.Type == t })
}

// BulkLoad persists the entire graph in a write batch, updating the
// manifest once.
func (b *BadgerStore) BulkLoad(ctx context.Context, g *graph.CodexGraph) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var m *Manifest
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		m, err = b.readManifest(txn)
		return err
	})
	if err != nil {
		return err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for node := range g.IterNodes() {
		if err := ValidateNode(node); err != nil {
			return err
		}
		node.Touch()
		data, err := json.Marshal(node)
		if err != nil {
			return &StorageError{Op: "bulkload", Path: node.ID, Err: err}
		}
		if err := wb.Set([]byte(prefixNode+node.ID), data); err != nil {
			return &StorageError{Op: "bulkload", Path: node.ID, Err: err}
		}
		m.Nodes[node.ID] = summarize(node)
	}

	m.TotalNodes = len(m.Nodes)
	m.TotalSubnodes = countSubnodes(m.Nodes)
	m.LastUpdated = graph.Timestamp()
	mdata, err := json.Marshal(m)
	if err != nil {
		return &StorageError{Op: "bulkload", Err: err}
	}
	if err := wb.Set([]byte(keyManifest), mdata); err != nil {
		return &StorageError{Op: "bulkload", Err: err}
	}

	if err := wb.Flush(); err != nil {
		return &StorageError{Op: "bulkload", Err: err}
	}
	return nil
}

// PutContribution persists a contribution record and updates the
// manifest counters.
func (b *BadgerStore) PutContribution(ctx context.Context, c *Contribution) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixContribution + c.ID)
		_, err := txn.Get(key)
		isNew := err == badger.ErrKeyNotFound

		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		m, err := b.readManifest(txn)
		if err != nil {
			return err
		}
		if isNew {
			m.TotalContributions++
		}
		if c.UserID != "" && !b.users[c.UserID] {
			b.users[c.UserID] = true
		}
		m.TotalUsers = len(b.users)
		m.LastUpdated = graph.Timestamp()

		mdata, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyManifest), mdata)
	})
	if err != nil {
		return &StorageError{Op: "contribute", Path: c.ID, Err: err}
	}
	return nil
}

// Contributions returns the contributions attached to a node.
func (b *BadgerStore) Contributions(ctx context.Context, nodeID string) ([]*Contribution, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []*Contribution
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixContribution)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var c Contribution
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				continue
			}
			if c.NodeID == nodeID {
				cc := c
				result = append(result, &cc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "contributions", Path: nodeID, Err: err}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// StoreEmbeddings persists node embeddings.
func (b *BadgerStore) StoreEmbeddings(ctx context.Context, embeddings []NodeEmbedding) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.db.Update(func(txn *badger.Txn) error {
		for _, emb := range embeddings {
			data, err := json.Marshal(emb.Embedding)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(prefixEmbedding+emb.NodeID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &StorageError{Op: "embeddings", Err: err}
	}
	return nil
}

// VectorSearch finds nodes closest to the given vector.
func (b *BadgerStore) VectorSearch(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	embeddings := make(map[string][]float32)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixEmbedding)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), prefixEmbedding)
			var emb []float32
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &emb)
			}); err != nil {
				continue
			}
			embeddings[id] = emb
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "vectorsearch", Err: err}
	}

	lookup := func(id string) *graph.Node {
		node, err := b.getUnlocked(id)
		if err != nil {
			return nil
		}
		return node
	}
	return searchVectors(embeddings, lookup, vector, limit), nil
}

// getUnlocked reads a node without taking the store lock; callers hold
// at least a read lock.
func (b *BadgerStore) getUnlocked(id string) (*graph.Node, error) {
	var node graph.Node
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixNode + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &node)
		})
	})
	if err != nil {
		return nil, err
	}
	if b.tagger != nil {
		node.Meta = b.tagger.ApplyDefaults(node.ID, node.Meta)
	}
	return &node, nil
}

// TextSearch performs tokenized text search over all nodes.
func (b *BadgerStore) TextSearch(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	nodes, err := CollectNodes(b.List(ctx, nil))
	if err != nil {
		return nil, err
	}
	return searchText(nodes, query, limit), nil
}

// HybridSearch combines text and vector search using RRF.
func (b *BadgerStore) HybridSearch(ctx context.Context, query string, vector []float32, limit int) ([]HybridResult, error) {
	return hybridSearch(ctx, b, query, vector, limit, 60)
}

// NodeCount returns the number of stored nodes.
func (b *BadgerStore) NodeCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	_ = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixNode)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Manifest returns the current manifest.
func (b *BadgerStore) Manifest(ctx context.Context) (*Manifest, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var m *Manifest
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		m, err = b.readManifest(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
