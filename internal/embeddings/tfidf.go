package embeddings

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/living-codex/codex-go/internal/graph"
)

// EmbeddingDimension is the dimension of generated embeddings.
const EmbeddingDimension = 100

var (
	separatorRe = regexp.MustCompile(`[_\.\-:\s]+`)
	camelRe     = regexp.MustCompile(`([a-z])([A-Z])`)
)

// TFIDFEmbedder generates TF-IDF based embeddings for codex nodes.
// This is a simple embedding model that doesn't require external ML
// models. It must be fitted on a corpus before Embed produces a
// meaningful vector; an unfitted embedder maps everything to zero.
type TFIDFEmbedder struct {
	mu         sync.RWMutex
	vocab      map[string]int     // term -> embedding dimension
	idf        map[string]float64 // term -> inverse document frequency
	corpusSize int
}

// NewTFIDFEmbedder creates a new, unfitted TF-IDF embedder.
func NewTFIDFEmbedder() *TFIDFEmbedder {
	return &TFIDFEmbedder{
		vocab: make(map[string]int),
		idf:   make(map[string]float64),
	}
}

// Fit builds the vocabulary and IDF table from a node corpus.
// Fitting is order-sensitive, so the corpus is processed in ID order:
// refitting on the same set of nodes reproduces the same vector space,
// which keeps query embeddings comparable with vectors stored earlier.
func (e *TFIDFEmbedder) Fit(nodes []*graph.Node) {
	sorted := make([]*graph.Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	docs := make([]string, 0, len(sorted))
	for _, node := range sorted {
		docs = append(docs, GenerateEmbeddingText(node))
	}
	e.fitDocs(docs)
}

// fitDocs assigns vocabulary slots in first-seen order, capped at the
// embedding dimension, and computes idf = log(N/df) for every term.
func (e *TFIDFEmbedder) fitDocs(docs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.vocab = make(map[string]int, EmbeddingDimension)
	e.idf = make(map[string]float64)
	e.corpusSize = len(docs)

	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range tokenize(doc) {
			if seen[term] {
				continue
			}
			seen[term] = true
			docFreq[term]++
			if _, ok := e.vocab[term]; !ok && len(e.vocab) < EmbeddingDimension {
				e.vocab[term] = len(e.vocab)
			}
		}
	}

	for term, df := range docFreq {
		e.idf[term] = math.Log(float64(e.corpusSize) / float64(df))
	}
}

// Embed generates an L2-normalized TF-IDF vector for a document.
// Terms outside the fitted vocabulary contribute nothing.
func (e *TFIDFEmbedder) Embed(doc string) []float32 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	embedding := make([]float32, EmbeddingDimension)

	tf := make(map[string]int)
	for _, term := range tokenize(doc) {
		tf[term]++
	}

	maxTF := 0.0
	for _, count := range tf {
		if float64(count) > maxTF {
			maxTF = float64(count)
		}
	}

	for term, count := range tf {
		idx, ok := e.vocab[term]
		if !ok {
			continue
		}
		idf := e.idf[term]
		if idf == 0 {
			idf = 1.0 // floor so ubiquitous terms still contribute
		}
		embedding[idx] = float32(float64(count) / maxTF * idf)
	}

	// L2 normalize
	norm := 0.0
	for _, v := range embedding {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 && !math.IsNaN(norm) {
		for i := range embedding {
			val := embedding[i] / float32(norm)
			if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
				val = 0
			}
			embedding[i] = val
		}
	}

	return embedding
}

// EmbedNode generates an embedding for a codex node.
func (e *TFIDFEmbedder) EmbedNode(node *graph.Node) []float32 {
	return e.Embed(GenerateEmbeddingText(node))
}

// EmbedNodes fits the embedder on the nodes and returns one embedding
// per node, aligned with the input order.
func (e *TFIDFEmbedder) EmbedNodes(nodes []*graph.Node) [][]float32 {
	e.Fit(nodes)

	out := make([][]float32, len(nodes))
	for i, node := range nodes {
		out[i] = e.EmbedNode(node)
	}
	return out
}

// tokenize splits text into terms, breaking CamelCase names and
// hierarchical IDs apart the same way the store's search tokenizer
// does. Duplicates are kept so term frequency survives.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	text = camelRe.ReplaceAllString(text, "$1 $2")

	var terms []string
	for _, part := range separatorRe.Split(text, -1) {
		part = strings.ToLower(strings.Trim(part, ",;()[]{}'\"!?"))
		if len(part) >= 2 {
			terms = append(terms, part)
		}
	}
	return terms
}
