package storage

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/living-codex/codex-go/internal/graph"
)

var (
	separatorRe = regexp.MustCompile(`[_\.\-:\s]+`)
	camelRe     = regexp.MustCompile(`([a-z])([A-Z])`)
)

// tokenize splits text into searchable tokens.
// Handles CamelCase names like "LiquidCrystalBoundary" and hierarchical
// IDs like "codex:Flow:water:flow".
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	tokens := make(map[string]bool)

	for _, part := range separatorRe.Split(text, -1) {
		if part != "" {
			tokens[strings.ToLower(part)] = true
		}
	}

	camelSplit := camelRe.ReplaceAllString(text, "$1 $2")
	for _, part := range strings.Fields(separatorRe.ReplaceAllString(camelSplit, " ")) {
		if part != "" {
			tokens[strings.ToLower(part)] = true
		}
	}

	result := make([]string, 0, len(tokens))
	for token := range tokens {
		result = append(result, token)
	}
	sort.Strings(result)
	return result
}

// searchText is term-frequency text search over name, content and
// archetypes, shared by all backends.
func searchText(nodes []*graph.Node, query string, limit int) []SearchResult {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return []SearchResult{}
	}
	querySet := make(map[string]bool, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = true
	}

	var results []SearchResult
	for _, node := range nodes {
		text := node.Name + " " + node.Content + " " + strings.Join(node.Meta.Archetypes, " ")
		score := 0.0
		for _, token := range tokenize(text) {
			if querySet[token] {
				score++
			}
		}
		if score <= 0 {
			continue
		}

		snippet := node.Content
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		results = append(results, SearchResult{
			NodeID:     node.ID,
			Score:      score,
			Name:       node.Name,
			Type:       string(node.Type),
			WaterState: node.Meta.WaterState,
			Snippet:    snippet,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].NodeID < results[j].NodeID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []SearchResult{}
	}
	return results
}

// searchVectors ranks stored embeddings against the query vector by
// cosine similarity.
func searchVectors(embeddings map[string][]float32, lookup func(id string) *graph.Node, vector []float32, limit int) []SearchResult {
	type scored struct {
		id    string
		score float64
	}
	var hits []scored
	for id, emb := range embeddings {
		sim := CosineSimilarity(vector, emb)
		if sim > 0 {
			hits = append(hits, scored{id: id, score: sim})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].id < hits[j].id
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		node := lookup(h.id)
		if node == nil {
			continue
		}
		snippet := node.Content
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		results = append(results, SearchResult{
			NodeID:     node.ID,
			Score:      h.score,
			Name:       node.Name,
			Type:       string(node.Type),
			WaterState: node.Meta.WaterState,
			Snippet:    snippet,
		})
	}
	return results
}

// CosineSimilarity computes the cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// hybridSearch combines text and vector search using Reciprocal Rank
// Fusion. k is the RRF constant (typically 60).
func hybridSearch(ctx context.Context, s Store, query string, queryVector []float32, limit, k int) ([]HybridResult, error) {
	textResults, err := s.TextSearch(ctx, query, limit*2)
	if err != nil {
		textResults = []SearchResult{}
	}

	var vectorResults []SearchResult
	if len(queryVector) > 0 {
		vectorResults, err = s.VectorSearch(ctx, queryVector, limit*2)
		if err != nil {
			vectorResults = []SearchResult{}
		}
	}

	rrfScores := make(map[string]float64)
	metadata := make(map[string]SearchResult)

	for i, result := range textResults {
		rrfScores[result.NodeID] += 1.0 / float64(k+i)
		if _, exists := metadata[result.NodeID]; !exists {
			metadata[result.NodeID] = result
		}
	}
	for i, result := range vectorResults {
		rrfScores[result.NodeID] += 1.0 / float64(k+i)
		if _, exists := metadata[result.NodeID]; !exists {
			metadata[result.NodeID] = result
		}
	}

	results := make([]HybridResult, 0, len(rrfScores))
	for nodeID, score := range rrfScores {
		meta := metadata[nodeID]
		results = append(results, HybridResult{
			NodeID:     nodeID,
			Score:      score,
			Name:       meta.Name,
			Type:       meta.Type,
			WaterState: meta.WaterState,
			Snippet:    meta.Snippet,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].NodeID < results[j].NodeID
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}
