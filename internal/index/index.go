// Package index provides the ontological query engine.
//
// The engine maintains per-field inverted indexes over node metadata and
// answers exact, range, fuzzy, composite and theme queries. Results come
// back in node insertion order. Querying a field or value the index has
// never seen returns an empty result, never an error.
package index

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/ontology"
)

// Field names an indexed metadata dimension.
type Field string

const (
	FieldWaterState    Field = "water_state"
	FieldChakra        Field = "chakra"
	FieldFrequency     Field = "frequency"
	FieldNodeType      Field = "node_type"
	FieldConsciousness Field = "consciousness_level"
	FieldQuantumState  Field = "quantum_state"
	FieldPattern       Field = "resonance_pattern"
	FieldEpistemic     Field = "epistemic_label"
	FieldDepth         Field = "fractal_depth"
	FieldCoherence     Field = "coherence_score"
	FieldDissonance    Field = "dissonance_level"
	FieldName          Field = "name"
)

// Kind selects the query strategy.
type Kind string

const (
	KindExact     Kind = "exact"
	KindRange     Kind = "range"
	KindFuzzy     Kind = "fuzzy"
	KindComposite Kind = "composite"
	KindTheme     Kind = "theme"
)

// Range operators.
const (
	OpEq  = "eq"
	OpNe  = "ne"
	OpGt  = "gt"
	OpGte = "gte"
	OpLt  = "lt"
	OpLte = "lte"
)

// Query describes one index lookup.
type Query struct {
	Kind  Kind
	Field Field
	Value string

	// Op and Target drive range queries.
	Op     string
	Target float64

	// SecondaryField and SecondaryValue form the second leg of a
	// composite query.
	SecondaryField Field
	SecondaryValue string

	// Theme names a theme query; the other fields are ignored.
	Theme string
}

// Key is the canonical cache key of the query.
func (q Query) Key() string {
	return strings.Join([]string{
		string(q.Kind), string(q.Field), q.Value,
		q.Op, strconv.FormatFloat(q.Target, 'f', -1, 64),
		string(q.SecondaryField), q.SecondaryValue, q.Theme,
	}, "|")
}

// Entry is one index hit.
type Entry struct {
	NodeID    string  `json:"node_id"`
	Name      string  `json:"name"`
	NodeType  string  `json:"node_type"`
	Resonance float64 `json:"resonance"`
}

// Result is the outcome of a query.
type Result struct {
	Entries    []Entry `json:"entries"`
	TotalCount int     `json:"total_count"`
}

// Engine is the in-memory ontological index.
//
// All methods are safe for concurrent use.
type Engine struct {
	mu  sync.RWMutex
	reg *ontology.Registry

	// terms maps field -> term -> node IDs carrying the term.
	terms map[Field]map[string][]string

	// nums maps field -> node ID -> numeric value, for range queries.
	nums map[Field]map[string]float64

	entries map[string]Entry
	seq     map[string]int
	nextSeq int

	cache *queryCache
}

// NewEngine creates an empty index over the given registry.
func NewEngine(reg *ontology.Registry) *Engine {
	return &Engine{
		reg:     reg,
		terms:   make(map[Field]map[string][]string),
		nums:    make(map[Field]map[string]float64),
		entries: make(map[string]Entry),
		seq:     make(map[string]int),
		cache:   newQueryCache(),
	}
}

// Index adds or refreshes a node in every per-field index. Re-indexing
// an already indexed node replaces its previous postings. Any cached
// query result is invalidated.
func (e *Engine) Index(node *graph.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.entries[node.ID]; ok {
		e.removeUnlocked(node.ID)
	} else if _, ok := e.seq[node.ID]; !ok {
		e.seq[node.ID] = e.nextSeq
		e.nextSeq++
	}

	e.entries[node.ID] = Entry{
		NodeID:    node.ID,
		Name:      node.Name,
		NodeType:  string(node.Type),
		Resonance: node.Meta.Resonance,
	}

	for field, term := range termsFor(node) {
		e.post(field, term, node.ID)
	}
	for field, value := range numsFor(node) {
		if e.nums[field] == nil {
			e.nums[field] = make(map[string]float64)
		}
		e.nums[field][node.ID] = value
	}

	e.cache.purge()
}

// Remove drops a node from every index and invalidates cached results.
func (e *Engine) Remove(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeUnlocked(nodeID)
	delete(e.seq, nodeID)
	e.cache.purge()
}

func (e *Engine) removeUnlocked(nodeID string) {
	delete(e.entries, nodeID)
	for field, byTerm := range e.terms {
		for term, ids := range byTerm {
			for i, id := range ids {
				if id == nodeID {
					byTerm[term] = append(ids[:i:i], ids[i+1:]...)
					break
				}
			}
			if len(byTerm[term]) == 0 {
				delete(byTerm, term)
			}
		}
		if len(byTerm) == 0 {
			delete(e.terms, field)
		}
	}
	for field, byNode := range e.nums {
		delete(byNode, nodeID)
		if len(byNode) == 0 {
			delete(e.nums, field)
		}
	}
}

func (e *Engine) post(field Field, term, nodeID string) {
	if term == "" {
		return
	}
	if e.terms[field] == nil {
		e.terms[field] = make(map[string][]string)
	}
	e.terms[field][term] = append(e.terms[field][term], nodeID)
}

// termsFor derives the per-field index terms of a node. String
// dimensions normalize to ontology keys so that callers can query with
// either the display name or the key.
func termsFor(node *graph.Node) map[Field]string {
	m := map[Field]string{
		FieldWaterState:    ontology.WaterStateKey(node.Meta.WaterState),
		FieldChakra:        ontology.ChakraKey(node.Meta.Chakra),
		FieldFrequency:     ontology.FrequencyKey(node.Meta.BaseFrequencyHz),
		FieldNodeType:      string(node.Type),
		FieldConsciousness: node.Meta.ConsciousnessLevel,
		FieldQuantumState:  node.Meta.QuantumState,
		FieldPattern:       node.Meta.ResonancePattern,
		FieldEpistemic:     node.Meta.Epistemic,
		FieldDepth:         strconv.Itoa(node.Structure.Depth),
	}
	for field, term := range m {
		if term == "" {
			delete(m, field)
		}
	}
	return m
}

func numsFor(node *graph.Node) map[Field]float64 {
	return map[Field]float64{
		FieldDepth:      float64(node.Structure.Depth),
		FieldCoherence:  node.Meta.Coherence,
		FieldDissonance: node.Meta.Dissonance,
		FieldFrequency:  node.Meta.BaseFrequencyHz,
	}
}

// NodeCount reports how many nodes the engine has indexed.
func (e *Engine) NodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}

// Query answers a lookup, serving repeated queries from the LRU cache.
func (e *Engine) Query(q Query) Result {
	key := q.Key()
	if cached, ok := e.cache.get(key); ok {
		return cached
	}

	e.mu.RLock()
	var ids []string
	switch q.Kind {
	case KindExact:
		ids = e.exactUnlocked(q.Field, q.Value)
	case KindRange:
		ids = e.rangeUnlocked(q.Field, q.Op, q.Target)
	case KindFuzzy:
		ids = e.fuzzyUnlocked(q.Field, q.Value)
	case KindComposite:
		ids = intersect(
			e.exactUnlocked(q.Field, q.Value),
			e.exactUnlocked(q.SecondaryField, q.SecondaryValue),
		)
	case KindTheme:
		ids = e.themeUnlocked(q.Theme)
	}
	result := e.collectUnlocked(ids)
	e.mu.RUnlock()

	e.cache.put(key, result)
	return result
}

// Exact returns the nodes whose field carries exactly the given value.
func (e *Engine) Exact(field Field, value string) Result {
	return e.Query(Query{Kind: KindExact, Field: field, Value: value})
}

// Range returns the nodes whose numeric field satisfies op against
// target.
func (e *Engine) Range(field Field, op string, target float64) Result {
	return e.Query(Query{Kind: KindRange, Field: field, Op: op, Target: target})
}

// Composite returns the nodes matching both exact conditions.
func (e *Engine) Composite(field Field, value string, secondaryField Field, secondaryValue string) Result {
	return e.Query(Query{
		Kind: KindComposite, Field: field, Value: value,
		SecondaryField: secondaryField, SecondaryValue: secondaryValue,
	})
}

// ThemeQuery returns the nodes matching every leg of a named theme:
// the intersection of its water state, chakra and frequency postings.
func (e *Engine) ThemeQuery(name string) Result {
	return e.Query(Query{Kind: KindTheme, Theme: name})
}

func (e *Engine) exactUnlocked(field Field, value string) []string {
	byTerm := e.terms[field]
	if byTerm == nil {
		return nil
	}
	return byTerm[normalizeValue(field, value)]
}

func (e *Engine) rangeUnlocked(field Field, op string, target float64) []string {
	byNode := e.nums[field]
	if byNode == nil {
		return nil
	}
	var ids []string
	for id, value := range byNode {
		if rangeMatch(value, op, target) {
			ids = append(ids, id)
		}
	}
	return ids
}

// fuzzyUnlocked matches case-insensitive substrings of node names or
// types.
func (e *Engine) fuzzyUnlocked(field Field, value string) []string {
	needle := strings.ToLower(value)
	if needle == "" {
		return nil
	}
	var ids []string
	for id, entry := range e.entries {
		var haystack string
		switch field {
		case FieldName:
			haystack = entry.Name
		case FieldNodeType:
			haystack = entry.NodeType
		default:
			return nil
		}
		if strings.Contains(strings.ToLower(haystack), needle) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (e *Engine) themeUnlocked(name string) []string {
	theme, ok := e.reg.Theme(name)
	if !ok {
		return nil
	}
	return intersect(
		intersect(
			e.exactUnlocked(FieldWaterState, theme.WaterState),
			e.exactUnlocked(FieldChakra, theme.Chakra),
		),
		e.exactUnlocked(FieldFrequency, theme.Frequency),
	)
}

// collectUnlocked materializes entries sorted by insertion order.
func (e *Engine) collectUnlocked(ids []string) Result {
	entries := make([]Entry, 0, len(ids))
	order := make(map[string]int, len(ids))
	for _, id := range ids {
		entry, ok := e.entries[id]
		if !ok {
			continue
		}
		entries = append(entries, entry)
		order[id] = e.seq[id]
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return order[entries[i].NodeID] < order[entries[j].NodeID]
	})
	return Result{Entries: entries, TotalCount: len(entries)}
}

// normalizeValue folds display names into ontology keys so "Plasma",
// "plasma" and "ws.plasma" all hit the same postings.
func normalizeValue(field Field, value string) string {
	switch field {
	case FieldWaterState:
		if !strings.HasPrefix(value, "ws.") {
			return ontology.WaterStateKey(value)
		}
	case FieldChakra:
		if !strings.HasPrefix(value, "ch.") {
			return ontology.ChakraKey(value)
		}
	case FieldFrequency:
		if !strings.HasPrefix(value, "freq.") {
			if hz, err := strconv.ParseFloat(value, 64); err == nil {
				return ontology.FrequencyKey(hz)
			}
		}
	}
	return value
}

func rangeMatch(value float64, op string, target float64) bool {
	switch op {
	case OpEq:
		return value == target
	case OpNe:
		return value != target
	case OpGt:
		return value > target
	case OpLt:
		return value < target
	case OpGte:
		return value >= target
	case OpLte:
		return value <= target
	default:
		return false
	}
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inB := make(map[string]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}
	var out []string
	for _, id := range a {
		if inB[id] {
			out = append(out, id)
		}
	}
	return out
}

// Stats summarizes the index for status reporting.
func (e *Engine) Stats() map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := map[string]int{"nodes": len(e.entries)}
	for field, byTerm := range e.terms {
		stats[fmt.Sprintf("terms_%s", field)] = len(byTerm)
	}
	return stats
}
