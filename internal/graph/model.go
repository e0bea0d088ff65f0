// Package graph provides the codex node data model.
//
// It defines the generic fractal node type that every subsystem shares:
// ontological metadata, parent/child structure, and the timestamp format
// used by the persisted layout.
package graph

import (
	"strings"
	"time"
)

// NodeType represents the role of a node in the codex.
type NodeType string

const (
	NodeSeed         NodeType = "seed"
	NodeLens         NodeType = "lens"
	NodeAspect       NodeType = "aspect"
	NodeConcept      NodeType = "concept"
	NodeContribution NodeType = "contribution"
)

// TimestampLayout is the wire format for node and manifest timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp returns the current UTC time in the persisted layout.
func Timestamp() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// Meta holds the ontological metadata of a node.
//
// All fields are optional; the ontology tagger backfills canonical
// defaults for known node IDs without overwriting caller-supplied values.
// Score fields are kept in [0,1].
type Meta struct {
	// WaterState is the epistemic water state (e.g. "Plasma", "Ice").
	WaterState string `json:"water_state,omitempty"`

	// Chakra is the chakra name (e.g. "Crown").
	Chakra string `json:"chakra,omitempty"`

	// ColorHex is the chakra color (e.g. "#EE82EE").
	ColorHex string `json:"color_hex,omitempty"`

	// BaseFrequencyHz is the chakra base frequency in hertz.
	BaseFrequencyHz float64 `json:"base_frequency_hz,omitempty"`

	// Planet is the planetary correspondence (e.g. "Sun").
	Planet string `json:"planet,omitempty"`

	// Archetypes are symbolic correspondences of the node.
	Archetypes []string `json:"archetypes,omitempty"`

	// ConsciousnessLevel is one of awake, sentient, self_aware,
	// meta_cognitive, transcendent.
	ConsciousnessLevel string `json:"consciousness_level,omitempty"`

	// QuantumState is one of superposition, entangled, collapsed,
	// coherent, decoherent.
	QuantumState string `json:"quantum_state,omitempty"`

	// ResonancePattern is one of harmonic, sympathetic, neutral,
	// dissonant, destructive.
	ResonancePattern string `json:"resonance_pattern,omitempty"`

	// VibrationalAxes names the axes the node participates in.
	VibrationalAxes []string `json:"vibrational_axes,omitempty"`

	// Harmonics lists IDs of harmonically related nodes.
	Harmonics []string `json:"harmonic_relationships,omitempty"`

	// CrossScale names the fractal scales the node maps across
	// (micro, meso, macro, meta).
	CrossScale []string `json:"cross_scale_mapping,omitempty"`

	// Resonance is the node's resonance score in [0,1].
	Resonance float64 `json:"resonance,omitempty"`

	// Coherence is the computed coherence score in [0,1].
	Coherence float64 `json:"coherence_score,omitempty"`

	// Dissonance is the computed dissonance level in [0,1].
	Dissonance float64 `json:"dissonance_level,omitempty"`

	// SelfSimilarity is the fractal self-similarity score in [0,1].
	SelfSimilarity float64 `json:"self_similarity_score,omitempty"`

	// Epistemic labels the node's epistemic register
	// (e.g. "speculative", "empirical").
	Epistemic string `json:"epistemic_label,omitempty"`

	// Extra carries caller-defined metadata the core does not interpret.
	Extra map[string]string `json:"extra,omitempty"`
}

// StructureInfo describes a node's position in the fractal hierarchy.
type StructureInfo struct {
	// Depth is the fractal depth; seed nodes sit at depth 0.
	Depth int `json:"depth"`

	// Lens is the expansion lens that produced the node, if any.
	Lens string `json:"lens,omitempty"`

	// Aspect is the expansion aspect within the lens, if any.
	Aspect string `json:"aspect,omitempty"`

	// Source records where the node came from (seed table, remote
	// bootstrap URL, git repository, contribution).
	Source string `json:"source,omitempty"`
}

// Node is a generic fractal codex node.
type Node struct {
	// ID is the unique hierarchical identifier.
	// Format: {parent_id}:{lens}:{aspect} for expanded nodes.
	ID string `json:"id"`

	// Type is the role of the node.
	Type NodeType `json:"type"`

	// Name is the human-readable name.
	Name string `json:"name"`

	// Content is free-form textual content.
	Content string `json:"content,omitempty"`

	// ParentID is the ID of the parent node, empty for roots.
	ParentID string `json:"parent_id,omitempty"`

	// Children are the IDs of child nodes, in creation order.
	Children []string `json:"children,omitempty"`

	// Meta is the ontological metadata.
	Meta Meta `json:"metadata"`

	// Structure is the fractal position.
	Structure StructureInfo `json:"structure"`

	// CreatedAt and UpdatedAt use TimestampLayout; UpdatedAt never
	// precedes CreatedAt.
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ChildID derives the deterministic ID of an expansion child.
// Format: {base_id}:{lens}:{aspect}
func ChildID(baseID, lens, aspect string) string {
	return baseID + ":" + lens + ":" + aspect
}

// HasChild reports whether childID is already linked under the node.
func (n *Node) HasChild(childID string) bool {
	for _, id := range n.Children {
		if id == childID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.Children = append([]string(nil), n.Children...)
	c.Meta.Archetypes = append([]string(nil), n.Meta.Archetypes...)
	c.Meta.VibrationalAxes = append([]string(nil), n.Meta.VibrationalAxes...)
	c.Meta.Harmonics = append([]string(nil), n.Meta.Harmonics...)
	c.Meta.CrossScale = append([]string(nil), n.Meta.CrossScale...)
	if n.Meta.Extra != nil {
		c.Meta.Extra = make(map[string]string, len(n.Meta.Extra))
		for k, v := range n.Meta.Extra {
			c.Meta.Extra[k] = v
		}
	}
	return &c
}

// Touch sets UpdatedAt to now, initializing CreatedAt on first write.
func (n *Node) Touch() {
	now := Timestamp()
	if n.CreatedAt == "" {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
}

// BaseID returns the seed ancestor ID (the first two segments of a
// hierarchical codex ID, e.g. "codex:Flow" for "codex:Flow:water:flow").
func BaseID(id string) string {
	parts := strings.Split(id, ":")
	if len(parts) <= 2 {
		return id
	}
	return strings.Join(parts[:2], ":")
}
