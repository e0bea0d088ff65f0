// Package resonance implements the codex scoring engine.
//
// All functions are pure and total: they never fail, unknown metadata
// falls back to neutral scores, and every returned score lies in [0,1].
// The weight tables are a fixed contract; two stores scoring the same
// node must agree on the result.
package resonance

import (
	"math"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/ontology"
)

// Factor weights for single-node resonance.
const (
	weightBaseOntological = 0.30
	weightVibrational     = 0.25
	weightFractal         = 0.20
	weightConsciousness   = 0.15
	weightQuantum         = 0.10
)

// Pairwise similarity weights.
const (
	weightPairOntological = 0.4
	weightPairVibrational = 0.3
	weightPairFractal     = 0.3
)

// Result is the outcome of scoring a single node.
type Result struct {
	// Score is the overall resonance in [0,1].
	Score float64

	// Pattern classifies the score on the pattern ladder.
	Pattern string

	// Factors breaks the score down by resonance factor.
	Factors map[string]float64
}

// Scorer computes resonance scores over the ontology registry tables.
type Scorer struct {
	reg *ontology.Registry
}

// NewScorer creates a scorer over the given registry.
func NewScorer(reg *ontology.Registry) *Scorer {
	return &Scorer{reg: reg}
}

// clamp bounds a score to [0,1].
func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Coherence computes a node's coherence score: the base score of its
// resonance pattern, raised by up to 0.1 for vibrational axes and up to
// 0.1 for harmonic relationships.
func (s *Scorer) Coherence(node *graph.Node) float64 {
	score := s.reg.PatternScore(node.Meta.ResonancePattern)
	score += math.Min(0.1, float64(len(node.Meta.VibrationalAxes))*0.02)
	score += math.Min(0.1, float64(len(node.Meta.Harmonics))*0.01)
	return clamp(score)
}

// SelfSimilarity computes a node's fractal self-similarity: shallow
// nodes with many children are the most self-similar.
func (s *Scorer) SelfSimilarity(node *graph.Node) float64 {
	depthScore := math.Max(0, 1-float64(node.Structure.Depth)*0.1)
	childScore := math.Min(1, float64(len(node.Children))*0.2)
	return clamp((depthScore + childScore) / 2)
}

// NodeResonance computes a node's overall resonance as the weighted
// combination of five factors, and classifies it on the pattern ladder.
func (s *Scorer) NodeResonance(node *graph.Node) Result {
	factors := map[string]float64{
		"base_ontological":        s.baseOntological(node),
		"vibrational_alignment":   s.vibrationalAlignment(node),
		"fractal_self_similarity": s.fractalResonance(node),
		"consciousness_awareness": s.reg.ConsciousnessScore(node.Meta.ConsciousnessLevel),
		"quantum_algorithmic":     s.reg.QuantumScore(node.Meta.QuantumState),
	}

	score := factors["base_ontological"]*weightBaseOntological +
		factors["vibrational_alignment"]*weightVibrational +
		factors["fractal_self_similarity"]*weightFractal +
		factors["consciousness_awareness"]*weightConsciousness +
		factors["quantum_algorithmic"]*weightQuantum
	score = clamp(score)

	return Result{
		Score:   score,
		Pattern: Pattern(score),
		Factors: factors,
	}
}

// Pattern classifies a resonance score on the pattern ladder.
func Pattern(score float64) string {
	switch {
	case score >= 0.8:
		return "harmonic"
	case score >= 0.6:
		return "sympathetic"
	case score >= 0.4:
		return "neutral"
	case score >= 0.2:
		return "dissonant"
	default:
		return "destructive"
	}
}

// baseOntological scores the node's water state, chakra and frequency
// bands.
func (s *Scorer) baseOntological(node *graph.Node) float64 {
	score := 0.0

	switch ontology.WaterStateKey(node.Meta.WaterState) {
	case "ws.ice", "ws.structured", "ws.quantum_coherent":
		score += 0.3
	case "ws.liquid", "ws.vapor", "ws.plasma":
		score += 0.2
	default:
		score += 0.1
	}

	switch ontology.ChakraKey(node.Meta.Chakra) {
	case "ch.crown", "ch.heart", "ch.third_eye":
		score += 0.25
	case "ch.throat", "ch.solar_plexus":
		score += 0.2
	default:
		score += 0.15
	}

	switch ontology.FrequencyKey(node.Meta.BaseFrequencyHz) {
	case "freq.963", "freq.852", "freq.741":
		score += 0.25
	case "freq.639", "freq.528":
		score += 0.2
	default:
		score += 0.15
	}

	return math.Min(1, score)
}

// vibrationalAlignment scores the node's vibrational axes: neutral 0.5
// with no axes, balanced 0.7 otherwise.
func (s *Scorer) vibrationalAlignment(node *graph.Node) float64 {
	if len(node.Meta.VibrationalAxes) == 0 {
		return 0.5
	}
	return 0.7
}

// fractalResonance scores the node's position in the fractal hierarchy.
func (s *Scorer) fractalResonance(node *graph.Node) float64 {
	score := 0.0

	switch depth := node.Structure.Depth; {
	case depth == 0:
		score += 0.4
	case depth <= 3:
		score += 0.3
	case depth <= 8:
		score += 0.2
	default:
		score += 0.1
	}

	score += node.Meta.SelfSimilarity * 0.3

	if len(node.Meta.CrossScale) > 0 {
		// Four scales: micro, meso, macro, meta.
		completeness := math.Min(1, float64(len(node.Meta.CrossScale))/4.0)
		score += completeness * 0.3
	}

	return math.Min(1, score)
}

// Pairwise computes the symmetric similarity of two nodes in [0,1].
func (s *Scorer) Pairwise(a, b *graph.Node) float64 {
	score := s.ontologicalSimilarity(a, b)*weightPairOntological +
		s.vibrationalSimilarity(a, b)*weightPairVibrational +
		s.fractalRelationship(a, b)*weightPairFractal
	return clamp(score)
}

func (s *Scorer) ontologicalSimilarity(a, b *graph.Node) float64 {
	similarity := 0.0

	wsA := ontology.WaterStateKey(a.Meta.WaterState)
	wsB := ontology.WaterStateKey(b.Meta.WaterState)
	if wsA == wsB && wsA != "" {
		similarity += 0.3
	} else if s.reg.WaterStatesRelated(wsA, wsB) {
		similarity += 0.2
	}

	chA := ontology.ChakraKey(a.Meta.Chakra)
	chB := ontology.ChakraKey(b.Meta.Chakra)
	if chA == chB && chA != "" {
		similarity += 0.25
	} else if s.reg.ChakrasRelated(chA, chB) {
		similarity += 0.15
	}

	if a.Meta.BaseFrequencyHz == b.Meta.BaseFrequencyHz && a.Meta.BaseFrequencyHz != 0 {
		similarity += 0.25
	} else if frequenciesRelated(a.Meta.BaseFrequencyHz, b.Meta.BaseFrequencyHz) {
		similarity += 0.15
	}

	layerDiff := abs(a.Structure.Depth - b.Structure.Depth)
	if layerDiff == 0 {
		similarity += 0.2
	} else if layerDiff <= 2 {
		similarity += 0.1
	}

	return math.Min(1, similarity)
}

// frequenciesRelated reports harmonic kinship: octaves or frequencies
// within 100 Hz.
func frequenciesRelated(a, b float64) bool {
	if a == 0 || b == 0 {
		return false
	}
	if a == b {
		return true
	}
	if a*2 == b || b*2 == a {
		return true
	}
	return math.Abs(a-b) <= 100
}

func (s *Scorer) vibrationalSimilarity(a, b *graph.Node) float64 {
	if len(a.Meta.VibrationalAxes) == 0 || len(b.Meta.VibrationalAxes) == 0 {
		return 0.5
	}

	axesB := make(map[string]bool, len(b.Meta.VibrationalAxes))
	for _, axis := range b.Meta.VibrationalAxes {
		axesB[axis] = true
	}
	common := 0
	for _, axis := range a.Meta.VibrationalAxes {
		if axesB[axis] {
			common++
		}
	}

	if common == 0 {
		return 0.3
	}
	return math.Min(1, 0.3+float64(common)*0.2)
}

func (s *Scorer) fractalRelationship(a, b *graph.Node) float64 {
	if a.ID == b.ParentID || b.ID == a.ParentID {
		return 0.8
	}
	if a.ParentID != "" && a.ParentID == b.ParentID {
		return 0.6
	}
	if a.Structure.Depth == b.Structure.Depth {
		return 0.5
	}
	if abs(a.Structure.Depth-b.Structure.Depth) == 1 {
		return 0.4
	}
	return 0.2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Score computes and writes a node's derived scores in place: self
// similarity, overall resonance pattern and coherence.
func (s *Scorer) Score(node *graph.Node) Result {
	node.Meta.SelfSimilarity = s.SelfSimilarity(node)
	result := s.NodeResonance(node)
	node.Meta.ResonancePattern = result.Pattern
	node.Meta.Coherence = s.Coherence(node)
	node.Meta.Dissonance = clamp(1 - node.Meta.Coherence)
	return result
}
