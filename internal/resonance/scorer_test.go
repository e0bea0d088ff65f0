package resonance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/ontology"
)

func newScorer() *Scorer {
	return NewScorer(ontology.NewRegistry())
}

func TestPattern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "harmonic", Pattern(0.8))
	assert.Equal(t, "harmonic", Pattern(1.0))
	assert.Equal(t, "sympathetic", Pattern(0.6))
	assert.Equal(t, "neutral", Pattern(0.4))
	assert.Equal(t, "dissonant", Pattern(0.2))
	assert.Equal(t, "destructive", Pattern(0.1))
	assert.Equal(t, "destructive", Pattern(0.0))
}

func TestScorer_Coherence(t *testing.T) {
	t.Parallel()

	s := newScorer()

	t.Run("PatternBase", func(t *testing.T) {
		t.Parallel()
		node := &graph.Node{ID: "x", Meta: graph.Meta{ResonancePattern: "harmonic"}}
		assert.Equal(t, 1.0, s.Coherence(node))

		node.Meta.ResonancePattern = "destructive"
		assert.Equal(t, 0.0, s.Coherence(node))
	})

	t.Run("AxesAndHarmonicsRaise", func(t *testing.T) {
		t.Parallel()
		node := &graph.Node{ID: "x", Meta: graph.Meta{
			ResonancePattern: "neutral",
			VibrationalAxes:  []string{"a", "b"},
			Harmonics:        []string{"n1", "n2", "n3"},
		}}
		assert.InDelta(t, 0.5+0.04+0.03, s.Coherence(node), 1e-9)
	})

	t.Run("RaisesAreCapped", func(t *testing.T) {
		t.Parallel()
		axes := make([]string, 20)
		harmonics := make([]string, 20)
		node := &graph.Node{ID: "x", Meta: graph.Meta{
			ResonancePattern: "neutral",
			VibrationalAxes:  axes,
			Harmonics:        harmonics,
		}}
		assert.InDelta(t, 0.7, s.Coherence(node), 1e-9)
	})

	t.Run("Clamped", func(t *testing.T) {
		t.Parallel()
		node := &graph.Node{ID: "x", Meta: graph.Meta{
			ResonancePattern: "harmonic",
			VibrationalAxes:  []string{"a", "b", "c", "d", "e"},
		}}
		assert.Equal(t, 1.0, s.Coherence(node))
	})
}

func TestScorer_SelfSimilarity(t *testing.T) {
	t.Parallel()

	s := newScorer()

	root := &graph.Node{ID: "x", Children: []string{"a", "b", "c", "d", "e"}}
	assert.Equal(t, 1.0, s.SelfSimilarity(root))

	deep := &graph.Node{ID: "x", Structure: graph.StructureInfo{Depth: 15}}
	assert.Equal(t, 0.0, s.SelfSimilarity(deep))

	mid := &graph.Node{ID: "x", Structure: graph.StructureInfo{Depth: 2}, Children: []string{"a"}}
	assert.InDelta(t, (0.8+0.2)/2, s.SelfSimilarity(mid), 1e-9)
}

func TestScorer_NodeResonance(t *testing.T) {
	t.Parallel()

	s := newScorer()

	t.Run("HighResonanceNode", func(t *testing.T) {
		t.Parallel()
		node := &graph.Node{
			ID: "codex:Void",
			Meta: graph.Meta{
				WaterState:         "Ice",
				Chakra:             "Crown",
				BaseFrequencyHz:    963.0,
				VibrationalAxes:    []string{"fear_trust"},
				SelfSimilarity:     1.0,
				CrossScale:         []string{"micro", "meso", "macro", "meta"},
				ConsciousnessLevel: "transcendent",
				QuantumState:       "coherent",
			},
		}

		result := s.NodeResonance(node)

		// base 0.8, vibrational 0.7, fractal 1.0, consciousness 1.0, quantum 1.0
		expected := 0.8*0.30 + 0.7*0.25 + 1.0*0.20 + 1.0*0.15 + 1.0*0.10
		assert.InDelta(t, expected, result.Score, 1e-9)
		assert.Equal(t, "harmonic", result.Pattern)
	})

	t.Run("EmptyNodeIsBounded", func(t *testing.T) {
		t.Parallel()
		result := s.NodeResonance(&graph.Node{ID: "x"})

		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 1.0)
		assert.NotEmpty(t, result.Pattern)
	})

	t.Run("Deterministic", func(t *testing.T) {
		t.Parallel()
		node := &graph.Node{ID: "x", Meta: graph.Meta{WaterState: "Liquid", Chakra: "Heart"}}
		assert.Equal(t, s.NodeResonance(node), s.NodeResonance(node))
	})
}

func TestScorer_Pairwise(t *testing.T) {
	t.Parallel()

	s := newScorer()

	t.Run("IdenticalOntology", func(t *testing.T) {
		t.Parallel()
		a := &graph.Node{ID: "a", Meta: graph.Meta{
			WaterState: "Liquid", Chakra: "Heart", BaseFrequencyHz: 639.0,
			VibrationalAxes: []string{"fear_trust"},
		}}
		b := &graph.Node{ID: "b", Meta: graph.Meta{
			WaterState: "Liquid", Chakra: "Heart", BaseFrequencyHz: 639.0,
			VibrationalAxes: []string{"fear_trust"},
		}}

		// ontological 1.0, vibrational 0.5, fractal same-depth 0.5
		expected := 1.0*0.4 + 0.5*0.3 + 0.5*0.3
		assert.InDelta(t, expected, s.Pairwise(a, b), 1e-9)
	})

	t.Run("Symmetric", func(t *testing.T) {
		t.Parallel()
		a := &graph.Node{ID: "a", Meta: graph.Meta{WaterState: "Ice", Chakra: "Crown", BaseFrequencyHz: 963}}
		b := &graph.Node{ID: "b", Meta: graph.Meta{WaterState: "Liquid", Chakra: "Heart", BaseFrequencyHz: 639}}

		assert.Equal(t, s.Pairwise(a, b), s.Pairwise(b, a))
	})

	t.Run("ParentChildBoost", func(t *testing.T) {
		t.Parallel()
		parent := &graph.Node{ID: "codex:Flow"}
		child := &graph.Node{ID: "codex:Flow:water:flow", ParentID: "codex:Flow",
			Structure: graph.StructureInfo{Depth: 1}}
		stranger := &graph.Node{ID: "codex:Void", Structure: graph.StructureInfo{Depth: 1}}

		assert.Greater(t, s.Pairwise(parent, child), s.Pairwise(parent, stranger))
	})

	t.Run("RelatedWaterStates", func(t *testing.T) {
		t.Parallel()
		a := &graph.Node{ID: "a", Meta: graph.Meta{WaterState: "Ice"}}
		b := &graph.Node{ID: "b", Meta: graph.Meta{WaterState: "Structured"}}
		c := &graph.Node{ID: "c", Meta: graph.Meta{WaterState: "Plasma"}}

		assert.Greater(t, s.Pairwise(a, b), s.Pairwise(a, c))
	})

	t.Run("Bounded", func(t *testing.T) {
		t.Parallel()
		a := &graph.Node{ID: "a"}
		b := &graph.Node{ID: "b"}
		score := s.Pairwise(a, b)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	})
}

func TestFrequenciesRelated(t *testing.T) {
	t.Parallel()

	assert.True(t, frequenciesRelated(396, 396))
	assert.True(t, frequenciesRelated(396, 792)) // octave
	assert.True(t, frequenciesRelated(396, 417)) // within 100 Hz
	assert.False(t, frequenciesRelated(639, 741))
	assert.False(t, frequenciesRelated(0, 396))
}

func TestScorer_Score(t *testing.T) {
	t.Parallel()

	s := newScorer()
	node := &graph.Node{
		ID:       "codex:Void",
		Children: []string{"a", "b", "c", "d", "e"},
		Meta: graph.Meta{
			WaterState:      "Plasma",
			Chakra:          "Crown",
			BaseFrequencyHz: 963.0,
		},
	}

	result := s.Score(node)

	assert.Equal(t, result.Pattern, node.Meta.ResonancePattern)
	assert.Equal(t, 1.0, node.Meta.SelfSimilarity)
	assert.InDelta(t, 1-node.Meta.Coherence, node.Meta.Dissonance, 1e-9)
	for _, v := range []float64{node.Meta.SelfSimilarity, node.Meta.Coherence, node.Meta.Dissonance, result.Score} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
