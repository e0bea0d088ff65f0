package embeddings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/living-codex/codex-go/internal/graph"
)

func TestGenerateEmbeddingText(t *testing.T) {
	t.Parallel()

	t.Run("SeedNode", func(t *testing.T) {
		node := &graph.Node{
			ID:   "codex:Void",
			Type: graph.NodeSeed,
			Name: "Void",
			Meta: graph.Meta{
				WaterState: "Plasma",
				Chakra:     "Crown",
				Planet:     "Sun",
				Archetypes: []string{"Primordial", "Chaos", "Potential"},
			},
		}

		text := GenerateEmbeddingText(node)

		assert.Contains(t, text, "seed Void")
		assert.Contains(t, text, "water state Plasma")
		assert.Contains(t, text, "chakra Crown")
		assert.Contains(t, text, "planet Sun")
		assert.Contains(t, text, "Archetypes: Primordial Chaos Potential")
	})

	t.Run("ExpandedNode", func(t *testing.T) {
		node := &graph.Node{
			ID:   "codex:Flow:water:flow",
			Type: graph.NodeAspect,
			Name: "Flow water flow",
			Structure: graph.StructureInfo{
				Depth:  1,
				Lens:   "water",
				Aspect: "flow",
			},
			Meta: graph.Meta{WaterState: "Liquid", Chakra: "Heart"},
		}

		text := GenerateEmbeddingText(node)

		assert.Contains(t, text, "aspect Flow water flow")
		assert.Contains(t, text, "water lens flow aspect")
	})

	t.Run("NodeWithLongContent", func(t *testing.T) {
		node := &graph.Node{
			ID:      "codex:Memory",
			Type:    graph.NodeSeed,
			Name:    "Memory",
			Content: strings.Repeat("memory holds form ", 100),
		}

		text := GenerateEmbeddingText(node)

		// Should truncate to 500 chars
		assert.Contains(t, text, "Content: memory holds form")
		assert.Less(t, len(text), 600)
	})

	t.Run("NilNode", func(t *testing.T) {
		text := GenerateEmbeddingText(nil)
		assert.Empty(t, text)
	})

	t.Run("MinimalNode", func(t *testing.T) {
		node := &graph.Node{
			ID:   "codex:Node",
			Type: graph.NodeSeed,
			Name: "Node",
		}

		text := GenerateEmbeddingText(node)
		assert.Contains(t, text, "seed Node")
	})
}

func TestGenerateNodeText(t *testing.T) {
	t.Parallel()

	t.Run("SeedNode", func(t *testing.T) {
		node := &graph.Node{
			ID:   "codex:Resonance",
			Type: graph.NodeSeed,
			Name: "Resonance",
			Meta: graph.Meta{
				WaterState: "Clustered",
				Chakra:     "Sacral",
				Archetypes: []string{"Harmony", "Vibration", "Sympathy"},
			},
		}

		text := GenerateNodeText(node)

		assert.Contains(t, text, "seed Resonance")
		assert.Contains(t, text, "Clustered")
		assert.Contains(t, text, "Sacral")
		assert.Contains(t, text, "Vibration")
	})

	t.Run("NilNode", func(t *testing.T) {
		text := GenerateNodeText(nil)
		assert.Empty(t, text)
	})

	t.Run("NodeWithoutMetadata", func(t *testing.T) {
		node := &graph.Node{
			ID:   "codex:Unity",
			Type: graph.NodeSeed,
			Name: "Unity",
		}

		text := GenerateNodeText(node)
		assert.Contains(t, text, "seed Unity")
	})
}
