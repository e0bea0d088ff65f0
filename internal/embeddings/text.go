package embeddings

import (
	"fmt"
	"strings"

	"github.com/living-codex/codex-go/internal/graph"
)

// GenerateEmbeddingText generates natural language text from a codex node
// for embedding. This text is used to create semantic embeddings that
// capture the meaning of the node's ontological position.
func GenerateEmbeddingText(node *graph.Node) string {
	if node == nil {
		return ""
	}

	var parts []string

	// Add node type and name
	parts = append(parts, fmt.Sprintf("%s %s", node.Type, node.Name))

	// Add ontological correspondences
	if node.Meta.WaterState != "" {
		parts = append(parts, fmt.Sprintf("water state %s", node.Meta.WaterState))
	}
	if node.Meta.Chakra != "" {
		parts = append(parts, fmt.Sprintf("chakra %s", node.Meta.Chakra))
	}
	if node.Meta.Planet != "" {
		parts = append(parts, fmt.Sprintf("planet %s", node.Meta.Planet))
	}

	// Add archetypes
	if len(node.Meta.Archetypes) > 0 {
		parts = append(parts, fmt.Sprintf("Archetypes: %s", strings.Join(node.Meta.Archetypes, " ")))
	}

	// Add expansion lens and aspect
	if node.Structure.Lens != "" {
		parts = append(parts, fmt.Sprintf("%s lens %s aspect", node.Structure.Lens, node.Structure.Aspect))
	}

	// Add content (first 500 chars)
	if node.Content != "" {
		content := node.Content
		if len(content) > 500 {
			content = content[:500]
		}
		parts = append(parts, fmt.Sprintf("Content: %s", content))
	}

	return strings.Join(parts, ". ")
}

// GenerateNodeText generates a shorter text representation for a node.
// Used for quick indexing and search.
func GenerateNodeText(node *graph.Node) string {
	if node == nil {
		return ""
	}

	var parts []string

	// Add node type and name
	parts = append(parts, fmt.Sprintf("%s %s", node.Type, node.Name))

	// Add water state and chakra
	if node.Meta.WaterState != "" {
		parts = append(parts, node.Meta.WaterState)
	}
	if node.Meta.Chakra != "" {
		parts = append(parts, node.Meta.Chakra)
	}

	// Add archetypes
	parts = append(parts, node.Meta.Archetypes...)

	return strings.Join(parts, " ")
}
