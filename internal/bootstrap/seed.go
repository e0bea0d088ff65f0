// Package bootstrap builds a codex from nothing: the canonical seed
// table, optional remote or git seed sources, the bootstrap pipeline
// that tags, expands, scores and persists the graph, and the node file
// watcher.
package bootstrap

import (
	"github.com/living-codex/codex-go/internal/graph"
)

// seedSpec is one row of the canonical seed table.
type seedSpec struct {
	id         string
	name       string
	waterState string
	archetypes []string
	resonance  float64
}

// seedTable is the canonical twelve-node codex seed set. Chakra, color,
// frequency and planet come from the ontology tagger, not from here.
var seedTable = []seedSpec{
	{"codex:Void", "Void", "Plasma", []string{"Primordial", "Chaos", "Potential"}, 1.0},
	{"codex:Field", "Field", "Vapor", []string{"Connectivity", "Information", "Flow"}, 0.8},
	{"codex:Pattern", "Pattern", "Structured", []string{"Order", "Repetition", "Structure"}, 0.9},
	{"codex:Flow", "Flow", "Liquid", []string{"Movement", "Change", "Adaptation"}, 0.7},
	{"codex:Memory", "Memory", "Ice", []string{"Preservation", "History", "Storage"}, 0.6},
	{"codex:Resonance", "Resonance", "Clustered", []string{"Harmony", "Vibration", "Synchronization"}, 0.9},
	{"codex:Transformation", "Transformation", "Supercritical", []string{"Change", "Evolution", "Metamorphosis"}, 0.8},
	{"codex:Unity", "Unity", "LiquidCrystalBoundary", []string{"Wholeness", "Integration", "Oneness"}, 0.7},
	{"codex:Emergence", "Emergence", "VaporLiquidEquilibrium", []string{"Novelty", "Complexity", "Spontaneity"}, 0.6},
	{"codex:Awareness", "Awareness", "ReflectiveSurface", []string{"Consciousness", "Observation", "Reflection"}, 0.8},
	{"codex:Node", "Node", "SteamSpark", []string{"Connection", "Intersection", "Junction"}, 0.7},
	{"codex:Codex", "Codex", "AllStates", []string{"Knowledge", "Wisdom", "Integration"}, 1.0},
}

// SeedNodes materializes the canonical seed set as fresh nodes.
func SeedNodes() []*graph.Node {
	nodes := make([]*graph.Node, 0, len(seedTable))
	for _, spec := range seedTable {
		nodes = append(nodes, &graph.Node{
			ID:   spec.id,
			Type: graph.NodeSeed,
			Name: spec.name,
			Meta: graph.Meta{
				WaterState: spec.waterState,
				Archetypes: append([]string(nil), spec.archetypes...),
				Resonance:  spec.resonance,
			},
			Structure: graph.StructureInfo{Depth: 0, Source: "seed"},
		})
	}
	return nodes
}

// SeedCount is the size of the canonical seed set.
func SeedCount() int {
	return len(seedTable)
}
