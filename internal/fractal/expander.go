// Package fractal implements deterministic fractal expansion of codex
// nodes.
//
// Expansion derives nine children per base node, one per lens/aspect
// slot in a fixed table. Child derivation is a pure function of the
// base node, so expanding twice produces identical children and
// re-running a failed expansion is always safe.
package fractal

import (
	"context"
	"fmt"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/storage"
)

// Slot is one lens/aspect cell of the expansion table.
type Slot struct {
	Lens       string
	Aspect     string
	WaterState string
	Archetypes []string
	Multiplier float64
}

// slots is the fixed 3x3 expansion table, in derivation order.
var slots = []Slot{
	{Lens: "scientific", Aspect: "empirical", WaterState: "Structured",
		Archetypes: []string{"Measurement", "Observation", "Data"}, Multiplier: 0.8},
	{Lens: "scientific", Aspect: "theoretical", WaterState: "Vapor",
		Archetypes: []string{"Hypothesis", "Model", "Framework"}, Multiplier: 0.9},
	{Lens: "scientific", Aspect: "experimental", WaterState: "Liquid",
		Archetypes: []string{"Testing", "Validation", "Discovery"}, Multiplier: 0.7},
	{Lens: "symbolic", Aspect: "archetypal", WaterState: "Plasma",
		Archetypes: []string{"Myth", "Symbol", "Collective"}, Multiplier: 0.9},
	{Lens: "symbolic", Aspect: "cultural", WaterState: "Clustered",
		Archetypes: []string{"Tradition", "Society", "Heritage"}, Multiplier: 0.8},
	{Lens: "symbolic", Aspect: "personal", WaterState: "ReflectiveSurface",
		Archetypes: []string{"Individual", "Subjective", "Experience"}, Multiplier: 0.7},
	{Lens: "water", Aspect: "phase", WaterState: "VaporLiquidEquilibrium",
		Archetypes: []string{"Transition", "Boundary", "Change"}, Multiplier: 0.8},
	{Lens: "water", Aspect: "flow", WaterState: "Liquid",
		Archetypes: []string{"Movement", "Direction", "Current"}, Multiplier: 0.9},
	{Lens: "water", Aspect: "coherence", WaterState: "LiquidCrystalBoundary",
		Archetypes: []string{"Alignment", "Harmony", "Order"}, Multiplier: 0.8},
}

// Slots returns the expansion table in derivation order.
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

// Expand derives the nine expansion children of a base node. It is pure
// and idempotent: child IDs are {base.ID}:{lens}:{aspect}, children
// inherit the base's chakra, color, frequency and planet verbatim, and
// each child's resonance is the base resonance scaled by its slot
// multiplier.
func Expand(base *graph.Node) []*graph.Node {
	children := make([]*graph.Node, 0, len(slots))
	for _, slot := range slots {
		children = append(children, deriveChild(base, slot))
	}
	return children
}

func deriveChild(base *graph.Node, slot Slot) *graph.Node {
	return &graph.Node{
		ID:       graph.ChildID(base.ID, slot.Lens, slot.Aspect),
		Type:     graph.NodeAspect,
		Name:     fmt.Sprintf("%s %s %s", base.Name, slot.Lens, slot.Aspect),
		ParentID: base.ID,
		Meta: graph.Meta{
			WaterState:      slot.WaterState,
			Chakra:          base.Meta.Chakra,
			ColorHex:        base.Meta.ColorHex,
			BaseFrequencyHz: base.Meta.BaseFrequencyHz,
			Planet:          base.Meta.Planet,
			Archetypes:      append([]string(nil), slot.Archetypes...),
			Resonance:       base.Meta.Resonance * slot.Multiplier,
		},
		Structure: graph.StructureInfo{
			Depth:  base.Structure.Depth + 1,
			Lens:   slot.Lens,
			Aspect: slot.Aspect,
			Source: "expansion",
		},
	}
}

// ExpandInto persists the expansion children of base and links them to
// the parent on both sides.
//
// There is no rollback: if a child write fails, the children already
// written stay in the store and the returned PartialExpansionError
// names them. Because derivation is idempotent, re-running the
// expansion converges on the same nine children.
func ExpandInto(ctx context.Context, store storage.Store, base *graph.Node) ([]*graph.Node, error) {
	children := Expand(base)

	var succeeded []string
	for _, child := range children {
		if err := store.Put(ctx, child); err != nil {
			return nil, &storage.PartialExpansionError{
				BaseID:    base.ID,
				Succeeded: succeeded,
				Err:       err,
			}
		}
		succeeded = append(succeeded, child.ID)
	}

	for _, child := range children {
		if !base.HasChild(child.ID) {
			base.Children = append(base.Children, child.ID)
		}
	}
	if err := store.Put(ctx, base); err != nil {
		return nil, &storage.PartialExpansionError{
			BaseID:    base.ID,
			Succeeded: succeeded,
			Err:       fmt.Errorf("linking parent: %w", err),
		}
	}

	return children, nil
}

// ExpandGraph expands a base node inside an in-memory graph, relying on
// CodexGraph.AddNode to keep the parent/child links bidirectional.
func ExpandGraph(g *graph.CodexGraph, base *graph.Node) []*graph.Node {
	children := Expand(base)
	for _, child := range children {
		g.AddNode(child)
	}
	return children
}
