package ontology

import (
	"github.com/living-codex/codex-go/internal/graph"
)

// Tagger backfills canonical ontological defaults onto node metadata.
//
// ApplyDefaults has setdefault semantics: a field is only written when
// the caller left it empty, so user-supplied values always survive.
// Applying defaults twice is a no-op.
type Tagger struct {
	reg *Registry
}

// NewTagger creates a tagger over the given registry.
func NewTagger(reg *Registry) *Tagger {
	return &Tagger{reg: reg}
}

// ApplyDefaults returns meta with canonical defaults filled in for the
// given node ID. Hierarchical IDs resolve through their seed ancestor,
// so an expanded child of codex:Flow picks up Flow's correspondences.
// IDs with no registry entry pass through unchanged.
func (t *Tagger) ApplyDefaults(id string, meta graph.Meta) graph.Meta {
	if meta.Chakra == "" {
		if chakra, ok := t.reg.DefaultChakra(id); ok {
			meta.Chakra = chakra
		}
	}

	// Color and frequency derive from whichever chakra is in effect,
	// default or caller-supplied.
	if info, ok := t.reg.Chakra(meta.Chakra); ok {
		if meta.ColorHex == "" {
			meta.ColorHex = info.ColorHex
		}
		if meta.BaseFrequencyHz == 0 {
			meta.BaseFrequencyHz = info.BaseFrequencyHz
		}
	}

	if meta.Planet == "" {
		if planet, ok := t.reg.DefaultPlanet(id); ok {
			meta.Planet = planet
		}
	}

	return meta
}
