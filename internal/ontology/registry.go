// Package ontology provides the immutable correspondence registry and
// the metadata tagger that backfills canonical defaults onto codex
// nodes.
//
// The registry carries the chakra table, the per-node chakra and planet
// correspondences, the relation groups used by the scoring engine, the
// consciousness/quantum/pattern score maps, and the named theme
// mappings. It is constructed once and injected; nothing in it mutates
// after construction.
package ontology

import (
	"strconv"
	"strings"
	"unicode"
)

// ChakraInfo is the color and base frequency of a chakra.
type ChakraInfo struct {
	ColorHex        string
	BaseFrequencyHz float64
}

// Theme is a named query alias expanding to an ontology key triple.
type Theme struct {
	WaterState string
	Chakra     string
	Frequency  string
}

// Registry is the immutable ontological correspondence table.
type Registry struct {
	chakras       map[string]ChakraInfo
	nodeChakra    map[string]string
	nodePlanet    map[string]string
	waterGroups   [][]string
	chakraGroups  [][]string
	consciousness map[string]float64
	quantum       map[string]float64
	patterns      map[string]float64
	themes        map[string]Theme
}

// NewRegistry builds the registry from the canonical built-in tables.
func NewRegistry() *Registry {
	return &Registry{
		chakras: map[string]ChakraInfo{
			"Root":        {ColorHex: "#8B0000", BaseFrequencyHz: 396.0},
			"Sacral":      {ColorHex: "#FF7F50", BaseFrequencyHz: 417.0},
			"SolarPlexus": {ColorHex: "#FFD700", BaseFrequencyHz: 528.0},
			"Heart":       {ColorHex: "#32CD32", BaseFrequencyHz: 639.0},
			"Throat":      {ColorHex: "#1E90FF", BaseFrequencyHz: 741.0},
			"ThirdEye":    {ColorHex: "#8A2BE2", BaseFrequencyHz: 852.0},
			"Crown":       {ColorHex: "#EE82EE", BaseFrequencyHz: 963.0},
		},
		nodeChakra: map[string]string{
			"codex:Transformation": "Root",
			"codex:Resonance":      "Sacral",
			"codex:Memory":         "SolarPlexus",
			"codex:Flow":           "Heart",
			"codex:Pattern":        "Throat",
			"codex:Field":          "ThirdEye",
			"codex:Void":           "Crown",
		},
		nodePlanet: map[string]string{
			"codex:Transformation": "Mars",
			"codex:Resonance":      "Venus",
			"codex:Memory":         "Saturn",
			"codex:Flow":           "Moon",
			"codex:Pattern":        "Mercury",
			"codex:Field":          "Jupiter",
			"codex:Void":           "Sun",
		},
		waterGroups: [][]string{
			{"ws.ice", "ws.structured", "ws.quantum_coherent"},
			{"ws.liquid", "ws.vapor", "ws.colloidal"},
			{"ws.plasma", "ws.supercritical", "ws.clustered"},
		},
		chakraGroups: [][]string{
			{"ch.root", "ch.sacral"},
			{"ch.solar_plexus", "ch.heart"},
			{"ch.throat", "ch.third_eye"},
			{"ch.third_eye", "ch.crown"},
		},
		consciousness: map[string]float64{
			"awake":          0.2,
			"sentient":       0.4,
			"self_aware":     0.6,
			"meta_cognitive": 0.8,
			"transcendent":   1.0,
		},
		quantum: map[string]float64{
			"superposition": 0.8,
			"entangled":     0.9,
			"collapsed":     0.3,
			"coherent":      1.0,
			"decoherent":    0.1,
		},
		patterns: map[string]float64{
			"harmonic":    1.0,
			"sympathetic": 0.9,
			"neutral":     0.5,
			"dissonant":   0.2,
			"destructive": 0.0,
		},
		themes: map[string]Theme{
			"ice":    {WaterState: "ws.ice", Chakra: "ch.crown", Frequency: "freq.963"},
			"liquid": {WaterState: "ws.liquid", Chakra: "ch.heart", Frequency: "freq.639"},
			"vapor":  {WaterState: "ws.vapor", Chakra: "ch.third_eye", Frequency: "freq.852"},
			"plasma": {WaterState: "ws.plasma", Chakra: "ch.root", Frequency: "freq.396"},
		},
	}
}

// Chakra returns the chakra table entry for a chakra name.
func (r *Registry) Chakra(name string) (ChakraInfo, bool) {
	info, ok := r.chakras[name]
	return info, ok
}

// Chakras returns the chakra names present in the table.
func (r *Registry) Chakras() []string {
	names := make([]string, 0, len(r.chakras))
	for name := range r.chakras {
		names = append(names, name)
	}
	return names
}

// DefaultChakra returns the canonical chakra for a node ID. Hierarchical
// IDs resolve through their seed ancestor.
func (r *Registry) DefaultChakra(id string) (string, bool) {
	c, ok := r.nodeChakra[baseID(id)]
	return c, ok
}

// DefaultPlanet returns the canonical planet for a node ID.
func (r *Registry) DefaultPlanet(id string) (string, bool) {
	p, ok := r.nodePlanet[baseID(id)]
	return p, ok
}

// ConsciousnessScore maps a consciousness level to its score.
// Unknown or empty levels score as barely awake.
func (r *Registry) ConsciousnessScore(level string) float64 {
	if s, ok := r.consciousness[level]; ok {
		return s
	}
	return 0.2
}

// QuantumScore maps a quantum state to its score. Unknown or empty
// states score neutral 0.5.
func (r *Registry) QuantumScore(state string) float64 {
	if s, ok := r.quantum[state]; ok {
		return s
	}
	return 0.5
}

// PatternScore maps a resonance pattern to its base score. Unknown or
// empty patterns score neutral 0.5.
func (r *Registry) PatternScore(pattern string) float64 {
	if s, ok := r.patterns[pattern]; ok {
		return s
	}
	return 0.5
}

// WaterStatesRelated reports whether two water-state keys share a
// relation group.
func (r *Registry) WaterStatesRelated(a, b string) bool {
	return sameGroup(r.waterGroups, a, b)
}

// ChakrasRelated reports whether two chakra keys share a relation group.
func (r *Registry) ChakrasRelated(a, b string) bool {
	return sameGroup(r.chakraGroups, a, b)
}

// Theme returns the named theme mapping.
func (r *Registry) Theme(name string) (Theme, bool) {
	th, ok := r.themes[strings.ToLower(name)]
	return th, ok
}

// Themes returns the known theme names.
func (r *Registry) Themes() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	return names
}

func sameGroup(groups [][]string, a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	for _, group := range groups {
		inA, inB := false, false
		for _, member := range group {
			if member == a {
				inA = true
			}
			if member == b {
				inB = true
			}
		}
		if inA && inB {
			return true
		}
	}
	return false
}

// baseID mirrors graph.BaseID without importing graph; the registry
// sits below the model package.
func baseID(id string) string {
	parts := strings.Split(id, ":")
	if len(parts) <= 2 {
		return id
	}
	return strings.Join(parts[:2], ":")
}

// WaterStateKey normalizes a water-state name to its ontology key,
// e.g. "QuantumCoherent" -> "ws.quantum_coherent".
func WaterStateKey(name string) string {
	if name == "" {
		return ""
	}
	return "ws." + snake(name)
}

// ChakraKey normalizes a chakra name to its ontology key,
// e.g. "SolarPlexus" -> "ch.solar_plexus".
func ChakraKey(name string) string {
	if name == "" {
		return ""
	}
	return "ch." + snake(name)
}

// FrequencyKey normalizes a base frequency to its ontology key,
// e.g. 963.0 -> "freq.963".
func FrequencyKey(hz float64) string {
	if hz == 0 {
		return ""
	}
	return "freq." + strconv.FormatFloat(hz, 'f', -1, 64)
}

// snake converts CamelCase or space-separated names to snake_case.
func snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '-':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
