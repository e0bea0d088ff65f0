package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/living-codex/codex-go/internal/graph"
)

// remoteTimeout bounds the seed fetch; bootstrap must not hang on a
// dead endpoint.
const remoteTimeout = 2 * time.Second

// RemoteSeed is one ontological override from a remote seed endpoint.
type RemoteSeed struct {
	ID              string  `json:"id"`
	Chakra          string  `json:"chakra"`
	ColorHex        string  `json:"colorHex"`
	BaseFrequencyHz float64 `json:"baseFrequencyHz"`
	Planet          string  `json:"planet"`
}

// FetchRemoteSeeds fetches seed overrides from url. The endpoint serves
// a JSON array of seed records; entries whose ID is not a codex ID are
// dropped.
func FetchRemoteSeeds(ctx context.Context, url string) (map[string]RemoteSeed, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building seed request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching seeds: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching seeds: unexpected status %d", resp.StatusCode)
	}

	var records []RemoteSeed
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding seeds: %w", err)
	}

	seeds := make(map[string]RemoteSeed)
	for _, record := range records {
		if strings.HasPrefix(record.ID, "codex:") {
			seeds[record.ID] = record
		}
	}
	return seeds, nil
}

// ApplyRemoteSeed overlays the remote ontological fields onto a node.
// Empty remote fields leave the node untouched; the tagger fills the
// remaining gaps afterwards.
func ApplyRemoteSeed(node *graph.Node, seed RemoteSeed) {
	if seed.Chakra != "" {
		node.Meta.Chakra = seed.Chakra
	}
	if seed.ColorHex != "" {
		node.Meta.ColorHex = seed.ColorHex
	}
	if seed.BaseFrequencyHz != 0 {
		node.Meta.BaseFrequencyHz = seed.BaseFrequencyHz
	}
	if seed.Planet != "" {
		node.Meta.Planet = seed.Planet
	}
	node.Structure.Source = "remote"
}
