package bootstrap

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/storage"
)

// NewContribution builds a content-addressed contribution record.
// The ID is stable: the same node, user, content and resonance always
// hash to the same contribution.
func NewContribution(nodeID, userID, content string, resonance float64) *storage.Contribution {
	return &storage.Contribution{
		ID:        ContributionID(nodeID, userID, content, resonance),
		NodeID:    nodeID,
		UserID:    userID,
		Content:   content,
		Resonance: resonance,
		CreatedAt: graph.Timestamp(),
	}
}

// ContributionID is the SHA-256 of the contribution's identity fields.
func ContributionID(nodeID, userID, content string, resonance float64) string {
	payload := fmt.Sprintf("%s:%s:%s:%s",
		nodeID, userID, content, strconv.FormatFloat(resonance, 'g', -1, 64))
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
