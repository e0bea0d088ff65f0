package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/index"
	"github.com/living-codex/codex-go/internal/ontology"
)

// batchWindow is the quiet period before a batch of changes is applied.
const batchWindow = 2 * time.Second

// WatchNodes monitors a node directory and keeps the query index in
// sync: changed node files are re-read, backfilled with ontology
// defaults and re-indexed, deleted files drop their node. Blocks until
// the context is cancelled.
func WatchNodes(ctx context.Context, nodesDir string, tagger *ontology.Tagger, engine *index.Engine) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(nodesDir); err != nil {
		return fmt.Errorf("watching %s: %w", nodesDir, err)
	}

	// Batch changed files so a burst of writes indexes once.
	changed := make(map[string]bool)
	batchTimer := time.NewTimer(batchWindow)
	batchTimer.Stop()

	fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", nodesDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".json") ||
				filepath.Base(event.Name) == "manifest.json" {
				continue
			}
			changed[event.Name] = true
			batchTimer.Reset(batchWindow)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-batchTimer.C:
			if len(changed) > 0 {
				applyChangedNodes(changed, tagger, engine)
				changed = make(map[string]bool)
			}
		}
	}
}

// applyChangedNodes re-indexes every changed node file; vanished files
// remove their node from the index.
func applyChangedNodes(changed map[string]bool, tagger *ontology.Tagger, engine *index.Engine) {
	fmt.Printf("Re-indexing %d changed node file(s)...\n", len(changed))

	for path := range changed {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			if id := nodeIDFromFile(path); id != "" {
				engine.Remove(id)
				fmt.Printf("  Removed: %s\n", id)
			}
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			continue
		}

		var node graph.Node
		if err := json.Unmarshal(data, &node); err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding %s: %v\n", path, err)
			continue
		}
		if node.ID == "" {
			continue
		}
		if tagger != nil {
			node.Meta = tagger.ApplyDefaults(node.ID, node.Meta)
		}
		engine.Index(&node)
	}
}

// nodeIDFromFile recovers a node ID from its file name; the persisted
// layout writes colons as underscores. The encoding is lossy: an ID
// containing a literal underscore shares its file name with the colon
// variant, so on delete the colon reading wins. Changed files are
// unaffected since their ID is read from the JSON payload.
func nodeIDFromFile(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	return strings.ReplaceAll(name, "_", ":")
}
