package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/living-codex/codex-go/internal/graph"
)

// CloneSeedRepo shallow-clones a seed repository into dir and loads
// every node JSON file it contains. Files that do not decode to a node
// with a codex ID are skipped.
func CloneSeedRepo(ctx context.Context, repoURL, dir string) ([]*graph.Node, error) {
	_, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:   repoURL,
		Depth: 1,
	})
	if err != nil && err != gogit.ErrRepositoryAlreadyExists {
		return nil, fmt.Errorf("cloning seed repo: %w", err)
	}

	return LoadSeedDir(dir)
}

// LoadSeedDir loads node JSON files from a directory tree.
func LoadSeedDir(dir string) ([]*graph.Node, error) {
	var nodes []*graph.Node

	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(entry.Name(), ".json") || entry.Name() == "manifest.json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var node graph.Node
		if err := json.Unmarshal(data, &node); err != nil {
			// Not a node file; seed repos may carry other JSON.
			return nil
		}
		if !strings.HasPrefix(node.ID, "codex:") {
			return nil
		}
		node.Structure.Source = "git"
		nodes = append(nodes, &node)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading seed dir: %w", err)
	}

	return nodes, nil
}
