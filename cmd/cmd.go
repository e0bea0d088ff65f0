// Package cmd provides CLI command implementations for the codex.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/living-codex/codex-go/internal/bootstrap"
	"github.com/living-codex/codex-go/internal/embeddings"
	"github.com/living-codex/codex-go/internal/fractal"
	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/index"
	"github.com/living-codex/codex-go/internal/ontology"
	"github.com/living-codex/codex-go/internal/resonance"
	"github.com/living-codex/codex-go/internal/storage"
	"github.com/living-codex/codex-go/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// storeFlags are the per-command storage overrides; empty values fall
// back to codex.yaml and then the defaults.
type storeFlags struct {
	Store   string `help:"Storage root directory" placeholder:"DIR"`
	Backend string `help:"Storage backend (file or badger)" enum:"file,badger,"`
}

func (f storeFlags) resolve() (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := LoadConfig(cwd)
	if err != nil {
		return Config{}, err
	}
	if f.Store != "" {
		cfg.Store = f.Store
	}
	if f.Backend != "" {
		cfg.Backend = f.Backend
	}
	return cfg, nil
}

// BootstrapCmd seeds, expands, scores and persists a codex store.
type BootstrapCmd struct {
	storeFlags
	Remote       string `help:"Seed endpoint URL; failures fall back to built-in seeds" placeholder:"URL"`
	SeedRepo     string `help:"Git repository of node JSON seed files" placeholder:"URL"`
	NoExpand     bool   `help:"Skip fractal expansion of seed nodes"`
	NoEmbeddings bool   `help:"Skip vector embedding generation"`
	Save         bool   `help:"Write the resolved settings to codex.yaml"`
}

// Run executes the bootstrap command.
func (c *BootstrapCmd) Run() error {
	ctx := context.Background()
	cfg, err := c.resolve()
	if err != nil {
		return err
	}
	if c.Remote != "" {
		cfg.RemoteURL = c.Remote
	}
	if c.SeedRepo != "" {
		cfg.SeedRepo = c.SeedRepo
	}

	color.Green("Bootstrapping codex at %s (%s backend)", cfg.Store, cfg.Backend)

	store, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts := bootstrap.Options{
		RemoteURL:  cfg.RemoteURL,
		Expand:     !c.NoExpand,
		Embeddings: !c.NoEmbeddings,
		Progress: func(phase string, pct float64) {
			fmt.Printf("\r\033[K%s (%.0f%%)", phase, pct*100)
		},
	}

	if cfg.SeedRepo != "" {
		cloneDir, err := os.MkdirTemp("", "codex-seeds-*")
		if err != nil {
			return fmt.Errorf("creating clone dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(cloneDir) }()

		if _, err := bootstrap.CloneSeedRepo(ctx, cfg.SeedRepo, cloneDir); err != nil {
			return fmt.Errorf("cloning seed repo: %w", err)
		}
		opts.SeedDir = cloneDir
	}

	_, result, err := bootstrap.Run(ctx, store, nil, opts)
	if err != nil {
		return fmt.Errorf("running bootstrap: %w", err)
	}

	fmt.Println() // Newline after progress

	if c.Save {
		cwd, _ := os.Getwd()
		if err := SaveConfig(cwd, cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
	}

	color.Green("\n✓ Bootstrap complete")
	fmt.Printf("  Seeds:     %d\n", result.Seeds)
	fmt.Printf("  Nodes:     %d\n", result.Nodes)
	fmt.Printf("  Expanded:  %d\n", result.Expanded)
	if result.RemoteApplied {
		fmt.Println("  Remote:    overrides applied")
	}
	fmt.Printf("  Duration:  %.2fs\n", result.DurationSecs)

	return nil
}

// GetCmd fetches a single node.
type GetCmd struct {
	storeFlags
	ID   string `arg:"" help:"Node ID, e.g. codex:Void"`
	JSON bool   `help:"Print the raw node JSON"`
}

// Run executes the get command.
func (c *GetCmd) Run() error {
	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	node, err := store.Get(ctx, c.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			fmt.Printf("Node '%s' not found\n", c.ID)
			return nil
		}
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(node, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printNode(node)
	return nil
}

// QueryCmd searches the codex.
type QueryCmd struct {
	storeFlags
	Query      string `arg:"" help:"Search query"`
	Limit      int    `short:"n" default:"20" help:"Maximum results"`
	Type       string `help:"Filter by node type"`
	WaterState string `help:"Filter by water state (e.g. ice, liquid)"`
	Chakra     string `help:"Filter by chakra (e.g. crown, heart)"`
	Theme      string `help:"Filter by theme (ice, liquid, vapor, plasma)"`
}

// Run executes the query command.
func (c *QueryCmd) Run() error {
	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Refit on the stored corpus so the query lands in the same vector
	// space as the embeddings written at bootstrap.
	corpus, err := storage.CollectNodes(store.List(ctx, nil))
	if err != nil {
		return fmt.Errorf("loading nodes: %w", err)
	}
	embedder := embeddings.NewTFIDFEmbedder()
	embedder.Fit(corpus)

	results, err := store.HybridSearch(ctx, c.Query, embedder.Embed(c.Query), c.Limit)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	results, err = c.filterResults(ctx, store, results)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results found")
		return nil
	}

	for i, r := range results {
		fmt.Printf("\n%d. %s (%s)\n", i+1, r.Name, r.Type)
		if r.WaterState != "" {
			fmt.Printf("   Water state: %s\n", r.WaterState)
		}
		fmt.Printf("   Score: %.3f\n", r.Score)
		if r.Snippet != "" {
			fmt.Printf("   %s\n", r.Snippet[:min(200, len(r.Snippet))])
		}
	}

	return nil
}

// filterResults narrows hybrid search hits by the metadata flags.
func (c *QueryCmd) filterResults(ctx context.Context, store storage.Store, results []storage.HybridResult) ([]storage.HybridResult, error) {
	if c.Type != "" {
		filtered := results[:0]
		for _, r := range results {
			if strings.EqualFold(r.Type, c.Type) {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if c.WaterState == "" && c.Chakra == "" && c.Theme == "" {
		return results, nil
	}

	engine, err := buildEngine(ctx, store)
	if err != nil {
		return nil, err
	}

	var allowed map[string]bool
	restrict := func(result index.Result) {
		keep := make(map[string]bool, len(result.Entries))
		for _, entry := range result.Entries {
			keep[entry.NodeID] = true
		}
		if allowed == nil {
			allowed = keep
			return
		}
		for id := range allowed {
			if !keep[id] {
				delete(allowed, id)
			}
		}
	}

	if c.WaterState != "" {
		restrict(engine.Exact(index.FieldWaterState, c.WaterState))
	}
	if c.Chakra != "" {
		restrict(engine.Exact(index.FieldChakra, c.Chakra))
	}
	if c.Theme != "" {
		reg := ontology.NewRegistry()
		if _, ok := reg.Theme(c.Theme); !ok {
			names := reg.Themes()
			sort.Strings(names)
			return nil, fmt.Errorf("unknown theme %q; known themes: %s", c.Theme, strings.Join(names, ", "))
		}
		restrict(engine.ThemeQuery(c.Theme))
	}

	filtered := results[:0]
	for _, r := range results {
		if allowed[r.NodeID] {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// ExpandCmd unfolds a node into its fractal children.
type ExpandCmd struct {
	storeFlags
	ID string `arg:"" help:"Node ID to expand"`
}

// Run executes the expand command.
func (c *ExpandCmd) Run() error {
	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	node, err := store.Get(ctx, c.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			fmt.Printf("Node '%s' not found\n", c.ID)
			return nil
		}
		return err
	}

	children, err := fractal.ExpandInto(ctx, store, node)
	if err != nil {
		return fmt.Errorf("expanding %s: %w", c.ID, err)
	}

	color.Green("Expanded %s into %d children", c.ID, len(children))
	for _, child := range children {
		fmt.Printf("  %s (%s/%s) resonance %.2f\n",
			child.ID, child.Structure.Lens, child.Structure.Aspect, child.Meta.Resonance)
	}

	return nil
}

// ContextCmd shows a node with its parent, siblings, children and
// contributions.
type ContextCmd struct {
	storeFlags
	ID string `arg:"" help:"Node ID to inspect"`
}

// Run executes the context command.
func (c *ContextCmd) Run() error {
	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	node, err := store.Get(ctx, c.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			fmt.Printf("Node '%s' not found\n", c.ID)
			return nil
		}
		return err
	}

	fmt.Printf("## Context for: **%s** (%s)\n\n", node.Name, node.Type)
	printNode(node)

	if node.ParentID != "" {
		if parent, err := store.Get(ctx, node.ParentID); err == nil {
			fmt.Printf("\nParent: %s (%s)\n", parent.Name, parent.ID)

			var siblings []string
			for _, siblingID := range parent.Children {
				if siblingID != node.ID {
					siblings = append(siblings, siblingID)
				}
			}
			if len(siblings) > 0 {
				fmt.Printf("\nSiblings (%d):\n", len(siblings))
				for _, siblingID := range siblings {
					fmt.Printf("  %s\n", siblingID)
				}
			}
		}
	}

	if len(node.Children) > 0 {
		fmt.Printf("\nChildren (%d):\n", len(node.Children))
		for _, childID := range node.Children {
			child, err := store.Get(ctx, childID)
			if err != nil {
				continue
			}
			fmt.Printf("  %s (%s/%s) resonance %.2f\n",
				child.ID, child.Structure.Lens, child.Structure.Aspect, child.Meta.Resonance)
		}
	}

	contributions, err := store.Contributions(ctx, c.ID)
	if err == nil && len(contributions) > 0 {
		fmt.Printf("\nContributions (%d):\n", len(contributions))
		for _, contrib := range contributions {
			content := contrib.Content
			if len(content) > 120 {
				content = content[:120] + "..."
			}
			fmt.Printf("  [%s] %s (resonance %.2f)\n", contrib.UserID, content, contrib.Resonance)
		}
	}

	return nil
}

// ScoreCmd computes a node's resonance with its factor breakdown.
type ScoreCmd struct {
	storeFlags
	ID string `arg:"" help:"Node ID to score"`
}

// Run executes the score command.
func (c *ScoreCmd) Run() error {
	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	node, err := store.Get(ctx, c.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			fmt.Printf("Node '%s' not found\n", c.ID)
			return nil
		}
		return err
	}

	scorer := resonance.NewScorer(ontology.NewRegistry())
	result := scorer.NodeResonance(node)

	fmt.Printf("Resonance for %s: %.3f (%s)\n\n", node.ID, result.Score, result.Pattern)

	factors := make([]string, 0, len(result.Factors))
	for name := range result.Factors {
		factors = append(factors, name)
	}
	sort.Strings(factors)
	for _, name := range factors {
		fmt.Printf("  %-24s %.3f\n", name, result.Factors[name])
	}

	fmt.Printf("\n  %-24s %.3f\n", "coherence", scorer.Coherence(node))
	fmt.Printf("  %-24s %.3f\n", "self_similarity", scorer.SelfSimilarity(node))

	return nil
}

// SimilarCmd ranks the nodes most resonant with a given node.
type SimilarCmd struct {
	storeFlags
	ID    string `arg:"" help:"Node ID to compare against"`
	Limit int    `short:"n" default:"10" help:"Maximum results"`
}

// Run executes the similar command.
func (c *SimilarCmd) Run() error {
	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	node, err := store.Get(ctx, c.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			fmt.Printf("Node '%s' not found\n", c.ID)
			return nil
		}
		return err
	}

	scorer := resonance.NewScorer(ontology.NewRegistry())
	type ranked struct {
		id    string
		score float64
	}
	var pairs []ranked
	for other, err := range store.List(ctx, func(n *graph.Node) bool { return n.ID != c.ID }) {
		if err != nil {
			return err
		}
		pairs = append(pairs, ranked{other.ID, scorer.Pairwise(node, other)})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].id < pairs[j].id
	})
	if len(pairs) > c.Limit {
		pairs = pairs[:c.Limit]
	}

	fmt.Printf("Nodes most resonant with %s:\n\n", c.ID)
	for i, p := range pairs {
		fmt.Printf("%2d. %-40s %.3f\n", i+1, p.id, p.score)
	}

	return nil
}

// ThemeCmd queries the ontological index by theme.
type ThemeCmd struct {
	storeFlags
	Theme string `arg:"" help:"Theme name (ice, liquid, vapor, plasma)"`
}

// Run executes the theme command.
func (c *ThemeCmd) Run() error {
	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reg := ontology.NewRegistry()
	if _, ok := reg.Theme(c.Theme); !ok {
		names := reg.Themes()
		sort.Strings(names)
		return fmt.Errorf("unknown theme %q; known themes: %s", c.Theme, strings.Join(names, ", "))
	}

	engine, err := buildEngine(ctx, store)
	if err != nil {
		return err
	}

	result := engine.ThemeQuery(c.Theme)
	if result.TotalCount == 0 {
		fmt.Printf("No nodes match theme '%s'\n", c.Theme)
		return nil
	}

	fmt.Printf("Found %d node(s) for theme '%s':\n\n", result.TotalCount, c.Theme)
	for i, entry := range result.Entries {
		fmt.Printf("%2d. %-40s (%s) resonance %.2f\n",
			i+1, entry.NodeID, entry.NodeType, entry.Resonance)
	}

	return nil
}

// ContributeCmd attaches a user contribution to a node.
type ContributeCmd struct {
	storeFlags
	ID        string  `arg:"" help:"Node ID to contribute to"`
	Content   string  `arg:"" help:"Contribution content"`
	User      string  `short:"u" default:"anonymous" help:"Contributing user ID"`
	Resonance float64 `default:"0.5" help:"Contribution resonance in [0,1]"`
}

// Run executes the contribute command.
func (c *ContributeCmd) Run() error {
	if c.Resonance < 0 || c.Resonance > 1 {
		return fmt.Errorf("resonance must be in [0,1], got %v", c.Resonance)
	}

	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if _, err := store.Get(ctx, c.ID); err != nil {
		if storage.IsNotFound(err) {
			return fmt.Errorf("node %q not found", c.ID)
		}
		return err
	}

	contrib := bootstrap.NewContribution(c.ID, c.User, c.Content, c.Resonance)
	if err := store.PutContribution(ctx, contrib); err != nil {
		return fmt.Errorf("storing contribution: %w", err)
	}

	color.Green("Contribution %s recorded on %s", contrib.ID[:12], c.ID)
	return nil
}

// StatusCmd shows the store manifest summary.
type StatusCmd struct {
	storeFlags
}

// Run executes the status command.
func (c *StatusCmd) Run() error {
	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manifest, err := store.Manifest(ctx)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	fmt.Printf("Codex store %s\n", manifest.StoreID)
	fmt.Printf("  Version:        %s\n", manifest.Version)
	fmt.Printf("  Nodes:          %d\n", manifest.TotalNodes)
	fmt.Printf("  Subnodes:       %d\n", manifest.TotalSubnodes)
	fmt.Printf("  Contributions:  %d\n", manifest.TotalContributions)
	fmt.Printf("  Users:          %d\n", manifest.TotalUsers)
	fmt.Printf("  Last updated:   %s\n", manifest.LastUpdated)

	return nil
}

// WatchCmd keeps the query index in sync with node file changes.
type WatchCmd struct {
	storeFlags
}

// Run executes the watch command.
func (c *WatchCmd) Run() error {
	cfg, err := c.resolve()
	if err != nil {
		return err
	}
	if cfg.Backend != "file" {
		return fmt.Errorf("watch requires the file backend, got %q", cfg.Backend)
	}

	tagger := ontology.NewTagger(ontology.NewRegistry())
	store := storage.NewFileStore(tagger)
	if err := store.Initialize(cfg.Store, true); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	engine, err := buildEngine(ctx, store)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-osSignalChannel()
		cancel()
	}()

	err = bootstrap.WatchNodes(ctx, store.NodesDir(), tagger, engine)
	if err == context.Canceled {
		return nil
	}
	return err
}

// MCPCmd starts the MCP server on stdio.
type MCPCmd struct {
	storeFlags
}

// Run executes the mcp command.
func (c *MCPCmd) Run() error {
	ctx := context.Background()
	store, err := openConfiguredStore(c.storeFlags, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	engine, err := buildEngine(ctx, store)
	if err != nil {
		return err
	}

	server := mcp.NewServer(store, engine)
	return server.Run(ctx, os.Stdin, os.Stdout)
}

// ServeCmd starts the MCP server with optional watch mode.
type ServeCmd struct {
	storeFlags
	Watch bool `help:"Re-index on node file changes (file backend only)"`
}

// Run executes the serve command.
func (c *ServeCmd) Run() error {
	cfg, err := c.resolve()
	if err != nil {
		return err
	}
	if c.Watch && cfg.Backend != "file" {
		return fmt.Errorf("watch requires the file backend, got %q", cfg.Backend)
	}

	store, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-osSignalChannel()
		cancel()
	}()

	engine, err := buildEngine(ctx, store)
	if err != nil {
		return err
	}

	if c.Watch {
		fileStore, ok := store.(*storage.FileStore)
		if !ok {
			return fmt.Errorf("watch requires the file backend")
		}
		tagger := ontology.NewTagger(ontology.NewRegistry())
		go func() {
			if err := bootstrap.WatchNodes(ctx, fileStore.NodesDir(), tagger, engine); err != nil && err != context.Canceled {
				fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
			}
		}()
	}

	server := mcp.NewServer(store, engine)
	err = server.Run(ctx, os.Stdin, os.Stdout)
	if err == context.Canceled {
		return nil
	}
	return err
}

// CleanCmd deletes the codex store.
type CleanCmd struct {
	storeFlags
	Force bool `short:"f" help:"Skip confirmation"`
}

// Run executes the clean command.
func (c *CleanCmd) Run() error {
	cfg, err := c.resolve()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Store); os.IsNotExist(err) {
		return fmt.Errorf("no store found at %s. Nothing to clean", cfg.Store)
	}

	if !c.Force {
		fmt.Printf("Delete store at %s? [y/N] ", cfg.Store)
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := os.RemoveAll(cfg.Store); err != nil {
		return fmt.Errorf("deleting store: %w", err)
	}

	color.Green("Deleted %s", cfg.Store)
	return nil
}

// Helper functions

// osSignalChannel returns a channel that receives OS signals for graceful shutdown.
func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// openStore opens the configured backend at the configured path.
func openStore(cfg Config, readOnly bool) (storage.Store, error) {
	tagger := ontology.NewTagger(ontology.NewRegistry())

	var store storage.Store
	switch cfg.Backend {
	case "", "file":
		store = storage.NewFileStore(tagger)
	case "badger":
		store = storage.NewBadgerStore(tagger)
	default:
		return nil, fmt.Errorf("unknown backend %q (want file or badger)", cfg.Backend)
	}

	if err := store.Initialize(cfg.Store, readOnly); err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

func openConfiguredStore(flags storeFlags, readOnly bool) (storage.Store, error) {
	cfg, err := flags.resolve()
	if err != nil {
		return nil, err
	}
	return openStore(cfg, readOnly)
}

// buildEngine loads every stored node into a fresh query index.
func buildEngine(ctx context.Context, store storage.Store) (*index.Engine, error) {
	engine := index.NewEngine(ontology.NewRegistry())
	for node, err := range store.List(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("loading nodes: %w", err)
		}
		engine.Index(node)
	}
	return engine, nil
}

// printNode writes a human-readable node summary.
func printNode(node *graph.Node) {
	fmt.Printf("%s (%s)\n", node.Name, node.ID)
	fmt.Printf("  Type:        %s\n", node.Type)
	if node.Meta.WaterState != "" {
		fmt.Printf("  Water state: %s\n", node.Meta.WaterState)
	}
	if node.Meta.Chakra != "" {
		fmt.Printf("  Chakra:      %s (%s, %.0f Hz)\n",
			node.Meta.Chakra, node.Meta.ColorHex, node.Meta.BaseFrequencyHz)
	}
	if node.Meta.Planet != "" {
		fmt.Printf("  Planet:      %s\n", node.Meta.Planet)
	}
	if len(node.Meta.Archetypes) > 0 {
		fmt.Printf("  Archetypes:  %s\n", strings.Join(node.Meta.Archetypes, ", "))
	}
	fmt.Printf("  Resonance:   %.2f", node.Meta.Resonance)
	if node.Meta.ResonancePattern != "" {
		fmt.Printf(" (%s)", node.Meta.ResonancePattern)
	}
	fmt.Println()
	fmt.Printf("  Depth:       %d, children: %d\n", node.Structure.Depth, len(node.Children))
	if node.Content != "" {
		fmt.Printf("  %s\n", node.Content[:min(200, len(node.Content))])
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CLI is the root Kong command structure.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Verbose bool             `short:"v" help:"Enable verbose output"`
	Quiet   bool             `short:"q" help:"Suppress non-essential output"`

	// Commands
	Bootstrap  BootstrapCmd  `cmd:"" help:"Seed, expand, score and persist a codex store"`
	Get        GetCmd        `cmd:"" help:"Fetch a single node"`
	Query      QueryCmd      `cmd:"" help:"Search the codex with hybrid search"`
	Expand     ExpandCmd     `cmd:"" help:"Unfold a node into its fractal children"`
	Context    ContextCmd    `cmd:"" help:"Show a node with its parent, siblings, children and contributions"`
	Score      ScoreCmd      `cmd:"" help:"Compute a node's resonance breakdown"`
	Similar    SimilarCmd    `cmd:"" help:"Rank nodes most resonant with a node"`
	Theme      ThemeCmd      `cmd:"" help:"Query the ontological index by theme"`
	Contribute ContributeCmd `cmd:"" help:"Attach a user contribution to a node"`
	Status     StatusCmd     `cmd:"" help:"Show the store manifest summary"`
	Watch      WatchCmd      `cmd:"" help:"Keep the query index in sync with node files"`
	MCP        MCPCmd        `cmd:"" help:"Start MCP server (stdio transport)"`
	Serve      ServeCmd      `cmd:"" help:"Start MCP server with optional watch mode"`
	Clean      CleanCmd      `cmd:"" help:"Delete the codex store"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	kongCtx := kong.Parse(c,
		kong.Name("codex-go"),
		kong.Description("Generic fractal node store with ontological indexing"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	return kongCtx.Run()
}
