// Package mcp provides the MCP (Model Context Protocol) server for the codex.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/living-codex/codex-go/internal/embeddings"
	"github.com/living-codex/codex-go/internal/fractal"
	"github.com/living-codex/codex-go/internal/graph"
	"github.com/living-codex/codex-go/internal/index"
	"github.com/living-codex/codex-go/internal/ontology"
	"github.com/living-codex/codex-go/internal/resonance"
	"github.com/living-codex/codex-go/internal/storage"
)

// Server represents the MCP server.
type Server struct {
	store  storage.Store
	engine *index.Engine
	reg    *ontology.Registry
	scorer *resonance.Scorer
	server *mcp.Server
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a new MCP server over a store and query index.
// The engine may be nil; theme queries then report an empty index.
func NewServer(store storage.Store, engine *index.Engine) *Server {
	reg := ontology.NewRegistry()
	s := &Server{
		store:  store,
		engine: engine,
		reg:    reg,
		scorer: resonance.NewScorer(reg),
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "codex-go",
		Version: "0.1.0",
	}, nil)

	return s
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "codex_query",
			Description: "Search the codex using hybrid search. Returns ranked nodes matching the query.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"query": {Type: "string", Description: "Search query text"},
					"limit": {Type: "integer", Description: "Maximum number of results"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "codex_node",
			Description: "Fetch a single codex node by ID with its full ontological metadata.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"id": {Type: "string", Description: "Node ID, e.g. codex:Void"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "codex_context",
			Description: "Get the full picture of a node: parent, children and contributions.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"id": {Type: "string", Description: "Node ID to look up"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "codex_expand",
			Description: "Expand a node into its fractal children across the scientific, symbolic and water lenses.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"id": {Type: "string", Description: "Node ID to expand"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "codex_score",
			Description: "Compute a node's resonance score with its factor breakdown.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"id": {Type: "string", Description: "Node ID to score"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "codex_similar",
			Description: "Rank the nodes most resonant with a given node by pairwise similarity.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"id":    {Type: "string", Description: "Node ID to compare against"},
					"limit": {Type: "integer", Description: "Maximum number of results"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "codex_theme",
			Description: "Query the ontological index by theme (ice, liquid, vapor, plasma).",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"theme": {Type: "string", Description: "Theme name"},
				},
				Required: []string{"theme"},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "codex://overview",
			Name:        "Codex Overview",
			Description: "High-level statistics about the codex store",
			MimeType:    "text/plain",
		},
		{
			URI:         "codex://ontology",
			Name:        "Ontology Tables",
			Description: "The chakra correspondences and theme mappings",
			MimeType:    "text/plain",
		},
		{
			URI:         "codex://manifest",
			Name:        "Store Manifest",
			Description: "The raw manifest of the codex store",
			MimeType:    "application/json",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "codex_query":
		query, _ := args["query"].(string)
		limit, _ := args["limit"].(float64)
		if limit == 0 {
			limit = 20
		}
		return s.handleQuery(ctx, query, int(limit))
	case "codex_node":
		id, _ := args["id"].(string)
		return s.handleNode(ctx, id)
	case "codex_context":
		id, _ := args["id"].(string)
		return s.handleContext(ctx, id)
	case "codex_expand":
		id, _ := args["id"].(string)
		return s.handleExpand(ctx, id)
	case "codex_score":
		id, _ := args["id"].(string)
		return s.handleScore(ctx, id)
	case "codex_similar":
		id, _ := args["id"].(string)
		limit, _ := args["limit"].(float64)
		if limit == 0 {
			limit = 10
		}
		return s.handleSimilar(ctx, id, int(limit))
	case "codex_theme":
		theme, _ := args["theme"].(string)
		return s.handleTheme(theme)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "codex://overview":
		return s.getOverview(ctx), nil
	case "codex://ontology":
		return s.getOntology(), nil
	case "codex://manifest":
		return s.getManifest(ctx)
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// Note: Do NOT use SetIndent - MCP protocol requires compact JSON (one line per message)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		// Parse JSON-RPC request
		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		// Handle request
		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    "codex-go",
				"version": "0.1.0",
			},
			"capabilities": map[string]any{
				"tools": map[string]any{
					"listChanged": false,
				},
				"resources": map[string]any{
					"listChanged": false,
				},
			},
		},
	}
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		schema, _ := json.Marshal(tool.InputSchema)
		var schemaMap map[string]any
		json.Unmarshal(schema, &schemaMap)

		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": schemaMap,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"tools": toolList,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"resources": resourceList,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"contents": []map[string]any{
				{
					"uri":      uri,
					"mimeType": "text/plain",
					"text":     content,
				},
			},
		},
	}
}

// Tool Handlers

func (s *Server) handleQuery(ctx context.Context, query string, limit int) (string, error) {
	if query == "" {
		return "No query provided", nil
	}

	// Refit on the stored corpus so the query lands in the same vector
	// space as the embeddings written at bootstrap.
	var vector []float32
	if corpus, err := storage.CollectNodes(s.store.List(ctx, nil)); err == nil {
		embedder := embeddings.NewTFIDFEmbedder()
		embedder.Fit(corpus)
		vector = embedder.Embed(query)
	}

	hybridResults, err := s.store.HybridSearch(ctx, query, vector, limit)
	if err != nil {
		// Fallback to text search only
		results, err := s.store.TextSearch(ctx, query, limit)
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			return "No results found", nil
		}
		return formatSearchResults(results, query), nil
	}

	if len(hybridResults) == 0 {
		return "No results found", nil
	}

	return formatHybridResults(hybridResults, query), nil
}

func (s *Server) handleNode(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "No node ID provided", nil
	}

	node, err := s.store.Get(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return fmt.Sprintf("Node '%s' not found", id), nil
		}
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", node.Name))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", node.ID))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", node.Type))
	if node.Meta.WaterState != "" {
		sb.WriteString(fmt.Sprintf("**Water state:** %s\n", node.Meta.WaterState))
	}
	if node.Meta.Chakra != "" {
		sb.WriteString(fmt.Sprintf("**Chakra:** %s (%s, %.0f Hz)\n",
			node.Meta.Chakra, node.Meta.ColorHex, node.Meta.BaseFrequencyHz))
	}
	if node.Meta.Planet != "" {
		sb.WriteString(fmt.Sprintf("**Planet:** %s\n", node.Meta.Planet))
	}
	if len(node.Meta.Archetypes) > 0 {
		sb.WriteString(fmt.Sprintf("**Archetypes:** %s\n", strings.Join(node.Meta.Archetypes, ", ")))
	}
	sb.WriteString(fmt.Sprintf("**Resonance:** %.2f", node.Meta.Resonance))
	if node.Meta.ResonancePattern != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", node.Meta.ResonancePattern))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Depth:** %d, **Children:** %d\n", node.Structure.Depth, len(node.Children)))
	if node.Content != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", node.Content))
	}

	return sb.String(), nil
}

func (s *Server) handleContext(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "No node ID provided", nil
	}

	node, err := s.store.Get(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return fmt.Sprintf("Node '%s' not found", id), nil
		}
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Context for node: **%s**\n\n", node.Name))

	if node.ParentID != "" {
		if parent, err := s.store.Get(ctx, node.ParentID); err == nil {
			sb.WriteString(fmt.Sprintf("## Parent\n- %s (%s)\n\n", parent.Name, parent.ID))
		}
	}

	if len(node.Children) > 0 {
		sb.WriteString(fmt.Sprintf("## Children (%d)\n", len(node.Children)))
		for _, childID := range node.Children {
			child, err := s.store.Get(ctx, childID)
			if err != nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("- %s (%s/%s) resonance %.2f\n",
				child.Name, child.Structure.Lens, child.Structure.Aspect, child.Meta.Resonance))
		}
		sb.WriteString("\n")
	}

	contributions, _ := s.store.Contributions(ctx, id)
	if len(contributions) > 0 {
		sb.WriteString(fmt.Sprintf("## Contributions (%d)\n", len(contributions)))
		for _, c := range contributions {
			content := c.Content
			if len(content) > 120 {
				content = content[:120] + "..."
			}
			sb.WriteString(fmt.Sprintf("- [%s] %s (resonance %.2f)\n", c.UserID, content, c.Resonance))
		}
		sb.WriteString("\n")
	}

	if node.ParentID == "" && len(node.Children) == 0 && len(contributions) == 0 {
		sb.WriteString("No connections found. Node may be unexpanded.\n\n")
	}

	sb.WriteString("Next: Use `codex_expand` to unfold this node, or `codex_similar` to find resonant nodes.")

	return sb.String(), nil
}

func (s *Server) handleExpand(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "No node ID provided", nil
	}

	node, err := s.store.Get(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return fmt.Sprintf("Node '%s' not found", id), nil
		}
		return "", err
	}

	children, err := fractal.ExpandInto(ctx, s.store, node)
	if err != nil {
		return "", err
	}

	if s.engine != nil {
		s.engine.Index(node)
		for _, child := range children {
			s.engine.Index(child)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Expanded **%s** into %d children:\n\n", node.Name, len(children)))
	for _, child := range children {
		sb.WriteString(fmt.Sprintf("- %s (%s/%s) resonance %.2f\n",
			child.ID, child.Structure.Lens, child.Structure.Aspect, child.Meta.Resonance))
	}

	return sb.String(), nil
}

func (s *Server) handleScore(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "No node ID provided", nil
	}

	node, err := s.store.Get(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return fmt.Sprintf("Node '%s' not found", id), nil
		}
		return "", err
	}

	result := s.scorer.NodeResonance(node)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Resonance for **%s**: %.3f (%s)\n\n", node.Name, result.Score, result.Pattern))
	sb.WriteString("## Factors\n")

	factors := make([]string, 0, len(result.Factors))
	for name := range result.Factors {
		factors = append(factors, name)
	}
	sort.Strings(factors)
	for _, name := range factors {
		sb.WriteString(fmt.Sprintf("- %s: %.3f\n", name, result.Factors[name]))
	}

	sb.WriteString(fmt.Sprintf("\nCoherence: %.3f, Self-similarity: %.3f\n",
		s.scorer.Coherence(node), s.scorer.SelfSimilarity(node)))

	return sb.String(), nil
}

func (s *Server) handleSimilar(ctx context.Context, id string, limit int) (string, error) {
	if id == "" {
		return "No node ID provided", nil
	}

	node, err := s.store.Get(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return fmt.Sprintf("Node '%s' not found", id), nil
		}
		return "", err
	}

	type ranked struct {
		node  *graph.Node
		score float64
	}
	var pairs []ranked
	for other, err := range s.store.List(ctx, func(n *graph.Node) bool { return n.ID != id }) {
		if err != nil {
			return "", err
		}
		pairs = append(pairs, ranked{other, s.scorer.Pairwise(node, other)})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].node.ID < pairs[j].node.ID
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}

	if len(pairs) == 0 {
		return fmt.Sprintf("No other nodes to compare with '%s'", id), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Nodes most resonant with **%s**:\n\n", node.Name))
	for i, p := range pairs {
		sb.WriteString(fmt.Sprintf("%d. **%s** similarity %.3f\n", i+1, p.node.ID, p.score))
	}

	return sb.String(), nil
}

func (s *Server) handleTheme(theme string) (string, error) {
	if theme == "" {
		return "No theme provided", nil
	}
	if _, ok := s.reg.Theme(theme); !ok {
		names := s.reg.Themes()
		sort.Strings(names)
		return fmt.Sprintf("Unknown theme '%s'. Known themes: %s", theme, strings.Join(names, ", ")), nil
	}
	if s.engine == nil {
		return "The query index is not loaded", nil
	}

	result := s.engine.ThemeQuery(theme)
	if result.TotalCount == 0 {
		return fmt.Sprintf("No nodes match theme '%s'", theme), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d node(s) for theme '%s':\n\n", result.TotalCount, theme))
	for i, entry := range result.Entries {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%s) resonance %.2f\n",
			i+1, entry.NodeID, entry.NodeType, entry.Resonance))
	}

	return sb.String(), nil
}

// formatHybridResults formats hybrid search results as markdown.
func formatHybridResults(results []storage.HybridResult, query string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d results for '%s' (hybrid search):\n\n", len(results), query))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, r.Name, r.Type))
		if r.WaterState != "" {
			sb.WriteString(fmt.Sprintf("   Water state: %s\n", r.WaterState))
		}
		sb.WriteString(fmt.Sprintf("   Score: %.3f\n", r.Score))
		if r.Snippet != "" {
			snippet := r.Snippet
			if len(snippet) > 200 {
				snippet = snippet[:200] + "..."
			}
			sb.WriteString(fmt.Sprintf("   %s\n", snippet))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Next: Use `codex_context` on a specific node for the full picture.")

	return sb.String()
}

// formatSearchResults formats text search results as markdown.
func formatSearchResults(results []storage.SearchResult, query string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d results for '%s':\n\n", len(results), query))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, r.Name, r.Type))
		if r.WaterState != "" {
			sb.WriteString(fmt.Sprintf("   Water state: %s\n", r.WaterState))
		}
		sb.WriteString(fmt.Sprintf("   Score: %.3f\n", r.Score))
		if r.Snippet != "" {
			snippet := r.Snippet
			if len(snippet) > 200 {
				snippet = snippet[:200] + "..."
			}
			sb.WriteString(fmt.Sprintf("   %s\n", snippet))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Next: Use `codex_context` on a specific node for the full picture.")

	return sb.String()
}

// Resource Handlers

func (s *Server) getOverview(ctx context.Context) string {
	var sb strings.Builder
	sb.WriteString("# Codex Overview\n\n")

	manifest, err := s.store.Manifest(ctx)
	if err != nil {
		sb.WriteString(fmt.Sprintf("**Nodes:** %d\n", s.store.NodeCount()))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("**Store:** %s\n", manifest.StoreID))
	sb.WriteString(fmt.Sprintf("**Nodes:** %d\n", manifest.TotalNodes))
	sb.WriteString(fmt.Sprintf("**Subnodes:** %d\n", manifest.TotalSubnodes))
	sb.WriteString(fmt.Sprintf("**Contributions:** %d\n", manifest.TotalContributions))
	sb.WriteString(fmt.Sprintf("**Users:** %d\n", manifest.TotalUsers))
	sb.WriteString(fmt.Sprintf("**Last updated:** %s\n", manifest.LastUpdated))
	sb.WriteString("\n## Node Types\n\n")
	sb.WriteString("- seed: Canonical base nodes (codex:Void, codex:Flow, ...)\n")
	sb.WriteString("- aspect: Fractal expansion children\n")
	sb.WriteString("- concept: Free-form concept nodes\n")
	sb.WriteString("- contribution: User contribution nodes\n")

	return sb.String()
}

func (s *Server) getOntology() string {
	var sb strings.Builder
	sb.WriteString("# Codex Ontology\n\n")
	sb.WriteString("## Chakras\n\n")
	sb.WriteString("| Chakra | Color | Frequency |\n")
	sb.WriteString("|--------|-------|----------|\n")

	names := s.reg.Chakras()
	sort.Strings(names)
	for _, name := range names {
		info, _ := s.reg.Chakra(name)
		sb.WriteString(fmt.Sprintf("| %s | %s | %.0f Hz |\n", name, info.ColorHex, info.BaseFrequencyHz))
	}

	sb.WriteString("\n## Themes\n\n")
	sb.WriteString("| Theme | Water state | Chakra | Frequency |\n")
	sb.WriteString("|-------|-------------|--------|----------|\n")

	themes := s.reg.Themes()
	sort.Strings(themes)
	for _, name := range themes {
		theme, _ := s.reg.Theme(name)
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			name, theme.WaterState, theme.Chakra, theme.Frequency))
	}

	return sb.String()
}

func (s *Server) getManifest(ctx context.Context) (string, error) {
	manifest, err := s.store.Manifest(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Helper functions

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
