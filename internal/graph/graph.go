// Package graph provides the in-memory codex graph.
//
// CodexGraph is a lightweight, map-backed store of Node values with O(1)
// lookups by ID. Secondary indexes on node type and parent keep queries
// proportional to the result set, and an insertion-order list preserves
// the order nodes were added, which the index engine relies on.
package graph

import (
	"sync"
)

// CodexGraph is an in-memory hierarchy of codex nodes.
//
// Nodes are keyed by their ID string. The parent/child relation is
// bidirectional: AddNode and SetParent always update both the child's
// ParentID and the parent's Children list, so the two views never
// disagree.
type CodexGraph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string

	// Secondary indexes, kept in sync by add/remove helpers.
	byType   map[NodeType]map[string]*Node
	byParent map[string]map[string]*Node
}

// NewCodexGraph creates a new empty codex graph.
func NewCodexGraph() *CodexGraph {
	return &CodexGraph{
		nodes:    make(map[string]*Node),
		byType:   make(map[NodeType]map[string]*Node),
		byParent: make(map[string]map[string]*Node),
	}
}

// NodeCount returns the number of nodes without list materialization.
func (g *CodexGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// CountByType returns the count of nodes with the given type.
func (g *CodexGraph) CountByType(t NodeType) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if nodes, ok := g.byType[t]; ok {
		return len(nodes)
	}
	return 0
}

// AddNode adds a node to the graph, replacing any existing node with the
// same ID, and repairs the parent/child links on both sides: the parent
// (when present) gains the node in its Children list, and any child
// named in the node's Children list gains the node as its ParentID.
func (g *CodexGraph) AddNode(node *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	old, existed := g.nodes[node.ID]
	if existed {
		if old.Type != node.Type {
			delete(g.byType[old.Type], node.ID)
		}
		if old.ParentID != node.ParentID {
			delete(g.byParent[old.ParentID], node.ID)
		}
	} else {
		g.order = append(g.order, node.ID)
	}

	g.nodes[node.ID] = node

	if g.byType[node.Type] == nil {
		g.byType[node.Type] = make(map[string]*Node)
	}
	g.byType[node.Type][node.ID] = node

	if node.ParentID != "" {
		if g.byParent[node.ParentID] == nil {
			g.byParent[node.ParentID] = make(map[string]*Node)
		}
		g.byParent[node.ParentID][node.ID] = node

		if parent, ok := g.nodes[node.ParentID]; ok && !parent.HasChild(node.ID) {
			parent.Children = append(parent.Children, node.ID)
		}
	}

	for _, childID := range node.Children {
		if child, ok := g.nodes[childID]; ok && child.ParentID != node.ID {
			delete(g.byParent[child.ParentID], childID)
			child.ParentID = node.ID
			if g.byParent[node.ID] == nil {
				g.byParent[node.ID] = make(map[string]*Node)
			}
			g.byParent[node.ID][childID] = child
		}
	}
}

// GetNode returns the node with the given ID, or nil if it does not exist.
func (g *CodexGraph) GetNode(id string) *Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[id]
}

// SetParent re-parents a node, maintaining both sides of the link.
// Returns false if either node does not exist.
func (g *CodexGraph) SetParent(childID, parentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	child, ok := g.nodes[childID]
	if !ok {
		return false
	}
	parent, ok := g.nodes[parentID]
	if !ok {
		return false
	}

	if child.ParentID == parentID {
		return true
	}

	if old, ok := g.nodes[child.ParentID]; ok {
		for i, id := range old.Children {
			if id == childID {
				old.Children = append(old.Children[:i], old.Children[i+1:]...)
				break
			}
		}
	}
	delete(g.byParent[child.ParentID], childID)

	child.ParentID = parentID
	if !parent.HasChild(childID) {
		parent.Children = append(parent.Children, childID)
	}
	if g.byParent[parentID] == nil {
		g.byParent[parentID] = make(map[string]*Node)
	}
	g.byParent[parentID][childID] = child
	return true
}

// NodesByType returns all nodes with the given type, in insertion order.
func (g *CodexGraph) NodesByType(t NodeType) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	set, ok := g.byType[t]
	if !ok {
		return nil
	}

	result := make([]*Node, 0, len(set))
	for _, id := range g.order {
		if node, ok := set[id]; ok {
			result = append(result, node)
		}
	}
	return result
}

// Children returns the child nodes of the given ID, in the parent's
// Children order.
func (g *CodexGraph) Children(id string) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	parent, ok := g.nodes[id]
	if !ok {
		return nil
	}

	result := make([]*Node, 0, len(parent.Children))
	for _, childID := range parent.Children {
		if child, ok := g.nodes[childID]; ok {
			result = append(result, child)
		}
	}
	return result
}

// Parent returns the parent of the given node, or nil for roots and
// unknown IDs.
func (g *CodexGraph) Parent(id string) *Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[id]
	if !ok || node.ParentID == "" {
		return nil
	}
	return g.nodes[node.ParentID]
}

// Siblings returns nodes sharing the given node's parent, excluding the
// node itself.
func (g *CodexGraph) Siblings(id string) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[id]
	if !ok || node.ParentID == "" {
		return nil
	}
	parent, ok := g.nodes[node.ParentID]
	if !ok {
		return nil
	}

	result := make([]*Node, 0, len(parent.Children)-1)
	for _, childID := range parent.Children {
		if childID == id {
			continue
		}
		if sib, ok := g.nodes[childID]; ok {
			result = append(result, sib)
		}
	}
	return result
}

// Nodes returns all nodes in insertion order.
func (g *CodexGraph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*Node, 0, len(g.nodes))
	for _, id := range g.order {
		result = append(result, g.nodes[id])
	}
	return result
}

// IterNodes returns a channel that yields all nodes in insertion order.
func (g *CodexGraph) IterNodes() <-chan *Node {
	g.mu.RLock()
	ch := make(chan *Node, len(g.nodes))
	for _, id := range g.order {
		ch <- g.nodes[id]
	}
	close(ch)
	g.mu.RUnlock()
	return ch
}

// RemoveNode removes a node, detaching it from its parent's Children
// list and orphaning its children (their ParentID is cleared).
// Returns true if the node existed and was removed.
func (g *CodexGraph) RemoveNode(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[id]
	if !ok {
		return false
	}

	delete(g.nodes, id)
	delete(g.byType[node.Type], id)
	delete(g.byParent[node.ParentID], id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	if parent, ok := g.nodes[node.ParentID]; ok {
		for i, cid := range parent.Children {
			if cid == id {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				break
			}
		}
	}

	for _, childID := range node.Children {
		if child, ok := g.nodes[childID]; ok {
			child.ParentID = ""
		}
	}
	delete(g.byParent, id)

	return true
}

// Stats returns a summary of graph size by node type.
func (g *CodexGraph) Stats() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stats := map[string]int{"nodes": len(g.nodes)}
	for t, set := range g.byType {
		stats[string(t)] = len(set)
	}
	return stats
}
