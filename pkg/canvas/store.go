package canvas

import (
	"slices"
)

// pairKey builds the ordered-endpoint index key for an edge.
func pairKey(sourceID, targetID string) string {
	return sourceID + "\x00" + targetID
}

// Store holds the two keyed collections that form the source of truth
// for the canvas: nodes and edges. It maintains secondary indices for
// the ordered endpoint pair of each edge and for parent containment,
// so conflict checks and cascade traversals stay O(1)/O(children).
//
// The zero value is not usable - use NewStore. Store is not safe for
// concurrent use without external synchronization; Canvas serializes
// all access behind its own mutex.
type Store struct {
	nodes    map[string]*Node
	edges    map[string]*Edge
	pairs    map[string]string   // ordered (source,target) -> edge ID
	children map[string][]string // parent ID -> child node IDs
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nodes:    make(map[string]*Node),
		edges:    make(map[string]*Edge),
		pairs:    make(map[string]string),
		children: make(map[string][]string),
	}
}

// AddNode inserts a node. The caller is responsible for ID uniqueness;
// inserting an existing ID replaces the node but not its containment index,
// so Canvas never does that.
func (s *Store) AddNode(n *Node) {
	s.nodes[n.ID] = n
	if n.ParentID != "" {
		s.children[n.ParentID] = append(s.children[n.ParentID], n.ID)
	}
}

// Node returns the node with the given ID and true, or nil and false.
// The returned pointer refers to the actual node, so mutations are visible
// to later reads.
func (s *Store) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// RemoveNode deletes a node and unlinks it from the containment index.
// Edges touching the node are not removed here; Canvas removes them
// explicitly so it can emit one event per removed entity.
func (s *Store) RemoveNode(id string) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	if n.ParentID != "" {
		s.children[n.ParentID] = slices.DeleteFunc(s.children[n.ParentID], func(c string) bool { return c == id })
		if len(s.children[n.ParentID]) == 0 {
			delete(s.children, n.ParentID)
		}
	}
	delete(s.nodes, id)
}

// Reparent moves a node under a new parent, updating the containment index.
// An empty newParentID detaches the node to the root level.
func (s *Store) Reparent(id, newParentID string) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	if n.ParentID != "" {
		s.children[n.ParentID] = slices.DeleteFunc(s.children[n.ParentID], func(c string) bool { return c == id })
		if len(s.children[n.ParentID]) == 0 {
			delete(s.children, n.ParentID)
		}
	}
	n.ParentID = newParentID
	if newParentID != "" {
		s.children[newParentID] = append(s.children[newParentID], id)
	}
}

// Children returns the IDs of nodes whose ParentID equals id, in insertion
// order. The returned slice should be treated as a read-only view.
func (s *Store) Children(id string) []string { return s.children[id] }

// ChildCount returns the number of direct children of a node.
func (s *Store) ChildCount(id string) int { return len(s.children[id]) }

// RootCount returns the number of nodes without a parent.
func (s *Store) RootCount() int {
	count := 0
	for _, n := range s.nodes {
		if n.ParentID == "" {
			count++
		}
	}
	return count
}

// AddEdge inserts an edge and indexes its ordered endpoint pair.
func (s *Store) AddEdge(e *Edge) {
	s.edges[e.ID] = e
	s.pairs[pairKey(e.SourceID, e.TargetID)] = e.ID
}

// Edge returns the edge with the given ID and true, or nil and false.
func (s *Store) Edge(id string) (*Edge, bool) {
	e, ok := s.edges[id]
	return e, ok
}

// EdgeBetween returns the ID of the edge with the given ordered endpoints
// and true, or "" and false if no such edge exists. The reverse pair is a
// distinct edge.
func (s *Store) EdgeBetween(sourceID, targetID string) (string, bool) {
	id, ok := s.pairs[pairKey(sourceID, targetID)]
	return id, ok
}

// RemoveEdge deletes an edge and its pair index entry.
func (s *Store) RemoveEdge(id string) {
	e, ok := s.edges[id]
	if !ok {
		return
	}
	delete(s.pairs, pairKey(e.SourceID, e.TargetID))
	delete(s.edges, id)
}

// EdgesTouching returns the IDs of every edge with the node as source or
// target. The order is not guaranteed.
func (s *Store) EdgesTouching(nodeID string) []string {
	var ids []string
	for id, e := range s.edges {
		if e.SourceID == nodeID || e.TargetID == nodeID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Nodes returns all nodes. The order is not guaranteed; callers that need
// determinism sort by ID.
func (s *Store) Nodes() []*Node {
	nodes := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Edges returns all edges. The order is not guaranteed.
func (s *Store) Edges() []*Edge {
	edges := make([]*Edge, 0, len(s.edges))
	for _, e := range s.edges {
		edges = append(edges, e)
	}
	return edges
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// Clear empties both collections and all indices.
func (s *Store) Clear() {
	s.nodes = make(map[string]*Node)
	s.edges = make(map[string]*Edge)
	s.pairs = make(map[string]string)
	s.children = make(map[string][]string)
}

// SortedNodes returns all nodes sorted by ID for deterministic output.
func (s *Store) SortedNodes() []*Node {
	nodes := s.Nodes()
	slices.SortFunc(nodes, func(a, b *Node) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return nodes
}

// SortedEdges returns all edges sorted by ID for deterministic output.
func (s *Store) SortedEdges() []*Edge {
	edges := s.Edges()
	slices.SortFunc(edges, func(a, b *Edge) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return edges
}
