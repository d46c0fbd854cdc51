package canvas

import (
	"strings"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// NodeType is the canonical category of a node.
// Values are upper-case with underscores (e.g., "MCP_SERVER").
type NodeType string

// Canonical node categories.
const (
	TypeAgent      NodeType = "AGENT"      // Orchestration unit (the primary category)
	TypeHook       NodeType = "HOOK"       // Lifecycle hook
	TypeMCPServer  NodeType = "MCP_SERVER" // Tool server
	TypeCommand    NodeType = "COMMAND"    // Slash command
	TypeSkill      NodeType = "SKILL"      // Reusable capability
	TypePool       NodeType = "POOL"       // Worker pool container
	TypeDepartment NodeType = "DEPARTMENT" // Department container
)

// IsContainer reports whether nodes of this type can meaningfully contain
// children for layout purposes.
func (t NodeType) IsContainer() bool {
	return t == TypePool || t == TypeDepartment
}

// EdgeType is the semantic relationship tag on an edge.
type EdgeType string

// Edge relationship types.
const (
	EdgeData       EdgeType = "data"
	EdgeControl    EdgeType = "control"
	EdgeEvent      EdgeType = "event"
	EdgeDelegation EdgeType = "delegation"
	EdgeFailover   EdgeType = "failover"
)

// ValidEdgeTypes is the closed set of supported edge types.
var ValidEdgeTypes = map[EdgeType]bool{
	EdgeData:       true,
	EdgeControl:    true,
	EdgeEvent:      true,
	EdgeDelegation: true,
	EdgeFailover:   true,
}

// ParseEdgeType normalizes a raw edge type string.
// Returns the parsed type and whether it is a member of the closed set.
func ParseEdgeType(s string) (EdgeType, bool) {
	et := EdgeType(strings.ToLower(strings.TrimSpace(s)))
	return et, ValidEdgeTypes[et]
}

// LayoutStrategy selects a whole-graph repositioning pass.
type LayoutStrategy string

// Layout strategies.
const (
	LayoutGrid         LayoutStrategy = "grid"
	LayoutHierarchical LayoutStrategy = "hierarchical"
	LayoutForce        LayoutStrategy = "force"
)

// ValidLayoutStrategies is the closed set of supported strategies.
var ValidLayoutStrategies = map[LayoutStrategy]bool{
	LayoutGrid:         true,
	LayoutHierarchical: true,
	LayoutForce:        true,
}

// =============================================================================
// Position
// =============================================================================

// Position is a 2-D canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// =============================================================================
// Node and Edge
// =============================================================================

// Node is a single workflow entity on the canvas.
//
// Data holds the category-specific configuration and supports dot-path
// nested access through Canvas.UpdateProperty. ParentID is a weak
// containment reference; deletion of the parent cascades to children.
type Node struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Label    string         `json:"label"`
	Position Position       `json:"position"`
	ParentID string         `json:"parentId,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Edge is a directed, typed connection between two nodes.
// At most one edge may exist for an ordered (SourceID, TargetID) pair,
// regardless of EdgeType.
type Edge struct {
	ID       string         `json:"id"`
	SourceID string         `json:"sourceId"`
	TargetID string         `json:"targetId"`
	EdgeType EdgeType       `json:"edgeType"`
	Data     map[string]any `json:"data,omitempty"`
}

// =============================================================================
// Relational State - Sanitized Read Model
// =============================================================================

// NodeState is the sanitized per-node view exposed by Canvas.State.
// Data is deliberately excluded so lightweight consumers never receive
// large configuration payloads.
type NodeState struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Label    string   `json:"label"`
	Position Position `json:"position"`
	ParentID string   `json:"parentId,omitempty"`
}

// EdgeState is the sanitized per-edge view exposed by Canvas.State.
type EdgeState struct {
	ID       string   `json:"id"`
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	EdgeType EdgeType `json:"edgeType"`
}

// State is the read-only relational snapshot of the whole canvas.
type State struct {
	Nodes []NodeState `json:"nodes"`
	Edges []EdgeState `json:"edges"`
}

// =============================================================================
// Operation Results
// =============================================================================

// CreateResult is returned by Canvas.CreateNode.
type CreateResult struct {
	NodeID   string   `json:"nodeId"`
	Position Position `json:"position"`
}

// ConnectResult is returned by Canvas.ConnectNodes.
type ConnectResult struct {
	EdgeID string `json:"edgeId"`
}
