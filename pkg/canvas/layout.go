package canvas

import (
	"math"
	"slices"

	apperrors "github.com/matzehuels/agentcanvas/pkg/errors"
)

// DefaultSpacing is the node spacing used when a layout request does not
// specify one.
const DefaultSpacing = 200.0

// forceIterations is the fixed iteration budget of the force strategy.
// Each iteration examines every unordered node pair, so the whole pass is
// O(n² · iterations) - acceptable at the tens of nodes this tool targets.
const forceIterations = 50

// forceMargin is the minimum coordinate enforced by the final positive-offset
// correction of the force strategy.
const forceMargin = 50.0

// ApplyLayout repositions every node on the canvas using the given strategy.
// Positions are mutated in place; one NodeUpdated notification is emitted per
// node and a single persistence write is scheduled afterwards.
//
// The grid strategy is idempotent: applying it twice over an unchanged node
// set produces identical positions. The force strategy separates any two
// node centers to at least spacing*0.8 within its iteration budget, when
// that minimum is geometrically achievable.
func (c *Canvas) ApplyLayout(strategy LayoutStrategy, spacing float64) (err error) {
	defer c.guard(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	if !ValidLayoutStrategies[strategy] {
		return apperrors.New(apperrors.ErrCodeInvalidStrategy,
			"invalid layout strategy %q (must be one of: grid, hierarchical, force)", strategy)
	}
	if spacing <= 0 {
		spacing = DefaultSpacing
	}

	switch strategy {
	case LayoutGrid:
		c.layoutGrid()
	case LayoutHierarchical:
		c.layoutHierarchical(spacing)
	case LayoutForce:
		c.layoutForce(spacing)
	}

	for _, n := range c.store.SortedNodes() {
		pos := n.Position
		c.notifier.nodeUpdated(NodeUpdate{NodeID: n.ID, Position: &pos})
	}
	c.schedule()

	c.logger.Debug("layout applied", "strategy", strategy, "spacing", spacing, "nodes", c.store.NodeCount())
	return nil
}

// =============================================================================
// Grid
// =============================================================================

// layoutGrid places root nodes in the fixed-column root grid and every child
// relative to its parent's already-updated position, using the same placement
// rules as node creation. Traversal is depth-first from roots in ID order, so
// the result depends only on the current node set.
func (c *Canvas) layoutGrid() {
	roots := c.layoutRoots()

	visited := make(map[string]bool)
	rootIndex := 0

	var place func(n *Node)
	place = func(n *Node) {
		if visited[n.ID] {
			return
		}
		visited[n.ID] = true
		for i, childID := range c.sortedChildren(n.ID) {
			child, ok := c.store.Node(childID)
			if !ok {
				continue
			}
			child.Position = PlanPosition(n, i)
			place(child)
		}
	}

	for _, root := range roots {
		root.Position = PlanPosition(nil, rootIndex)
		rootIndex++
		place(root)
	}

	// Nodes unreachable from any root (parent cycles in unvalidated client
	// snapshots) continue the root grid rather than keeping stale positions.
	for _, n := range c.store.SortedNodes() {
		if !visited[n.ID] {
			n.Position = PlanPosition(nil, rootIndex)
			rootIndex++
			place(n)
		}
	}
}

// layoutRoots returns nodes without a resolvable parent, sorted by ID.
// A node whose ParentID references a missing node is treated as a root.
func (c *Canvas) layoutRoots() []*Node {
	var roots []*Node
	for _, n := range c.store.SortedNodes() {
		if n.ParentID == "" {
			roots = append(roots, n)
			continue
		}
		if _, ok := c.store.Node(n.ParentID); !ok {
			roots = append(roots, n)
		}
	}
	return roots
}

// sortedChildren returns the direct children of a node in ID order.
func (c *Canvas) sortedChildren(id string) []string {
	children := append([]string(nil), c.store.Children(id)...)
	slices.Sort(children)
	return children
}

// =============================================================================
// Hierarchical
// =============================================================================

// layoutHierarchical assigns every node a level by walking its parent chain
// (root = 0, child = parent level + 1) and lays each level out as a
// horizontal row at a level-proportional vertical offset. The walk carries a
// visited set, so a containment cycle in an unvalidated snapshot degrades to
// level 0 instead of hanging the traversal.
func (c *Canvas) layoutHierarchical(spacing float64) {
	levels := make(map[string]int)

	var levelOf func(id string, walking map[string]bool) int
	levelOf = func(id string, walking map[string]bool) int {
		if lvl, ok := levels[id]; ok {
			return lvl
		}
		n, ok := c.store.Node(id)
		if !ok || n.ParentID == "" || walking[id] {
			levels[id] = 0
			return 0
		}
		walking[id] = true
		lvl := levelOf(n.ParentID, walking) + 1
		delete(walking, id)
		levels[id] = lvl
		return lvl
	}

	rows := make(map[int][]*Node)
	for _, n := range c.store.SortedNodes() {
		lvl := levelOf(n.ID, make(map[string]bool))
		rows[lvl] = append(rows[lvl], n)
	}

	for lvl, row := range rows {
		for i, n := range row {
			n.Position = Position{
				X: rootOriginX + float64(i)*spacing,
				Y: rootOriginY + float64(lvl)*spacing,
			}
		}
	}
}

// =============================================================================
// Force
// =============================================================================

// layoutForce runs a fixed number of pairwise-separation iterations. When two
// node centers are closer than spacing*0.8, both are pushed apart
// symmetrically along the connecting vector by half the overlap. A single
// global positive-offset correction afterwards keeps every coordinate above
// the minimum margin.
func (c *Canvas) layoutForce(spacing float64) {
	nodes := c.store.SortedNodes()
	minDist := spacing * 0.8

	for iter := 0; iter < forceIterations; iter++ {
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				a, b := nodes[i], nodes[j]
				dx := b.Position.X - a.Position.X
				dy := b.Position.Y - a.Position.Y
				dist := math.Hypot(dx, dy)

				if dist >= minDist {
					continue
				}

				// Coincident centers have no connecting vector; separate
				// them horizontally so the pass still makes progress.
				if dist == 0 {
					dx, dy, dist = 1, 0, 1
				}

				shift := (minDist - dist) / 2
				ux, uy := dx/dist, dy/dist
				a.Position.X -= ux * shift
				a.Position.Y -= uy * shift
				b.Position.X += ux * shift
				b.Position.Y += uy * shift
			}
		}
	}

	if len(nodes) == 0 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
	}

	offsetX, offsetY := 0.0, 0.0
	if minX < forceMargin {
		offsetX = forceMargin - minX
	}
	if minY < forceMargin {
		offsetY = forceMargin - minY
	}
	if offsetX != 0 || offsetY != 0 {
		for _, n := range nodes {
			n.Position.X += offsetX
			n.Position.Y += offsetY
		}
	}
}
