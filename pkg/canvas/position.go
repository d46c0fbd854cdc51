package canvas

// Layout constants for default placement. All placement is deterministic:
// a position depends only on the current sibling count, never on randomness
// or wall-clock time.
const (
	// Root-level grid (nodes without a parent).
	rootColumns  = 4
	rootOriginX  = 100.0
	rootOriginY  = 100.0
	rootPitchX   = 220.0
	rootPitchY   = 160.0

	// Pool containers lay children out in a 3-column sub-grid.
	poolColumns = 3
	poolInsetX  = 40.0
	poolInsetY  = 80.0
	poolPitchX  = 180.0
	poolPitchY  = 120.0

	// Department containers lay children out in a horizontal sequence.
	departmentInsetX = 40.0
	departmentInsetY = 100.0
	departmentPitchX = 240.0

	// Any other parent stacks children vertically.
	stackInsetX = 40.0
	stackInsetY = 100.0
	stackPitchY = 120.0
)

// PlanPosition computes the default position for a new node given its parent
// (nil for root-level nodes) and the number of existing siblings.
//
//   - No parent: fixed 4-column grid, filling left to right, top to bottom.
//   - Pool parent: 3-column sub-grid relative to the pool's origin.
//   - Department parent: horizontal sequence of fixed-width slots.
//   - Any other parent: vertical stack.
func PlanPosition(parent *Node, siblingCount int) Position {
	if parent == nil {
		col := siblingCount % rootColumns
		row := siblingCount / rootColumns
		return Position{
			X: rootOriginX + float64(col)*rootPitchX,
			Y: rootOriginY + float64(row)*rootPitchY,
		}
	}

	switch parent.Type {
	case TypePool:
		col := siblingCount % poolColumns
		row := siblingCount / poolColumns
		return Position{
			X: parent.Position.X + poolInsetX + float64(col)*poolPitchX,
			Y: parent.Position.Y + poolInsetY + float64(row)*poolPitchY,
		}
	case TypeDepartment:
		return Position{
			X: parent.Position.X + departmentInsetX + float64(siblingCount)*departmentPitchX,
			Y: parent.Position.Y + departmentInsetY,
		}
	default:
		return Position{
			X: parent.Position.X + stackInsetX,
			Y: parent.Position.Y + stackInsetY + float64(siblingCount)*stackPitchY,
		}
	}
}
