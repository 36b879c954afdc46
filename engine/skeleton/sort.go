package skeleton

import "fmt"

// SortJoints reorders joints so that parents always come before children and rewrites
// parent indices to match. Importers whose source order is arbitrary call this before
// NewSkeleton.
//
// Ordering is breadth-first from the roots in their original order, children in their
// original order, so an already sorted input keeps a stable layout per depth level.
//
// Parameters:
//   - joints: joints in any order with ParentIndex referring to positions in this slice
//
// Returns:
//   - []Joint: the joints in parent-first order
//   - []int: old index to new index mapping (oldToNew[old] = new)
//   - error: ErrNonTopological (wrapped) if a parent index is out of range or the hierarchy has a cycle
func SortJoints(joints []Joint) ([]Joint, []int, error) {
	if len(joints) == 0 {
		return nil, nil, ErrEmptySkeleton
	}

	children := make([][]int, len(joints))
	queue := make([]int, 0, len(joints))
	for i, j := range joints {
		switch {
		case j.ParentIndex < 0:
			queue = append(queue, i)
		case j.ParentIndex >= len(joints):
			return nil, nil, fmt.Errorf("joint %d (%q) has parent %d out of range: %w", i, j.Name, j.ParentIndex, ErrNonTopological)
		default:
			children[j.ParentIndex] = append(children[j.ParentIndex], i)
		}
	}

	sorted := make([]int, 0, len(joints))
	for len(queue) > 0 {
		old := queue[0]
		queue = queue[1:]
		sorted = append(sorted, old)
		queue = append(queue, children[old]...)
	}

	// Anything unreachable from a root sits on a cycle.
	if len(sorted) < len(joints) {
		return nil, nil, fmt.Errorf("%d joints unreachable from any root: %w", len(joints)-len(sorted), ErrNonTopological)
	}

	oldToNew := make([]int, len(joints))
	for newIdx, oldIdx := range sorted {
		oldToNew[oldIdx] = newIdx
	}

	out := make([]Joint, len(joints))
	for newIdx, oldIdx := range sorted {
		j := joints[oldIdx]
		if j.ParentIndex >= 0 {
			j.ParentIndex = oldToNew[j.ParentIndex]
		} else {
			j.ParentIndex = -1
		}
		out[newIdx] = j
	}

	return out, oldToNew, nil
}
