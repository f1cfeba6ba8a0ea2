// Package bvh builds bounding volume hierarchies for ray-queried
// geometry. Construction is split into a per-piece SAH builder and an
// incremental scheduler that spreads building across frames under a
// wall-time budget, so heavy scenes never stall the frame loop.
package bvh

import (
	"math"

	"github.com/yht0511/terminus-lidar/types"
)

// Nodes are stored as a contiguous list. The two int32 fields are
// multipurpose: inner nodes keep L/R child indices (both > 0), leaf
// nodes keep the negated offset of their first item in the tree's item
// list (LData <= 0) and the item count (RData).
type Node struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set left and right child node indices.
func (n *Node) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Set leaf item offset and count.
func (n *Node) SetItems(first, count uint32) {
	n.LData = -int32(first)
	n.RData = int32(count)
}

// Get leaf item offset and count.
func (n *Node) Items() (first, count uint32) {
	return uint32(-n.LData), uint32(n.RData)
}

// Leaf reports whether this node holds items instead of children.
func (n *Node) Leaf() bool {
	return n.LData <= 0
}

// Tree is a built hierarchy over one geometry piece. Items holds
// indices into the piece's volume list, grouped per leaf.
type Tree struct {
	Nodes []Node
	Items []uint32
}

// Traverse visits the items of every leaf whose bounding box intersects
// the ray segment [0, maxDist].
func (t *Tree) Traverse(origin, dir types.Vec3, maxDist float32, visit func(item uint32)) {
	if len(t.Nodes) == 0 {
		return
	}

	invDir := types.XYZ(safeInv(dir[0]), safeInv(dir[1]), safeInv(dir[2]))

	// Iterative walk; the stack depth is bounded by the tree depth.
	stack := make([]uint32, 1, 64)
	stack[0] = 0
	for len(stack) > 0 {
		nodeIndex := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &t.Nodes[nodeIndex]
		if !rayBoxHit(origin, invDir, maxDist, node.Min, node.Max) {
			continue
		}

		if node.Leaf() {
			first, count := node.Items()
			for i := first; i < first+count; i++ {
				visit(t.Items[i])
			}
			continue
		}

		stack = append(stack, uint32(node.LData), uint32(node.RData))
	}
}

// Slab test against an AABB; tolerates zero direction components via
// the +/-Inf arithmetic of the precomputed inverse direction.
func rayBoxHit(origin, invDir types.Vec3, maxDist float32, min, max types.Vec3) bool {
	var tNear float32 = 0
	tFar := maxDist

	for axis := 0; axis < 3; axis++ {
		t1 := (min[axis] - origin[axis]) * invDir[axis]
		t2 := (max[axis] - origin[axis]) * invDir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar {
			return false
		}
	}
	return true
}

func safeInv(v float32) float32 {
	if v == 0 {
		return float32(math.Inf(1))
	}
	return 1.0 / v
}
