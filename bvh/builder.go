package bvh

import (
	"errors"
	"math"

	"github.com/yht0511/terminus-lidar/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// No split candidates are evaluated along an axis whose bbox side
	// is shorter than this threshold.
	minSideLength float32 = 1e-3

	// Split candidates whose step falls below this threshold are skipped.
	minSplitStep float32 = 1e-5

	// Split step granularity. Steps become finer the deeper the
	// partitioning goes; scoring runs inline on the frame loop's time
	// slice, so the top-level sweep stays coarse.
	splitGranularity float32 = 64.0
)

var (
	// Build rejects these; the incremental builder logs and skips the piece.
	ErrNoGeometry        = errors.New("bvh: piece has no volumes")
	ErrMalformedGeometry = errors.New("bvh: piece has a non-finite bounding box")
)

// The Volume interface is implemented by every primitive the builder
// can partition.
type Volume interface {
	BBox() [2]types.Vec3
	Center() types.Vec3
}

type splitScore struct {
	axis       Axis
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

type builder struct {
	volumes      []Volume
	minLeafItems int
	tree         *Tree
}

// Build constructs a hierarchy over the given volumes using surface area
// heuristic split scoring (score = item count * bbox face area; lower is
// better). Leaves are emitted once a partition holds at most
// minLeafItems volumes or no split improves the current score.
func Build(volumes []Volume, minLeafItems int) (*Tree, error) {
	if len(volumes) == 0 {
		return nil, ErrNoGeometry
	}
	if minLeafItems < 1 {
		minLeafItems = 1
	}
	for _, vol := range volumes {
		bbox := vol.BBox()
		if !bbox[0].IsValid() || !bbox[1].IsValid() {
			return nil, ErrMalformedGeometry
		}
	}

	b := &builder{
		volumes:      volumes,
		minLeafItems: minLeafItems,
		tree: &Tree{
			Nodes: make([]Node, 0, len(volumes)),
			Items: make([]uint32, 0, len(volumes)),
		},
	}

	indices := make([]uint32, len(volumes))
	for i := range indices {
		indices[i] = uint32(i)
	}
	b.partition(indices, 0)

	return b.tree, nil
}

// Partition the index list and return the created node's index.
func (b *builder) partition(indices []uint32, depth int) uint32 {
	node := Node{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}

	for _, idx := range indices {
		bbox := b.volumes[idx].BBox()
		node.Min = types.MinVec3(node.Min, bbox[0])
		node.Max = types.MaxVec3(node.Max, bbox[1])
	}

	if len(indices) <= b.minLeafItems {
		return b.createLeaf(&node, indices)
	}

	bestScore := scorePartition(b.volumes, indices)
	var bestSplit *splitScore

	side := node.Max.Sub(node.Min)
	for axis := XAxis; axis <= ZAxis; axis++ {
		if side[axis] < minSideLength {
			continue
		}

		splitStep := side[axis] / (splitGranularity / float32(depth+1))
		if splitStep < minSplitStep {
			continue
		}

		for splitPoint := node.Min[axis] + splitStep; splitPoint < node.Max[axis]; splitPoint += splitStep {
			candidate := scoreSplit(b.volumes, indices, axis, splitPoint)
			if candidate.score < bestScore {
				bestScore = candidate.score
				bestSplit = &candidate
			}
		}
	}

	// No split improves on keeping the items together.
	if bestSplit == nil {
		return b.createLeaf(&node, indices)
	}

	left := make([]uint32, 0, bestSplit.leftCount)
	right := make([]uint32, 0, bestSplit.rightCount)
	for _, idx := range indices {
		if b.volumes[idx].Center()[bestSplit.axis] < bestSplit.splitPoint {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	nodeIndex := uint32(len(b.tree.Nodes))
	b.tree.Nodes = append(b.tree.Nodes, node)

	leftIndex := b.partition(left, depth+1)
	rightIndex := b.partition(right, depth+1)
	b.tree.Nodes[nodeIndex].SetChildNodes(leftIndex, rightIndex)

	return nodeIndex
}

// Emit a leaf holding all items in the index list and return its node index.
func (b *builder) createLeaf(node *Node, indices []uint32) uint32 {
	node.SetItems(uint32(len(b.tree.Items)), uint32(len(indices)))
	b.tree.Items = append(b.tree.Items, indices...)

	nodeIndex := uint32(len(b.tree.Nodes))
	b.tree.Nodes = append(b.tree.Nodes, *node)
	return nodeIndex
}

// Score a split candidate: leftCount * left bbox area + rightCount *
// right bbox area. Splits producing an empty side get the worst
// possible score so they are never selected.
func scoreSplit(volumes []Volume, indices []uint32, axis Axis, splitPoint float32) splitScore {
	lmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	rmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	lmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	rmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	leftCount := 0
	rightCount := 0
	for _, idx := range indices {
		bbox := volumes[idx].BBox()
		if volumes[idx].Center()[axis] < splitPoint {
			leftCount++
			lmin = types.MinVec3(lmin, bbox[0])
			lmax = types.MaxVec3(lmax, bbox[1])
		} else {
			rightCount++
			rmin = types.MinVec3(rmin, bbox[0])
			rmax = types.MaxVec3(rmax, bbox[1])
		}
	}

	if leftCount == 0 || rightCount == 0 {
		return splitScore{axis: axis, splitPoint: splitPoint, leftCount: leftCount, rightCount: rightCount, score: math.MaxFloat32}
	}

	lside := lmax.Sub(lmin)
	rside := rmax.Sub(rmin)
	score := (float32(leftCount) * (lside[0]*lside[1] + lside[1]*lside[2] + lside[0]*lside[2])) +
		(float32(rightCount) * (rside[0]*rside[1] + rside[1]*rside[2] + rside[0]*rside[2]))

	return splitScore{axis: axis, splitPoint: splitPoint, leftCount: leftCount, rightCount: rightCount, score: score}
}

// Score an unsplit partition: item count * bbox face area.
func scorePartition(volumes []Volume, indices []uint32) float32 {
	if len(indices) == 0 {
		return math.MaxFloat32
	}

	min := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	for _, idx := range indices {
		bbox := volumes[idx].BBox()
		min = types.MinVec3(min, bbox[0])
		max = types.MaxVec3(max, bbox[1])
	}

	side := max.Sub(min)
	return float32(len(indices)) * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}
