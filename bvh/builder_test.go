package bvh

import (
	"math"
	"testing"

	"github.com/yht0511/terminus-lidar/types"
)

// An axis-aligned unit cube volume centered at a point.
type boxVolume struct {
	center types.Vec3
	size   float32
}

func (b boxVolume) BBox() [2]types.Vec3 {
	h := b.size / 2
	return [2]types.Vec3{
		b.center.Sub(types.XYZ(h, h, h)),
		b.center.Add(types.XYZ(h, h, h)),
	}
}

func (b boxVolume) Center() types.Vec3 {
	return b.center
}

func makeVolumeRow(count int, spacing float32) []Volume {
	out := make([]Volume, count)
	for i := range out {
		out[i] = boxVolume{center: types.XYZ(float32(i)*spacing, 0, 0), size: 1}
	}
	return out
}

func TestBuildPartitionsAllItems(t *testing.T) {
	type spec struct {
		volumes      int
		minLeafItems int
	}
	specs := []spec{
		{1, 1},
		{8, 2},
		{100, 4},
		{100, 128}, // fewer items than the leaf minimum: single leaf
	}

	for index, s := range specs {
		tree, err := Build(makeVolumeRow(s.volumes, 4), s.minLeafItems)
		if err != nil {
			t.Fatalf("[spec %d] unexpected build error: %v", index, err)
		}

		// Every volume index appears exactly once across the leaves.
		seen := make(map[uint32]int)
		for _, node := range tree.Nodes {
			if !node.Leaf() {
				continue
			}
			first, count := node.Items()
			for i := first; i < first+count; i++ {
				seen[tree.Items[i]]++
			}
		}

		if len(seen) != s.volumes {
			t.Fatalf("[spec %d] expected %d partitioned items; got %d", index, s.volumes, len(seen))
		}
		for idx, n := range seen {
			if n != 1 {
				t.Fatalf("[spec %d] item %d appears %d times", index, idx, n)
			}
		}
	}
}

func TestBuildRejectsBadGeometry(t *testing.T) {
	if _, err := Build(nil, 4); err != ErrNoGeometry {
		t.Fatalf("expected ErrNoGeometry for empty input; got %v", err)
	}

	nan := float32(math.NaN())
	bad := []Volume{boxVolume{center: types.XYZ(nan, 0, 0), size: 1}}
	if _, err := Build(bad, 4); err != ErrMalformedGeometry {
		t.Fatalf("expected ErrMalformedGeometry for NaN bounds; got %v", err)
	}
}

func TestTraverseVisitsRayPath(t *testing.T) {
	volumes := makeVolumeRow(32, 4)
	tree, err := Build(volumes, 2)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	// A ray down the row axis crosses every volume.
	visited := make(map[uint32]bool)
	tree.Traverse(types.XYZ(-10, 0, 0), types.XYZ(1, 0, 0), 1000, func(item uint32) {
		visited[item] = true
	})
	if len(visited) != 32 {
		t.Fatalf("expected the axis ray to visit all 32 items; got %d", len(visited))
	}

	// A ray offset far off the row hits nothing.
	visited = make(map[uint32]bool)
	tree.Traverse(types.XYZ(-10, 50, 0), types.XYZ(1, 0, 0), 1000, func(item uint32) {
		visited[item] = true
	})
	if len(visited) != 0 {
		t.Fatalf("expected no visits for a miss; got %d", len(visited))
	}

	// Limiting the ray length prunes far leaves.
	visited = make(map[uint32]bool)
	tree.Traverse(types.XYZ(-10, 0, 0), types.XYZ(1, 0, 0), 12, func(item uint32) {
		visited[item] = true
	})
	if len(visited) == 0 || len(visited) == 32 {
		t.Fatalf("expected a short ray to visit a strict subset; got %d", len(visited))
	}
}
