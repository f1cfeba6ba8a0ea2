package scene

import (
	"github.com/yht0511/terminus-lidar/bvh"
	"github.com/yht0511/terminus-lidar/lidar"
	"github.com/yht0511/terminus-lidar/types"
)

// Rays grazing a surface closer than this are rejected to avoid
// self-intersection artifacts.
const minHitDistance float32 = 1e-4

// Raycaster implements lidar.RayIntersector over a Scene. When the
// incremental builder has finished a mesh's tree the query walks it;
// until then the mesh is tested triangle by triangle. Both paths return
// identical results.
type Raycaster struct {
	scene *Scene
	index *bvh.IncrementalBuilder
}

// Create a raycaster. index may be nil, which forces the brute-force
// path for every mesh.
func NewRaycaster(s *Scene, index *bvh.IncrementalBuilder) *Raycaster {
	return &Raycaster{
		scene: s,
		index: index,
	}
}

// Intersect finds the nearest triangle hit along the ray within
// maxDistance, skipping meshes named in the exclusion set.
func (r *Raycaster) Intersect(origin, dir types.Vec3, maxDistance float32, exclude map[int]struct{}) (lidar.Hit, bool) {
	dir = dir.Normalize()

	best := maxDistance
	var bestMesh *Mesh
	found := false

	for id, mesh := range r.scene.meshes {
		if exclude != nil {
			if _, skip := exclude[id]; skip {
				continue
			}
		}

		if dist, ok := r.intersectMesh(mesh, origin, dir, best); ok {
			best = dist
			bestMesh = mesh
			found = true
		}
	}

	if !found {
		return lidar.Hit{}, false
	}

	return lidar.Hit{
		Point:      origin.Add(dir.Mul(best)),
		Distance:   best,
		Material:   bestMesh.material,
		Persistent: bestMesh.persistent,
	}, true
}

func (r *Raycaster) intersectMesh(mesh *Mesh, origin, dir types.Vec3, maxDist float32) (float32, bool) {
	best := maxDist
	found := false

	test := func(item uint32) {
		tri, ok := mesh.volumes[item].(Triangle)
		if !ok {
			return
		}
		if dist, hit := intersectTriangle(origin, dir, tri); hit && dist < best {
			best = dist
			found = true
		}
	}

	if r.index != nil {
		if tree, ok := r.index.Tree(mesh.id); ok {
			tree.Traverse(origin, dir, maxDist, test)
			return best, found
		}
	}

	// Unindexed fallback: identical results, just slower.
	for item := range mesh.volumes {
		test(uint32(item))
	}
	return best, found
}

// Moller-Trumbore ray/triangle intersection. Double-sided: only rays
// parallel to the triangle plane are rejected by the determinant check.
func intersectTriangle(origin, dir types.Vec3, tri Triangle) (float32, bool) {
	e1 := tri.V1.Sub(tri.V0)
	e2 := tri.V2.Sub(tri.V0)

	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -1e-7 && det < 1e-7 {
		return 0, false
	}
	inv := 1.0 / det

	tvec := origin.Sub(tri.V0)
	u := tvec.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := tvec.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist := e2.Dot(q) * inv
	if dist < minHitDistance {
		return 0, false
	}
	return dist, true
}
