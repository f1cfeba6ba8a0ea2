// Package scene provides the query-geometry side of the lidar pipeline:
// triangle meshes, a scene container and a Raycaster implementing the
// engine's ray-intersection interface, accelerated by incrementally
// built BVH trees with a brute-force fallback for unindexed pieces.
package scene

import (
	"github.com/yht0511/terminus-lidar/bvh"
	"github.com/yht0511/terminus-lidar/types"
)

// Triangle is the primitive partitioned by the BVH builder.
type Triangle struct {
	V0, V1, V2 types.Vec3
}

func (t Triangle) BBox() [2]types.Vec3 {
	min := types.MinVec3(types.MinVec3(t.V0, t.V1), t.V2)
	max := types.MaxVec3(types.MaxVec3(t.V0, t.V1), t.V2)
	return [2]types.Vec3{min, max}
}

func (t Triangle) Center() types.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// Mesh is one indexed triangle soup with a material tag. It satisfies
// bvh.Piece so the incremental builder can schedule it.
type Mesh struct {
	id       int
	name     string
	material string

	// Surfaces flagged persistent produce points that never fully decay.
	persistent bool

	vertices []types.Vec3
	indices  []uint32

	volumes []bvh.Volume
}

// Create a mesh from an indexed triangle list. Truncated trailing
// indices (len not divisible by 3) are ignored.
func NewMesh(id int, name, material string, vertices []types.Vec3, indices []uint32, persistent bool) *Mesh {
	m := &Mesh{
		id:         id,
		name:       name,
		material:   material,
		persistent: persistent,
		vertices:   vertices,
		indices:    indices[:len(indices)/3*3],
	}

	m.volumes = make([]bvh.Volume, 0, len(m.indices)/3)
	for i := 0; i+2 < len(m.indices); i += 3 {
		m.volumes = append(m.volumes, m.triangle(uint32(i/3)))
	}
	return m
}

func (m *Mesh) ID() int {
	return m.id
}

func (m *Mesh) Name() string {
	return m.name
}

func (m *Mesh) Material() string {
	return m.material
}

func (m *Mesh) Persistent() bool {
	return m.persistent
}

// Volumes returns the mesh triangles as partitionable volumes.
func (m *Mesh) Volumes() []bvh.Volume {
	return m.volumes
}

// CostEstimate orders this mesh in the incremental build queue.
func (m *Mesh) CostEstimate() int {
	return len(m.volumes)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.volumes)
}

func (m *Mesh) triangle(i uint32) Triangle {
	base := i * 3
	return Triangle{
		V0: m.vertices[m.indices[base]],
		V1: m.vertices[m.indices[base+1]],
		V2: m.vertices[m.indices[base+2]],
	}
}

// Box returns the vertex and index lists of an axis-aligned box. Faces
// are double-sided as far as the raycaster is concerned, so the same
// mesh serves as an obstacle or, scaled up around the player, a room.
func Box(center, size types.Vec3) ([]types.Vec3, []uint32) {
	h := size.Mul(0.5)
	min := center.Sub(h)
	max := center.Add(h)

	vertices := []types.Vec3{
		{min[0], min[1], min[2]},
		{max[0], min[1], min[2]},
		{max[0], max[1], min[2]},
		{min[0], max[1], min[2]},
		{min[0], min[1], max[2]},
		{max[0], min[1], max[2]},
		{max[0], max[1], max[2]},
		{min[0], max[1], max[2]},
	}
	indices := []uint32{
		0, 1, 2, 0, 2, 3, // back
		4, 6, 5, 4, 7, 6, // front
		0, 3, 7, 0, 7, 4, // left
		1, 5, 6, 1, 6, 2, // right
		3, 2, 6, 3, 6, 7, // top
		0, 4, 5, 0, 5, 1, // bottom
	}
	return vertices, indices
}

// Plane returns the vertex and index lists of a horizontal quad spanning
// width (x) by depth (z) around center.
func Plane(center types.Vec3, width, depth float32) ([]types.Vec3, []uint32) {
	hw, hd := width/2, depth/2

	vertices := []types.Vec3{
		{center[0] - hw, center[1], center[2] - hd},
		{center[0] + hw, center[1], center[2] - hd},
		{center[0] + hw, center[1], center[2] + hd},
		{center[0] - hw, center[1], center[2] + hd},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return vertices, indices
}
