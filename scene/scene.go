package scene

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/yht0511/terminus-lidar/bvh"
	"github.com/yht0511/terminus-lidar/types"
)

// Scene is the mutable set of ray-queryable meshes.
type Scene struct {
	meshes map[int]*Mesh
	nextID int
}

// Create an empty scene.
func New() *Scene {
	return &Scene{
		meshes: make(map[int]*Mesh),
		nextID: 1,
	}
}

// Add creates a mesh from an indexed triangle list and returns it.
func (s *Scene) Add(name, material string, vertices []types.Vec3, indices []uint32, persistent bool) *Mesh {
	m := NewMesh(s.nextID, name, material, vertices, indices, persistent)
	s.meshes[m.id] = m
	s.nextID++
	return m
}

// Remove drops a mesh from the scene. The engine must be asked to
// Rebuild afterwards so stale index state is discarded.
func (s *Scene) Remove(id int) {
	delete(s.meshes, id)
}

// Meshes returns the scene contents ordered by id.
func (s *Scene) Meshes() []*Mesh {
	out := make([]*Mesh, 0, len(s.meshes))
	for _, m := range s.meshes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Pieces returns the scene contents as build-queue entries.
func (s *Scene) Pieces() []bvh.Piece {
	meshes := s.Meshes()
	out := make([]bvh.Piece, len(meshes))
	for i, m := range meshes {
		out[i] = m
	}
	return out
}

// Build a tabular representation of the scene contents.
func (s *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Mesh", "Material", "Triangles"})

	total := 0
	for _, m := range s.Meshes() {
		table.Append([]string{m.name, m.material, fmt.Sprintf("%d", m.TriangleCount())})
		total += m.TriangleCount()
	}
	table.SetFooter([]string{"Total", " ", fmt.Sprintf("%d", total)})

	table.Render()
	return buf.String()
}

// Demo assembles the synthetic test chamber used by the CLI commands: a
// large room, a few crates, a pillar and a persistent marker.
func Demo() *Scene {
	s := New()

	roomV, roomI := Box(types.XYZ(0, 5, 0), types.XYZ(20, 10, 20))
	s.Add("room", "concrete", roomV, roomI, false)

	crateV, crateI := Box(types.XYZ(-3, 0.5, -4), types.XYZ(1, 1, 1))
	s.Add("crate-a", "wood", crateV, crateI, false)

	crateV, crateI = Box(types.XYZ(-2.2, 0.4, -4.6), types.XYZ(0.8, 0.8, 0.8))
	s.Add("crate-b", "wood", crateV, crateI, false)

	pillarV, pillarI := Box(types.XYZ(4, 3, 2), types.XYZ(1.2, 6, 1.2))
	s.Add("pillar", "concrete", pillarV, pillarI, false)

	markerV, markerI := Box(types.XYZ(0, 1.2, -8), types.XYZ(0.4, 2.4, 0.4))
	s.Add("marker", "beacon", markerV, markerI, true)

	return s
}
