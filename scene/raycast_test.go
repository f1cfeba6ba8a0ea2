package scene

import (
	"math"
	"testing"
	"time"

	"github.com/yht0511/terminus-lidar/bvh"
	"github.com/yht0511/terminus-lidar/log"
	"github.com/yht0511/terminus-lidar/types"
)

func makeWallScene() (*Scene, *Mesh) {
	s := New()
	v, i := Box(types.XYZ(0, 0, -5), types.XYZ(4, 4, 1))
	wall := s.Add("wall", "concrete", v, i, false)
	return s, wall
}

func TestRaycastHitsNearestSurface(t *testing.T) {
	s, _ := makeWallScene()
	caster := NewRaycaster(s, nil)

	hit, ok := caster.Intersect(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), 100, nil)
	if !ok {
		t.Fatal("expected a hit on the wall")
	}

	// The near face of the wall sits at z = -4.5.
	if math.Abs(float64(hit.Distance)-4.5) > 1e-4 {
		t.Fatalf("expected hit distance 4.5; got %f", hit.Distance)
	}
	if hit.Material != "concrete" {
		t.Fatalf("expected material tag propagated; got %q", hit.Material)
	}
	if hit.Persistent {
		t.Fatal("expected non-persistent surface")
	}
}

func TestRaycastMiss(t *testing.T) {
	s, _ := makeWallScene()
	caster := NewRaycaster(s, nil)

	if _, ok := caster.Intersect(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), 100, nil); ok {
		t.Fatal("expected a miss behind the viewer")
	}
	// The wall is out of reach of a short ray.
	if _, ok := caster.Intersect(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), 2, nil); ok {
		t.Fatal("expected a miss within 2 units")
	}
}

func TestRaycastExclusion(t *testing.T) {
	s, wall := makeWallScene()
	v, i := Box(types.XYZ(0, 0, -8), types.XYZ(4, 4, 1))
	s.Add("backdrop", "metal", v, i, false)

	caster := NewRaycaster(s, nil)
	exclude := map[int]struct{}{wall.ID(): {}}

	hit, ok := caster.Intersect(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), 100, exclude)
	if !ok {
		t.Fatal("expected the backdrop hit once the wall is excluded")
	}
	if hit.Material != "metal" {
		t.Fatalf("expected the backdrop's material; got %q", hit.Material)
	}
}

func TestRaycastIndexedMatchesFallback(t *testing.T) {
	s := Demo()

	index := bvh.NewIncrementalBuilder(4, log.Nil())
	index.Rebuild(s.Pieces())
	index.Advance(time.Hour)
	if index.PendingCount() != 0 {
		t.Fatalf("expected all demo pieces indexed; %d pending", index.PendingCount())
	}

	indexed := NewRaycaster(s, index)
	fallback := NewRaycaster(s, nil)

	origin := types.XYZ(0, 1.7, 5)
	for step := 0; step < 64; step++ {
		azimuth := 2 * math.Pi * float64(step) / 64
		dir := types.XYZ(float32(math.Sin(azimuth)), -0.1, -float32(math.Cos(azimuth)))

		hitA, okA := indexed.Intersect(origin, dir, 100, nil)
		hitB, okB := fallback.Intersect(origin, dir, 100, nil)

		if okA != okB {
			t.Fatalf("step %d: indexed hit=%v, fallback hit=%v", step, okA, okB)
		}
		if !okA {
			continue
		}
		if math.Abs(float64(hitA.Distance-hitB.Distance)) > 1e-4 {
			t.Fatalf("step %d: indexed distance %f != fallback %f", step, hitA.Distance, hitB.Distance)
		}
		if hitA.Material != hitB.Material {
			t.Fatalf("step %d: indexed material %q != fallback %q", step, hitA.Material, hitB.Material)
		}
	}
}

func TestPersistentSurfaceFlag(t *testing.T) {
	s := New()
	v, i := Box(types.XYZ(0, 0, -3), types.XYZ(1, 1, 1))
	s.Add("beacon", "beacon", v, i, true)

	caster := NewRaycaster(s, nil)
	hit, ok := caster.Intersect(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), 100, nil)
	if !ok {
		t.Fatal("expected a hit on the beacon")
	}
	if !hit.Persistent {
		t.Fatal("expected the beacon hit flagged persistent")
	}
}
