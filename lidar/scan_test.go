package lidar

import (
	"math"
	"testing"

	"github.com/yht0511/terminus-lidar/log"
	"github.com/yht0511/terminus-lidar/types"
)

// A caster that reports a hit on a wall 5 units along every ray.
type mockCaster struct {
	rays     int
	material string
}

func makeMockCaster() *mockCaster {
	return &mockCaster{material: "mock"}
}

func (m *mockCaster) Intersect(origin, dir types.Vec3, maxDist float32, exclude map[int]struct{}) (Hit, bool) {
	m.rays++
	return Hit{
		Point:    origin.Add(dir.Mul(5)),
		Distance: 5,
		Material: m.material,
	}, true
}

type mockPose struct {
	pos types.Vec3
}

func (m mockPose) Position() types.Vec3 {
	return m.pos
}

func (m mockPose) Rotation() types.Quat {
	return types.QuatIdent()
}

func makeScheduler(caster RayIntersector, queue *EmissionQueue) *ScanScheduler {
	return newScanScheduler(caster, mockPose{pos: types.XYZ(0, 1, 0)}, queue,
		0.35, 1.0, 100, 60, 720, 16, log.Nil())
}

func TestScanPacing(t *testing.T) {
	const (
		rows    = 10
		samples = 4
	)

	caster := makeMockCaster()
	queue := NewEmissionQueue(10000, 100)
	sch := makeScheduler(caster, queue)

	sch.StartScan(0, ScanParams{
		Origin:        types.XYZ(0, 1, 0),
		Orientation:   types.QuatIdent(),
		Duration:      0.3,
		Rows:          rows,
		SamplesPerRow: samples,
		FOV:           float32(math.Pi / 3),
	})

	// Halfway through the scan roughly half the rows have been emitted.
	sch.Update(0.15)
	emittedRows := queue.Len() / samples
	if emittedRows < 4 || emittedRows > 6 {
		t.Fatalf("expected 4..6 rows emitted at half duration; got %d", emittedRows)
	}

	// Past the duration every row is out and the job finishes.
	sch.Update(0.4)
	if queue.Len() != rows*samples {
		t.Fatalf("expected all %d hits enqueued after completion; got %d", rows*samples, queue.Len())
	}
	if sch.Scanning() {
		t.Fatal("expected job to be finished after its duration elapsed")
	}
}

func TestScanBeamClearedAfterFinish(t *testing.T) {
	caster := makeMockCaster()
	queue := NewEmissionQueue(10000, 100)
	sch := makeScheduler(caster, queue)

	sch.StartScan(0, ScanParams{
		Origin:        types.XYZ(0, 1, 0),
		Orientation:   types.QuatIdent(),
		Duration:      0.1,
		Rows:          4,
		SamplesPerRow: 4,
		FOV:           1,
	})

	// Retention ratio is 1.0 in the test scheduler, so completion leaves
	// a full beam set for one tick of grace.
	sch.Update(0.2)
	if len(sch.ActiveBeam()) == 0 {
		t.Fatal("expected beam points right after completion")
	}

	sch.Update(0.21)
	if len(sch.ActiveBeam()) != 0 {
		t.Fatal("expected beam cleared on the tick after completion")
	}
}

func TestScanRestartDiscardsRemainingSchedule(t *testing.T) {
	caster := makeMockCaster()
	queue := NewEmissionQueue(10000, 100)
	sch := makeScheduler(caster, queue)

	sch.StartScan(0, ScanParams{
		Origin:        types.XYZ(0, 1, 0),
		Orientation:   types.QuatIdent(),
		Duration:      1.0,
		Rows:          10,
		SamplesPerRow: 2,
	})
	sch.Update(0.5)
	emittedBefore := queue.Len()
	if emittedBefore == 0 {
		t.Fatal("expected some rows emitted at half duration")
	}

	// Restarting keeps already-emitted points and drops the rest of the
	// old schedule.
	sch.StartScan(0.5, ScanParams{
		Origin:        types.XYZ(0, 1, 0),
		Orientation:   types.QuatIdent(),
		Duration:      0.1,
		Rows:          2,
		SamplesPerRow: 2,
	})
	sch.Update(1.0)

	if queue.Len() != emittedBefore+2*2 {
		t.Fatalf("expected %d hits after restart; got %d", emittedBefore+4, queue.Len())
	}
}

func TestScanSkipsInvalidRays(t *testing.T) {
	caster := makeMockCaster()
	queue := NewEmissionQueue(10000, 100)
	sch := makeScheduler(caster, queue)

	nan := float32(math.NaN())
	sch.StartScan(0, ScanParams{
		Origin:        types.XYZ(nan, 0, 0),
		Orientation:   types.QuatIdent(),
		Duration:      0.1,
		Rows:          2,
		SamplesPerRow: 2,
	})
	sch.Update(1.0)

	if queue.Len() != 0 {
		t.Fatalf("expected all rays with invalid origin skipped; got %d hits", queue.Len())
	}
	if caster.rays != 0 {
		t.Fatalf("expected caster never called for invalid origins; got %d rays", caster.rays)
	}
	if sch.skipped != 4 {
		t.Fatalf("expected 4 skipped rays; got %d", sch.skipped)
	}
}

func TestScanDiscardsHitsWithoutMaterial(t *testing.T) {
	caster := makeMockCaster()
	caster.material = ""
	queue := NewEmissionQueue(10000, 100)
	sch := makeScheduler(caster, queue)

	sch.StartScan(0, ScanParams{
		Origin:        types.XYZ(0, 1, 0),
		Orientation:   types.QuatIdent(),
		Duration:      0.1,
		Rows:          2,
		SamplesPerRow: 2,
	})
	sch.Update(1.0)

	if queue.Len() != 0 {
		t.Fatalf("expected hits without a material tag discarded; got %d", queue.Len())
	}
}

func TestContinuousSweepStepsOneRayPerUpdate(t *testing.T) {
	caster := makeMockCaster()
	queue := NewEmissionQueue(10000, 100)
	sch := makeScheduler(caster, queue)

	sch.StartSweep()
	for i := 0; i < 10; i++ {
		sch.Update(float64(i) * 0.016)
	}

	if caster.rays != 10 {
		t.Fatalf("expected one ray per update; got %d after 10 updates", caster.rays)
	}
	if queue.Len() != 10 {
		t.Fatalf("expected 10 enqueued sweep hits; got %d", queue.Len())
	}

	sch.StopSweep()
	sch.Update(1.0)
	if caster.rays != 10 {
		t.Fatal("expected no rays after StopSweep")
	}
}
