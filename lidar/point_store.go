// Package lidar implements the incremental point-cloud acquisition engine:
// a fixed-capacity decaying point buffer, a density limiter, a throttled
// emission queue and a scan scheduler, orchestrated by a single
// frame-driven Engine.
package lidar

import "github.com/yht0511/terminus-lidar/types"

// A single sampled point. Records are value types; the store flattens
// them into parallel arrays on write.
type Point struct {
	Position types.Vec3
	Color    types.Vec3

	// Time the point was sampled, in seconds on the engine clock.
	SpawnTime float64

	// Seconds until the point fades out completely.
	Lifetime float64

	// Brightness scale applied on top of the base color.
	Intensity float32

	// Persistent points never fade below the configured floor.
	Persistent bool
}

// PointStore is a fixed-capacity ring buffer of point records stored as
// flat parallel arrays, laid out for direct upload to a vertex buffer.
// Writes never fail; once the buffer is full each write silently
// overwrites the oldest remaining record.
type PointStore struct {
	capacity int

	// Monotonic logical write cursor. Slot index = cursor % capacity.
	cursor uint64

	positions   []float32 // 3 components per slot
	colors      []float32 // displayed color, 3 components per slot
	baseColors  []float32 // color as sampled, 3 components per slot
	spawnTimes  []float64
	lifetimes   []float64
	intensities []float32
	persistent  []bool

	positionsDirty bool
	colorsDirty    bool
}

// Create a point store with a fixed capacity.
func NewPointStore(capacity int) *PointStore {
	if capacity < 1 {
		capacity = 1
	}
	return &PointStore{
		capacity:    capacity,
		positions:   make([]float32, capacity*3),
		colors:      make([]float32, capacity*3),
		baseColors:  make([]float32, capacity*3),
		spawnTimes:  make([]float64, capacity),
		lifetimes:   make([]float64, capacity),
		intensities: make([]float32, capacity),
		persistent:  make([]bool, capacity),
	}
}

// Write a record into the next ring slot. O(1); never fails. The store
// performs no geometry validation -- garbage in, garbage out.
func (s *PointStore) Write(p Point) {
	slot := int(s.cursor % uint64(s.capacity))
	off := slot * 3

	s.positions[off] = p.Position[0]
	s.positions[off+1] = p.Position[1]
	s.positions[off+2] = p.Position[2]

	displayed := p.Color.Mul(p.Intensity)
	s.colors[off] = displayed[0]
	s.colors[off+1] = displayed[1]
	s.colors[off+2] = displayed[2]

	s.baseColors[off] = p.Color[0]
	s.baseColors[off+1] = p.Color[1]
	s.baseColors[off+2] = p.Color[2]

	s.spawnTimes[slot] = p.SpawnTime
	s.lifetimes[slot] = p.Lifetime
	s.intensities[slot] = p.Intensity
	s.persistent[slot] = p.Persistent

	s.cursor++
	s.positionsDirty = true
	s.colorsDirty = true
}

// Number of live records: min(writes so far, capacity).
func (s *PointStore) Count() int {
	if s.cursor < uint64(s.capacity) {
		return int(s.cursor)
	}
	return s.capacity
}

// The fixed slot capacity.
func (s *PointStore) Capacity() int {
	return s.capacity
}

// PositionsView returns the backing position array (3 floats per slot).
// The caller must treat it as read-only; only the first Count()*3
// entries hold live data.
func (s *PointStore) PositionsView() []float32 {
	return s.positions
}

// ColorsView returns the backing displayed-color array (3 floats per
// slot). The caller must treat it as read-only.
func (s *PointStore) ColorsView() []float32 {
	return s.colors
}

// Dirty reports whether the position or color arrays changed since the
// last ClearDirty.
func (s *PointStore) Dirty() (positions, colors bool) {
	return s.positionsDirty, s.colorsDirty
}

// ClearDirty acknowledges an upload; called by the rendering consumer.
func (s *PointStore) ClearDirty() {
	s.positionsDirty = false
	s.colorsDirty = false
}

// Clear resets the write cursor and zeroes all arrays. Idempotent.
func (s *PointStore) Clear() {
	s.cursor = 0
	zeroF32(s.positions)
	zeroF32(s.colors)
	zeroF32(s.baseColors)
	zeroF64(s.spawnTimes)
	zeroF64(s.lifetimes)
	zeroF32(s.intensities)
	for i := range s.persistent {
		s.persistent[i] = false
	}
	s.positionsDirty = true
	s.colorsDirty = true
}

func zeroF32(s []float32) {
	for i := range s {
		s[i] = 0
	}
}

func zeroF64(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
