package lidar

import (
	"time"

	"github.com/yht0511/terminus-lidar/bvh"
	"github.com/yht0511/terminus-lidar/config"
	"github.com/yht0511/terminus-lidar/log"
	"github.com/yht0511/terminus-lidar/types"
)

// Hit is the result of one ray query against the scene.
type Hit struct {
	// World-space intersection point.
	Point types.Vec3

	// Distance from the ray origin.
	Distance float32

	// Surface/material tag of the geometry that was struck.
	Material string

	// Persistent surfaces produce points that never fully decay.
	Persistent bool
}

// RayIntersector is the external ray/geometry intersection primitive.
// Implementations must tolerate unindexed geometry: acceleration
// structures are a performance optimization, never a correctness
// requirement.
type RayIntersector interface {
	Intersect(origin, dir types.Vec3, maxDistance float32, exclude map[int]struct{}) (Hit, bool)
}

// PoseProvider supplies the current player pose, sampled once per scan step.
type PoseProvider interface {
	Position() types.Vec3
	Rotation() types.Quat
}

// Clock provides monotonic time in seconds.
type Clock interface {
	Now() float64
}

// Engine owns the full point-cloud pipeline and advances it one frame at
// a time. All state is mutated exclusively inside Update; the rendering
// consumer only ever sees read-only array views and dirty flags, so no
// locking is needed anywhere.
type Engine struct {
	store     *PointStore
	limiter   *DensityLimiter
	decay     *DecayModel
	queue     *EmissionQueue
	scheduler *ScanScheduler
	builder   *bvh.IncrementalBuilder

	clock  Clock
	logger log.Logger

	bvhBudget time.Duration

	frames uint64
}

// NewEngine wires the pipeline from its injected collaborators and the
// tuning config. The index builder is shared with the ray-intersection
// collaborator, so the composition root usually constructs it first and
// hands it to both; passing nil makes the engine own a private one. A
// nil logger falls back to a discarding one.
func NewEngine(caster RayIntersector, pose PoseProvider, clock Clock, index *bvh.IncrementalBuilder, cfg config.Config, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.Nil()
	}
	cfg.Clamp()
	if index == nil {
		index = bvh.NewIncrementalBuilder(cfg.Index.MinLeafItems, logger)
	}

	store := NewPointStore(cfg.Points.Capacity)
	limiter := NewDensityLimiter(float32(cfg.Density.CellSize), cfg.Density.MaxPerCell)
	queue := NewEmissionQueue(cfg.Points.Capacity, cfg.Points.PerFrame)
	scheduler := newScanScheduler(caster, pose, queue,
		cfg.Scan.Jitter, cfg.Scan.BeamRetention, float32(cfg.Scan.MaxDistance),
		cfg.Points.Lifetime, cfg.Sweep.AzimuthSteps, cfg.Sweep.Layers, logger)

	return &Engine{
		store:     store,
		limiter:   limiter,
		decay:     NewDecayModel(cfg.Decay.Exponent, cfg.Decay.PersistentFloor, cfg.Decay.Epsilon),
		queue:     queue,
		scheduler: scheduler,
		builder:   index,
		clock:     clock,
		logger:    logger,
		bvhBudget: time.Duration(cfg.Index.TimeBudgetMs * float64(time.Millisecond)),
	}
}

// Update advances the pipeline by one frame: index building under its
// time budget, then scan sampling, then a bounded queue drain, then the
// decay sweep. Called once per render frame by the host.
func (e *Engine) Update() {
	now := e.clock.Now()

	e.builder.Advance(e.bvhBudget)
	e.scheduler.Update(now)
	e.queue.Drain(e.limiter, e.store)
	e.decay.Update(e.store, now)

	e.frames++
}

// StartScan begins a burst scan at the current clock time. Any in-flight
// scan forfeits its remaining schedule; points it already emitted stay.
func (e *Engine) StartScan(params ScanParams) {
	e.scheduler.StartScan(e.clock.Now(), params)
}

// StartSweep enables the ambient continuous dome scan.
func (e *Engine) StartSweep() {
	e.scheduler.StartSweep()
}

// StopSweep disables the ambient continuous dome scan.
func (e *Engine) StopSweep() {
	e.scheduler.StopSweep()
}

// Scanning reports whether a burst scan is in flight.
func (e *Engine) Scanning() bool {
	return e.scheduler.Scanning()
}

// ActiveBeam exposes the transient beam-visual points of the current scan.
func (e *Engine) ActiveBeam() []types.Vec3 {
	return e.scheduler.ActiveBeam()
}

// Clear wipes all acquired points, density counts, queued emissions and
// the active scan. Takes effect before the next processing step;
// idempotent.
func (e *Engine) Clear() {
	e.store.Clear()
	e.limiter.Clear()
	e.queue.Clear()
	e.scheduler.Clear()
}

// SetPointsPerFrame changes the per-frame drain cap at runtime.
func (e *Engine) SetPointsPerFrame(n int) {
	e.queue.SetThroughput(n)
}

// SetDensityParams replaces the density cell size and per-cell cap.
func (e *Engine) SetDensityParams(cellSize float32, maxPerCell int) {
	e.limiter.SetParams(cellSize, maxPerCell)
}

// SetBVHTimeBudget changes the per-frame index build budget.
func (e *Engine) SetBVHTimeBudget(budget time.Duration) {
	if budget >= 0 {
		e.bvhBudget = budget
	}
}

// Rebuild re-queues acceleration structure construction for the given
// geometry set, discarding indexes of pieces no longer present. Invoked
// on scene swaps.
func (e *Engine) Rebuild(pieces []bvh.Piece) {
	e.builder.Rebuild(pieces)
}

// Index exposes the incremental builder so the ray-intersection
// collaborator can look up built trees.
func (e *Engine) Index() *bvh.IncrementalBuilder {
	return e.builder
}

// SetColorFunc overrides how hits map to point colors.
func (e *Engine) SetColorFunc(fn func(Hit) types.Vec3) {
	e.scheduler.SetColorFunc(fn)
}

// QueueLen returns the number of emissions awaiting drain.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Count returns the number of live points.
func (e *Engine) Count() int {
	return e.store.Count()
}

// PositionsView exposes the flat position array for upload. Read-only.
func (e *Engine) PositionsView() []float32 {
	return e.store.PositionsView()
}

// ColorsView exposes the flat displayed-color array for upload. Read-only.
func (e *Engine) ColorsView() []float32 {
	return e.store.ColorsView()
}

// Dirty reports whether positions or colors changed since ClearDirty.
func (e *Engine) Dirty() (positions, colors bool) {
	return e.store.Dirty()
}

// ClearDirty acknowledges an upload.
func (e *Engine) ClearDirty() {
	e.store.ClearDirty()
}
