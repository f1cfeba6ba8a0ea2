package lidar

import (
	"math"
	"math/rand"

	"github.com/yht0511/terminus-lidar/log"
	"github.com/yht0511/terminus-lidar/types"
)

// ScanParams describes one burst/line scan request.
type ScanParams struct {
	Origin      types.Vec3
	Orientation types.Quat

	// Total sweep time in seconds. Rows are paced linearly across it.
	Duration float64

	// Vertical row count and horizontal samples per row.
	Rows          int
	SamplesPerRow int

	// Angular field of view in radians, applied on both axes.
	FOV float32

	// Geometry pieces the rays must ignore (e.g. the player capsule).
	Exclude map[int]struct{}
}

// A scanJob is one in-flight burst scan: its precomputed ray direction
// rows, the origin they are cast from, and emission progress. At most one
// job is active; starting a new one discards the remainder of the old
// schedule while keeping every point it already emitted.
type scanJob struct {
	origin    types.Vec3
	startTime float64
	duration  float64
	rows      [][]types.Vec3
	emitted   int
	exclude   map[int]struct{}
	finished  bool
}

func (j *scanJob) progress(now float64) float64 {
	if j.duration <= 0 {
		return 1.0
	}
	p := (now - j.startTime) / j.duration
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ScanScheduler generates ray directions and paces their emission over
// time. It supports two modes: a continuous azimuth/elevation dome sweep
// for ambient sampling, and paced burst scans that pour a rectangular
// ray grid into the scene over a fixed duration.
type ScanScheduler struct {
	caster RayIntersector
	pose   PoseProvider
	queue  *EmissionQueue
	logger log.Logger
	rng    *rand.Rand

	// Tuning.
	jitter        float64
	beamRetention float64
	maxDistance   float32
	lifetime      float64
	azimuthSteps  int
	layers        int
	colorFor      func(Hit) types.Vec3

	// Burst state.
	job  *scanJob
	beam []types.Vec3

	// Continuous sweep state.
	sweeping bool
	azStep   int
	layer    int

	// Counters surfaced through the engine status table.
	raysCast uint64
	raysHit  uint64
	skipped  uint64
}

func newScanScheduler(caster RayIntersector, pose PoseProvider, queue *EmissionQueue,
	jitter, beamRetention float64, maxDistance float32, lifetime float64,
	azimuthSteps, layers int, logger log.Logger) *ScanScheduler {

	s := &ScanScheduler{
		caster:        caster,
		pose:          pose,
		queue:         queue,
		logger:        logger,
		rng:           rand.New(rand.NewSource(1)),
		jitter:        jitter,
		beamRetention: beamRetention,
		maxDistance:   maxDistance,
		lifetime:      lifetime,
		azimuthSteps:  azimuthSteps,
		layers:        layers,
	}
	s.colorFor = s.defaultColor
	return s
}

// SetColorFunc overrides the hit-to-color mapping.
func (s *ScanScheduler) SetColorFunc(fn func(Hit) types.Vec3) {
	if fn != nil {
		s.colorFor = fn
	}
}

// StartScan precomputes the ray grid for a burst scan and installs it as
// the active job, discarding the remaining schedule of any previous job.
func (s *ScanScheduler) StartScan(now float64, params ScanParams) {
	if params.Rows < 1 || params.SamplesPerRow < 1 {
		s.logger.Warningf("scan: rejected start with %dx%d ray grid", params.Rows, params.SamplesPerRow)
		return
	}
	if params.FOV <= 0 {
		params.FOV = float32(math.Pi / 3)
	}

	orient := params.Orientation.Normalize()
	rows := make([][]types.Vec3, params.Rows)
	for r := 0; r < params.Rows; r++ {
		elevation := params.FOV * (float32(r)+0.5)/float32(params.Rows) - params.FOV/2
		row := make([]types.Vec3, 0, params.SamplesPerRow)
		for c := 0; c < params.SamplesPerRow; c++ {
			// Per-sample jitter breaks up the visible banding a perfectly
			// regular grid produces.
			offset := (s.rng.Float64()*2 - 1) * s.jitter
			azimuth := params.FOV*(float32(c)+0.5+float32(offset))/float32(params.SamplesPerRow) - params.FOV/2
			row = append(row, orient.Rotate(sphericalDir(azimuth, elevation)))
		}
		rows[r] = row
	}

	s.job = &scanJob{
		origin:    params.Origin,
		startTime: now,
		duration:  params.Duration,
		rows:      rows,
		exclude:   params.Exclude,
	}
}

// StartSweep enables the continuous dome scan.
func (s *ScanScheduler) StartSweep() {
	s.sweeping = true
}

// StopSweep disables the continuous dome scan. The sweep position is
// kept, so resuming continues where it left off.
func (s *ScanScheduler) StopSweep() {
	s.sweeping = false
}

// Scanning reports whether a burst job is in flight.
func (s *ScanScheduler) Scanning() bool {
	return s.job != nil && !s.job.finished
}

// ActiveBeam exposes the transient subset of this scan's hit points used
// for the beam visual. It is cleared on the tick after the scan ends and
// is never written to the point store.
func (s *ScanScheduler) ActiveBeam() []types.Vec3 {
	return s.beam
}

// Clear cancels the active job and the beam visual.
func (s *ScanScheduler) Clear() {
	s.job = nil
	s.beam = nil
}

// Update advances both scan modes by one tick: a single dome step for
// the continuous sweep, and every burst row whose linear schedule slot
// has passed.
func (s *ScanScheduler) Update(now float64) {
	if s.sweeping {
		s.sweepStep(now)
	}
	s.updateJob(now)
}

func (s *ScanScheduler) updateJob(now float64) {
	if s.job == nil {
		return
	}
	if s.job.finished {
		// One tick of grace so the renderer can show the final beam state.
		s.beam = nil
		s.job = nil
		return
	}

	progress := s.job.progress(now)
	targetRow := int(progress * float64(len(s.job.rows)))
	if targetRow > len(s.job.rows) {
		targetRow = len(s.job.rows)
	}

	for ; s.job.emitted < targetRow; s.job.emitted++ {
		s.emitRow(now, s.job, s.job.rows[s.job.emitted])
	}

	if progress >= 1 {
		s.job.finished = true
	}
}

func (s *ScanScheduler) emitRow(now float64, job *scanJob, row []types.Vec3) {
	for _, dir := range row {
		p, ok := s.castRay(job.origin, dir, job.exclude, now)
		if !ok {
			continue
		}
		s.queue.Enqueue(p)
		if s.rng.Float64() < s.beamRetention {
			s.beam = append(s.beam, p.Position)
		}
	}
}

func (s *ScanScheduler) sweepStep(now float64) {
	origin := s.pose.Position()
	rot := s.pose.Rotation()

	azimuth := 2 * math.Pi * float64(s.azStep) / float64(s.azimuthSteps)
	// The dome covers half a turn of elevation centered on the horizon.
	elevation := math.Pi/2*(float64(s.layer)+0.5)/float64(s.layers) - math.Pi/4

	dir := rot.Rotate(sphericalDir(float32(azimuth), float32(elevation)))
	if p, ok := s.castRay(origin, dir, nil, now); ok {
		s.queue.Enqueue(p)
	}

	s.azStep++
	if s.azStep >= s.azimuthSteps {
		s.azStep = 0
		s.layer = (s.layer + 1) % s.layers
	}
}

// castRay performs a single sample. A failure of any kind -- invalid
// origin or direction, a miss, or a hit missing required metadata --
// skips just this ray and never aborts the scan.
func (s *ScanScheduler) castRay(origin, dir types.Vec3, exclude map[int]struct{}, now float64) (Point, bool) {
	if !origin.IsValid() {
		s.skipped++
		s.logger.Warningf("scan: skipping ray with invalid origin %v", origin)
		return Point{}, false
	}
	if !dir.IsValid() || dir.Len() == 0 {
		s.skipped++
		s.logger.Warningf("scan: skipping ray with invalid direction %v", dir)
		return Point{}, false
	}

	s.raysCast++
	hit, ok := s.caster.Intersect(origin, dir, s.maxDistance, exclude)
	if !ok {
		return Point{}, false
	}
	if !hit.Point.IsValid() || hit.Distance <= 0 {
		s.skipped++
		s.logger.Warningf("scan: discarding hit with invalid geometry at distance %f", hit.Distance)
		return Point{}, false
	}
	if hit.Material == "" {
		s.skipped++
		s.logger.Warning("scan: discarding hit without a material tag")
		return Point{}, false
	}

	s.raysHit++
	return Point{
		Position:   hit.Point,
		Color:      s.colorFor(hit),
		SpawnTime:  now,
		Lifetime:   s.lifetime,
		Intensity:  1.0,
		Persistent: hit.Persistent,
	}, true
}

// Near hits render warm white, fading towards a cold blue-green at the
// max ray distance.
func (s *ScanScheduler) defaultColor(hit Hit) types.Vec3 {
	t := types.Clamp01(hit.Distance / s.maxDistance)
	near := types.XYZ(1.0, 1.0, 0.95)
	far := types.XYZ(0.1, 0.45, 0.7)
	return near.Add(far.Sub(near).Mul(t))
}

func sphericalDir(azimuth, elevation float32) types.Vec3 {
	cosEl := float32(math.Cos(float64(elevation)))
	return types.XYZ(
		float32(math.Sin(float64(azimuth)))*cosEl,
		float32(math.Sin(float64(elevation))),
		-float32(math.Cos(float64(azimuth)))*cosEl,
	).Normalize()
}
