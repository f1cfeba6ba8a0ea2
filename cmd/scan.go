package cmd

import (
	"fmt"
	"math"

	"github.com/urfave/cli"

	"github.com/yht0511/terminus-lidar/bvh"
	"github.com/yht0511/terminus-lidar/config"
	"github.com/yht0511/terminus-lidar/lidar"
	"github.com/yht0511/terminus-lidar/scene"
	"github.com/yht0511/terminus-lidar/types"
)

// A fixed player pose for headless runs.
type staticPose struct {
	pos types.Vec3
	rot types.Quat
}

func (p staticPose) Position() types.Vec3 {
	return p.pos
}

func (p staticPose) Rotation() types.Quat {
	return p.rot
}

// Scan runs a headless simulation against the synthetic demo scene: one
// burst scan plus the ambient sweep, advanced for a fixed number of
// frames on a manual clock, then prints the pipeline status tables.
func Scan(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		logger.Error(err)
		return err
	}
	if capacity := ctx.Int("capacity"); capacity > 0 {
		cfg.Points.Capacity = capacity
	}

	sc := scene.Demo()
	index := bvh.NewIncrementalBuilder(cfg.Index.MinLeafItems, logger)
	caster := scene.NewRaycaster(sc, index)
	clock := lidar.NewManualClock()
	pose := staticPose{
		pos: types.XYZ(0, 1.7, 5),
		rot: types.QuatIdent(),
	}

	engine := lidar.NewEngine(caster, pose, clock, index, cfg, logger)
	engine.Rebuild(sc.Pieces())
	engine.StartSweep()
	engine.StartScan(lidar.ScanParams{
		Origin:        pose.pos,
		Orientation:   pose.rot,
		Duration:      0.3,
		Rows:          48,
		SamplesPerRow: 96,
		FOV:           float32(math.Pi / 3),
	})

	frames := ctx.Int("frames")
	const dt = 1.0 / 60.0
	for i := 0; i < frames; i++ {
		clock.Advance(dt)
		engine.Update()
	}

	logger.Noticef("simulated %d frames (%0.2fs scene time), %d points acquired",
		frames, float64(frames)*dt, engine.Count())
	fmt.Println(sc.Stats())
	fmt.Println(engine.QueueStatus())
	return nil
}
