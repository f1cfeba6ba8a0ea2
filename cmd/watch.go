package cmd

import (
	"time"

	"github.com/urfave/cli"

	"github.com/yht0511/terminus-lidar/bvh"
	"github.com/yht0511/terminus-lidar/config"
	"github.com/yht0511/terminus-lidar/lidar"
	"github.com/yht0511/terminus-lidar/renderer"
	"github.com/yht0511/terminus-lidar/scene"
	"github.com/yht0511/terminus-lidar/types"
)

// Watch opens the top-down terminal viewer over the demo scene. Space
// fires a burst scan, V toggles the ambient sweep, C clears, Q quits.
func Watch(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		logger.Error(err)
		return err
	}

	sc := scene.Demo()
	index := bvh.NewIncrementalBuilder(cfg.Index.MinLeafItems, logger)
	caster := scene.NewRaycaster(sc, index)
	camera := renderer.NewFPSCamera(types.XYZ(0, 1.7, 5))

	engine := lidar.NewEngine(caster, camera, lidar.NewSystemClock(), index, cfg, logger)
	engine.Rebuild(sc.Pieces())

	r, err := renderer.NewTerminal(engine, camera, renderer.DefaultOptions(), logger)
	if err != nil {
		logger.Error(err)
		return err
	}
	defer r.Close()

	ticker := time.NewTicker(time.Second / 30)
	defer ticker.Stop()

	for range ticker.C {
		if err := r.Render(); err != nil {
			if err == renderer.ErrScreenClosed {
				return nil
			}
			logger.Error(err)
			return err
		}
	}
	return nil
}
