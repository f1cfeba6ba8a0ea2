package cmd

import (
	"github.com/urfave/cli"

	"github.com/yht0511/terminus-lidar/bvh"
	"github.com/yht0511/terminus-lidar/config"
	"github.com/yht0511/terminus-lidar/lidar"
	"github.com/yht0511/terminus-lidar/renderer"
	"github.com/yht0511/terminus-lidar/scene"
	"github.com/yht0511/terminus-lidar/types"
)

// View opens the interactive OpenGL viewer over the demo scene.
// Left click fires a burst scan, V toggles the ambient sweep, C clears.
func View(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		logger.Error(err)
		return err
	}

	opts := renderer.DefaultOptions()
	if w := ctx.Int("width"); w > 0 {
		opts.FrameW = uint32(w)
	}
	if h := ctx.Int("height"); h > 0 {
		opts.FrameH = uint32(h)
	}

	sc := scene.Demo()
	index := bvh.NewIncrementalBuilder(cfg.Index.MinLeafItems, logger)
	caster := scene.NewRaycaster(sc, index)
	camera := renderer.NewFPSCamera(types.XYZ(0, 1.7, 5))

	engine := lidar.NewEngine(caster, camera, lidar.NewSystemClock(), index, cfg, logger)
	engine.Rebuild(sc.Pieces())

	r, err := renderer.NewOpenGL(engine, camera, opts, logger)
	if err != nil {
		logger.Error(err)
		return err
	}
	defer r.Close()

	return runRenderLoop(r)
}

func runRenderLoop(r renderer.Renderer) error {
	for {
		if err := r.Render(); err != nil {
			if err == renderer.ErrWindowClosed || err == renderer.ErrScreenClosed {
				return nil
			}
			logger.Error(err)
			return err
		}
	}
}
