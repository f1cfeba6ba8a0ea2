package main

import (
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/yht0511/terminus-lidar/cmd"
)

func init() {
	// The opengl viewer requires the GL context to run on the main thread.
	runtime.LockOSThread()
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "terminus-lidar"
	app.Usage = "incremental point-cloud acquisition and visualization engine"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "scan",
			Usage: "run a headless scan simulation and print pipeline stats",
			Description: `
Build the synthetic demo scene, fire one burst scan plus the ambient
sweep, advance the engine for a fixed number of frames on a manual
clock and print the scene and pipeline status tables.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "frames",
					Value: 600,
					Usage: "number of frames to simulate",
				},
				cli.IntFlag{
					Name:  "capacity",
					Value: 0,
					Usage: "override point buffer capacity",
				},
				cli.StringFlag{
					Name:  "config, c",
					Value: "lidar.yaml",
					Usage: "tuning config file",
				},
			},
			Action: cmd.Scan,
		},
		{
			Name:  "view",
			Usage: "interactive opengl point cloud viewer",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 1024,
					Usage: "window width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 768,
					Usage: "window height",
				},
				cli.StringFlag{
					Name:  "config, c",
					Value: "lidar.yaml",
					Usage: "tuning config file",
				},
			},
			Action: cmd.View,
		},
		{
			Name:  "watch",
			Usage: "top-down terminal point cloud viewer",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Value: "lidar.yaml",
					Usage: "tuning config file",
				},
			},
			Action: cmd.Watch,
		},
	}

	app.Run(os.Args)
}
