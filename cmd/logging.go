package cmd

import (
	"github.com/urfave/cli"

	"github.com/yht0511/terminus-lidar/log"
)

var logger = log.New("terminus-lidar")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
