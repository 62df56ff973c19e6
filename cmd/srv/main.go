package main

import (
	"os"

	"github.com/questx-lab/raffle/pkg/xcontext"
)

var server srv

func main() {
	server.loadApp()
	if err := server.app.Run(os.Args); err != nil {
		xcontext.Logger(server.ctx).Errorf("%v", err)
		os.Exit(1)
	}
}
