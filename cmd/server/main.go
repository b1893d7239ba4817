package main

import (
	"github.com/lattice-kg/lattice/internal/server"
	"github.com/lattice-kg/lattice/internal/util"
	"github.com/lattice-kg/lattice/pkg/logger"
	"github.com/lattice-kg/lattice/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.New(console.Params{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
