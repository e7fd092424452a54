package main

import (
	"github.com/ecograph/backend/internal/server"
	"github.com/ecograph/backend/internal/util"
	"github.com/ecograph/backend/pkg/logger"
	"github.com/ecograph/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
