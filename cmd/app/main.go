package main

import (
	"roomtime/config"
	"roomtime/di"
	"roomtime/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
