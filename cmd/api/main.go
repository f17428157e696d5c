package main

import (
	"flag"
	"os"

	"github.com/yigit/curriculum/internal/bootstrap"
	"github.com/yigit/curriculum/internal/pkg/logger"
	"github.com/yigit/curriculum/internal/server"
)

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML config file")
	flag.Parse()

	srv, err := server.NewServer(*configPath)
	if err != nil {
		logger.Error().Err(err).Str("config", *configPath).Msg("Failed to initialize progress API")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Progress API stopped with errors")
		os.Exit(1)
	}
}
