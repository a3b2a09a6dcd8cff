package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/shuliakovsky/signal-directory/pkg/config"
)

func loadConfig(logger *zap.Logger) config.Config {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"), logger)
	if err != nil {
		logger.Fatal("config_load_error", zap.Error(err))
	}
	return cfg
}
