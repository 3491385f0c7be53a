package main

import (
	"fmt"
	"os"

	"shipledger/backend/internal/config"
	"shipledger/backend/internal/logger"
)

func main() {
	cfg := config.Load()

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.Output = "stderr"
	if err := logger.Setup(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log configuration: %v\n", err)
		os.Exit(1)
	}

	root := newRootCmd(cfg, openPostgres)
	if err := root.Execute(); err != nil {
		logger.WithComponent("ledgerctl").Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
