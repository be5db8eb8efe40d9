package main

import (
	stdlog "log"

	"github.com/joho/godotenv"

	"github.com/adhuhaam/laraos-sub001/cmd"
	"github.com/adhuhaam/laraos-sub001/internal/config"
	"github.com/adhuhaam/laraos-sub001/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Printf("Warning: Could not load .env file: %v", err)
	}

	// Logger configuration comes from the same environment; fall back to
	// defaults if the main config does not validate.
	logCfg := logger.DefaultConfig()
	if cfg, err := config.Load(); err == nil {
		logCfg = cfg.GetLoggerConfig()
	} else {
		stdlog.Printf("Warning: Could not load configuration: %v", err)
	}
	if err := logger.Setup(logCfg); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute()
}
