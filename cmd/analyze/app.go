package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/config"
	"github.com/aristath/riskdesk/internal/di"
	"github.com/aristath/riskdesk/pkg/logger"
)

// openContainer loads the configuration and wires the container. Logs go to
// stderr so stdout carries only the command output.
func openContainer() (*di.Container, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		Output: os.Stderr,
	})

	container, _, err := di.Wire(cfg, log)
	if err != nil {
		return nil, log, fmt.Errorf("failed to wire dependencies: %w", err)
	}
	return container, log, nil
}
