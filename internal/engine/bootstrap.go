package engine

import (
	"fmt"

	"skyconv/internal/config"
	"skyconv/internal/logging"
	"skyconv/internal/pipeline"
	"skyconv/internal/telemetry"
)

func Bootstrap(cfg config.Config) (*Engine, error) {
	// 1. logging
	logging.Configure(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	// 2. metrics
	rec := telemetry.NewRecorder()

	// 3. pipeline runner
	runner, err := pipeline.Compile(cfg, rec)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	return &Engine{
		cfg:    cfg,
		runner: runner,
		rec:    rec,
	}, nil
}
