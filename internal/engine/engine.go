package engine

import (
	"context"
	"errors"

	"skyconv/internal/config"
	"skyconv/internal/logging"
	"skyconv/internal/pipeline"
	"skyconv/internal/telemetry"
)

type Engine struct {
	cfg    config.Config
	runner *pipeline.Runner
	rec    *telemetry.Recorder
}

// Run performs the conversion once. Metrics are written to the configured
// textfile whether or not the conversion succeeded.
func (e *Engine) Run(ctx context.Context) (pipeline.Result, error) {
	log := logging.ForRun(e.cfg.Input, e.cfg.Output)
	res, err := e.runner.Run(ctx, e.cfg.Input)
	err = errors.Join(err, e.runner.Close())

	if e.cfg.MetricsFile != "" {
		if merr := e.rec.WriteTextfile(e.cfg.MetricsFile); merr != nil {
			log.Warn("metrics textfile not written", "path", e.cfg.MetricsFile, "err", merr)
		}
	}
	if err != nil {
		log.Debug("conversion failed", "err", err)
		return res, err
	}
	log.Info("conversion finished", "format", res.Format, "read", res.RecordsRead, "written", res.Written)
	return res, nil
}
