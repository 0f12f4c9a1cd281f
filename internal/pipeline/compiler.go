package pipeline

import (
	"fmt"

	"skyconv/internal/config"
	"skyconv/internal/spec"
	"skyconv/internal/telemetry"
	"skyconv/internal/transform"
	"skyconv/sink"
	"skyconv/sink/stdout"
	sinktsv "skyconv/sink/tsv"
	"skyconv/source"

	// decoders register themselves by extension
	_ "skyconv/source/pqp"
	_ "skyconv/source/traml"
	_ "skyconv/source/tsv"
)

// Compile builds a Runner for cfg with the embedded Skyline mapping, the
// default decoder registry and the sink matching cfg.Output.
func Compile(cfg config.Config, rec *telemetry.Recorder) (*Runner, error) {
	m, err := spec.Skyline()
	if err != nil {
		return nil, fmt.Errorf("mapping: %w", err)
	}

	name := sink.ForPath(cfg.Output)
	s, err := sink.NewAdapter(name)
	if err != nil {
		return nil, err
	}
	switch name {
	case "stdout":
		err = s.Configure(stdout.Config{})
	case "tsv":
		err = s.Configure(sinktsv.Config{Path: cfg.Output})
	default:
		err = fmt.Errorf("no config block for sink %q", name)
	}
	if err != nil {
		return nil, err
	}

	opts := transform.Options{RTWindow: cfg.RTWindow, StrictPrune: cfg.StrictPrune}
	return NewRunner(source.Default(), m, opts, s, rec), nil
}
