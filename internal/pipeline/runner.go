package pipeline

import (
	"context"
	"errors"
	"fmt"

	"skyconv/internal/logging"
	"skyconv/internal/schema"
	"skyconv/internal/spec"
	"skyconv/internal/telemetry"
	"skyconv/internal/transform"
	"skyconv/sink"
	"skyconv/source"
)

// Result summarizes one conversion.
type Result struct {
	Format      string
	RecordsRead int
	Written     int
}

// Runner converts one assay library per Run call:
// decode -> scratch TSV -> validate -> transform -> export.
type Runner struct {
	sources *source.Registry
	mapping spec.Mapping
	opts    transform.Options
	sink    sink.Adapter
	rec     *telemetry.Recorder
}

func NewRunner(sources *source.Registry, m spec.Mapping, opts transform.Options, s sink.Adapter, rec *telemetry.Recorder) *Runner {
	if rec == nil {
		rec = telemetry.NewRecorder()
	}
	if opts.Observer == nil {
		opts.Observer = rec
	}
	return &Runner{sources: sources, mapping: m, opts: opts, sink: s, rec: rec}
}

// Run converts input and hands the transition list to the sink. The scratch
// file is removed on every return path.
func (r *Runner) Run(ctx context.Context, input string) (res Result, err error) {
	if r.sink == nil {
		return res, errors.New("runner: no sink configured")
	}
	adapter, err := r.sources.For(input)
	if err != nil {
		return res, fmt.Errorf("normalize: %w", err)
	}
	res.Format = adapter.Format()

	scratch, err := source.NewScratch()
	if err != nil {
		return res, fmt.Errorf("normalize: %w", err)
	}
	defer func() {
		if cerr := scratch.Close(); cerr != nil {
			logging.L().Warn("scratch cleanup failed", "path", scratch.Path(), "err", cerr)
		}
	}()

	lib, err := adapter.Decode(ctx, input)
	if err != nil {
		return res, fmt.Errorf("normalize: %w", err)
	}
	res.RecordsRead = lib.Len()
	r.rec.RecordsRead(res.Format, lib.Len())
	logging.L().Info("library decoded", "format", res.Format, "records", lib.Len(), "path", input)

	if err := scratch.WriteCanonical(lib); err != nil {
		return res, fmt.Errorf("normalize: %w", err)
	}
	tbl, err := scratch.ReadCanonical()
	if err != nil {
		return res, fmt.Errorf("normalize: %w", err)
	}
	if tbl, err = schema.Validate(tbl); err != nil {
		return res, fmt.Errorf("validate: %w", err)
	}

	list, err := transform.Run(tbl, transform.Build(r.mapping, r.opts), r.mapping.OutputOrder, r.opts.Observer)
	if err != nil {
		return res, err
	}
	if err := r.sink.Write(list); err != nil {
		return res, fmt.Errorf("export: %w", err)
	}
	res.Written = list.Len()
	r.rec.TransitionsWritten(list.Len())
	r.rec.Succeeded()
	return res, nil
}

func (r *Runner) Close() error {
	if r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
