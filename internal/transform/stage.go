package transform

import (
	"fmt"
	"time"

	"skyconv/internal/logging"
	"skyconv/internal/spec"
	"skyconv/internal/table"
)

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Apply(*table.Table) error
}

type stageFunc struct {
	name string
	fn   func(*table.Table) error
}

func (s stageFunc) Name() string               { return s.name }
func (s stageFunc) Apply(t *table.Table) error { return s.fn(t) }

// Observer receives per-stage measurements. A nil Observer is allowed.
type Observer interface {
	StageDone(stage string, d time.Duration)
	DecoysRemoved(n int)
	AdductSuspect(adduct string)
}

type nopObserver struct{}

func (nopObserver) StageDone(string, time.Duration) {}
func (nopObserver) DecoysRemoved(int)               {}
func (nopObserver) AdductSuspect(string)            {}

func orNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}

type Options struct {
	// RTWindow in minutes; zero omits the window column.
	RTWindow float64
	// StrictPrune fails the run when a column listed for pruning is absent.
	StrictPrune bool
	Observer    Observer
}

// Build returns the stages for m in execution order.
func Build(m spec.Mapping, opts Options) []Stage {
	obs := orNop(opts.Observer)
	c := m.Columns
	return []Stage{
		Rename(m.RenameMap()),
		DropDecoys(m.DecoyColumn, obs),
		Prune(m.Prune, opts.StrictPrune),
		FixedFill(c.ProductCharge, fmt.Sprint(m.ProductCharge)),
		ReformatAdducts(c.PrecursorAdduct, obs),
		CopyColumn(c.PrecursorAdduct, c.ProductAdduct),
		Rescale(c.PrecursorRT, m.RTDivisor),
		Window(c.RTWindow, opts.RTWindow),
	}
}

// Run applies stages to t in order and returns t reordered for output. The
// first failing stage aborts the run.
func Run(t *table.Table, stages []Stage, order []string, obs Observer) (*table.Table, error) {
	obs = orNop(obs)
	for _, s := range stages {
		start := time.Now()
		if err := s.Apply(t); err != nil {
			return nil, fmt.Errorf("transform %s: %w", s.Name(), err)
		}
		obs.StageDone(s.Name(), time.Since(start))
		logging.L().Debug("stage done", "stage", s.Name(), "rows", t.Len(), "columns", len(t.Columns()))
	}
	return t.Reorder(order), nil
}

// Transform runs the full Skyline mapping over a validated canonical table.
func Transform(t *table.Table, m spec.Mapping, opts Options) (*table.Table, error) {
	return Run(t, Build(m, opts), m.OutputOrder, opts.Observer)
}
