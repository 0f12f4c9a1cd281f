package config

import (
	"flag"
	"fmt"
	"io"
)

// Flags is the parsed command line: the optional config file plus every
// explicitly set flag keyed by config path.
type Flags struct {
	ConfigPath string
	Overrides  map[string]any
}

// flagKeys maps flag names, including the short aliases, to config keys.
var flagKeys = map[string]string{
	"openmslib":    "openmslib",
	"in":           "openmslib",
	"skylinelib":   "skylinelib",
	"out":          "skylinelib",
	"rtwindow":     "rtwindow",
	"rtw":          "rtwindow",
	"strict-prune": "strict_prune",
	"metrics-file": "metrics_file",
	"log-level":    "log.level",
	"log-json":     "log.json",
}

// NewFlagSet returns a clean FlagSet with ContinueOnError.
func NewFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// ParseFlags parses args. Only flags present on the command line become
// overrides so that environment values are not masked by flag defaults.
func ParseFlags(fs *flag.FlagSet, args []string) (Flags, error) {
	var (
		in, out, level, metrics, cfgPath string
		rtw                              float64
		strict, jsonLog                  bool
	)
	fs.StringVar(&cfgPath, "config", "", "optional YAML config file")
	for _, n := range []string{"openmslib", "in"} {
		fs.StringVar(&in, n, "", "input assay library from OpenMS AssayGeneratorMetabo (.tsv, .traML, .pqp)")
	}
	for _, n := range []string{"skylinelib", "out"} {
		fs.StringVar(&out, n, "", "output Skyline transition list (.tsv), - for stdout")
	}
	for _, n := range []string{"rtwindow", "rtw"} {
		fs.Float64Var(&rtw, n, 0, "precursor retention time window in minutes (e.g. 0.6); 0 drops the column")
	}
	fs.BoolVar(&strict, "strict-prune", false, "fail when a column scheduled for removal is absent")
	fs.StringVar(&metrics, "metrics-file", "", "write Prometheus metrics in textfile format to this path")
	fs.StringVar(&level, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&jsonLog, "log-json", false, "log as JSON")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	if fs.NArg() > 0 {
		return Flags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	f := Flags{ConfigPath: cfgPath, Overrides: map[string]any{}}
	fs.Visit(func(fl *flag.Flag) {
		key, ok := flagKeys[fl.Name]
		if !ok {
			return
		}
		if g, ok := fl.Value.(flag.Getter); ok {
			f.Overrides[key] = g.Get()
		}
	})
	return f, nil
}
