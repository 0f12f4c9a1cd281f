package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const SupportedSchema = "v1"

type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type Config struct {
	Input       string  `koanf:"openmslib"`  // assay library (.tsv, .traML, .pqp)
	Output      string  `koanf:"skylinelib"` // Skyline transition list, "-" for stdout
	RTWindow    float64 `koanf:"rtwindow"`   // minutes; 0 omits the column
	StrictPrune bool    `koanf:"strict_prune"`
	MetricsFile string  `koanf:"metrics_file"`

	Log LogConfig `koanf:"log"`
}

// envKeys lists the environment variables read and the config key each one
// sets. The three job settings use the bare names the original tool
// understood.
var envKeys = map[string]string{
	"openmslib":            "openmslib",
	"skylinelib":           "skylinelib",
	"rtwindow":             "rtwindow",
	"SKYCONV_STRICT_PRUNE": "strict_prune",
	"SKYCONV_METRICS_FILE": "metrics_file",
	"SKYCONV_LOG_LEVEL":    "log.level",
	"SKYCONV_LOG_JSON":     "log.json",
}

// Load merges, lowest precedence first, the YAML file at path (skipped when
// path is empty, an error when it names no file), the environment and
// overrides, which
// are keyed by config path and usually come from explicitly set flags.
func Load(path string, overrides map[string]any) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return Config{}, fmt.Errorf("config schema_version %q not supported (want %s)", sv, SupportedSchema)
	}

	if err := k.Load(env.Provider("", ".", func(s string) string { return envKeys[s] }), nil); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}
	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, cfg.Validate()
}

func applyDefaults(c *Config) {
	c.Input = strings.TrimSpace(c.Input)
	c.Output = strings.TrimSpace(c.Output)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports the first setting that makes a run impossible.
func (c Config) Validate() error {
	switch {
	case c.Input == "":
		return errors.New("config: input library required (-openmslib / $openmslib)")
	case c.Output == "":
		return errors.New("config: output path required (-skylinelib / $skylinelib)")
	case c.RTWindow < 0:
		return fmt.Errorf("config: rtwindow must be >= 0, got %v", c.RTWindow)
	}
	return nil
}
