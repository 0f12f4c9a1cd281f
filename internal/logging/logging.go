package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

const (
	EnvLevel = "SKYCONV_LOG_LEVEL"
	EnvJSON  = "SKYCONV_LOG_JSON"
)

type Options struct {
	Level string
	JSON  bool
	// Output defaults to stderr so stdout stays free for the transition list.
	Output io.Writer
}

var def atomic.Value

func init() {
	cfg := &slog.HandlerOptions{Level: slog.LevelInfo}
	h := slog.NewTextHandler(os.Stderr, cfg)
	def.Store(slog.New(h))
}

func Configure(opts Options) {
	lvl := parseLevel(opts.Level)
	cfg := &slog.HandlerOptions{Level: lvl}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, cfg)
	} else {
		h = slog.NewTextHandler(out, cfg)
	}
	def.Store(slog.New(h))
}

func parseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func L() *slog.Logger {
	l, _ := def.Load().(*slog.Logger)
	return l
}

// FromEnv reads the logging options from SKYCONV_LOG_LEVEL and
// SKYCONV_LOG_JSON.
func FromEnv() Options {
	json := false
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvJSON))); err == nil {
		json = b
	}
	return Options{Level: os.Getenv(EnvLevel), JSON: json}
}

func InitFromEnv() { Configure(FromEnv()) }

// ForRun returns the default logger tagged with the library being converted
// and its destination.
func ForRun(input, output string) *slog.Logger {
	return L().With("openmslib", input, "skylinelib", output)
}
