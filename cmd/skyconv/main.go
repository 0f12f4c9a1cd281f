package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"skyconv/internal/config"
	"skyconv/internal/engine"
	"skyconv/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logging.InitFromEnv()

	fs := config.NewFlagSet("skyconv", os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Convert an OpenMS AssayGeneratorMetabo library (.tsv, .traML, .pqp) to a Skyline transition list.")
		fmt.Fprintln(fs.Output(), "Usage: skyconv -in <library> -out <skyline.tsv> [-rtw <minutes>]")
		fs.PrintDefaults()
	}
	fl, err := config.ParseFlags(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "skyconv: %v\n", err)
		return 2
	}

	cfg, err := config.Load(fl.ConfigPath, fl.Overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "skyconv: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := engine.Bootstrap(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "skyconv: bootstrap: %v\n", err)
		return 1
	}
	if _, err := e.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "skyconv: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stderr, "Export successful")
	return 0
}
