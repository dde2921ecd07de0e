package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/trackrun/internal/injector"
)

func main() {
	var opts injector.Options
	flag.StringVar(&opts.ConfigPath, "config", "", "YAML config file (built-in presets when empty).")
	flag.StringVar(&opts.Scene, "scene", "dodge", "Scene preset to run.")
	flag.StringVar(&opts.AssetRoot, "assets", ".", "Directory model paths are resolved against.")
	flag.Parse()

	srv, err := injector.InitializeServer(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing server:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = srv.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error running server:", err)
		os.Exit(1)
	}
}
