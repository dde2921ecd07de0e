package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/zeusync/trackrun/internal/app"
	"github.com/zeusync/trackrun/internal/config"
	"github.com/zeusync/trackrun/internal/core/asset"
	"github.com/zeusync/trackrun/internal/core/events/bus"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/render/window"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (built-in presets when empty).")
	sceneName := flag.String("scene", "race", "Scene preset to run.")
	assetRoot := flag.String("assets", ".", "Directory model paths are resolved against.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sc, err := cfg.Scene(*sceneName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := log.NewWithConfig(log.Config{Level: level, Encoding: cfg.Log.Encoding, OutputPaths: cfg.Log.OutputPaths})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	game := window.NewGame()
	l, err := app.Build(ctx, *sceneName, sc, app.Options{
		Logger:   logger,
		Bus:      bus.New(),
		Loader:   asset.NewFileLoader(os.DirFS(*assetRoot), logger),
		Renderer: game,
		Notifier: game,
		Tick:     time.Second / time.Duration(cfg.Server.TickHz),
	})
	if err != nil {
		logger.Error("build scene", log.Error(err))
		os.Exit(1)
	}

	if err = window.Run(ctx, game, l, "trackrun: "+*sceneName, cfg.Server.TickHz); err != nil {
		logger.Error("window closed with error", log.Error(err))
		os.Exit(1)
	}
}
