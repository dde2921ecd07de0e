package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/trackrun/internal/app"
	"github.com/zeusync/trackrun/internal/audio"
	"github.com/zeusync/trackrun/internal/config"
	"github.com/zeusync/trackrun/internal/core/asset"
	"github.com/zeusync/trackrun/internal/core/events/bus"
	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/render"
	"github.com/zeusync/trackrun/internal/render/terminal"
)

func main() {
	var (
		configPath string
		sceneName  string
		assetRoot  string
		logPath    string
		mute       bool
	)
	flag.StringVar(&configPath, "config", "", "YAML config file (built-in presets when empty).")
	flag.StringVar(&sceneName, "scene", "dodge", "Scene preset to run.")
	flag.StringVar(&assetRoot, "assets", ".", "Directory model paths are resolved against.")
	flag.StringVar(&logPath, "log", "trackrun.log", "Log file; the terminal is taken by the scene.")
	flag.BoolVar(&mute, "mute", false, "Disable the collision tone.")
	flag.Parse()

	if err := run(configPath, sceneName, assetRoot, logPath, mute); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, sceneName, assetRoot, logPath string, mute bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	sc, err := cfg.Scene(sceneName)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := log.NewWithConfig(log.Config{Level: level, Encoding: "json", OutputPaths: []string{logPath}})
	defer func() { _ = logger.Sync() }()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	r := terminal.NewRenderer(screen)
	notifiers := []loop.Notifier{r}
	if !mute {
		tone, err := audio.NewSpeakerTone(880, 80*time.Millisecond, logger)
		if err != nil {
			// non-fatal, the scene runs without sound
			logger.Warn("audio disabled", log.Error(err))
		} else {
			notifiers = append(notifiers, tone)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := app.Build(ctx, sceneName, sc, app.Options{
		Logger:       logger,
		Bus:          bus.New(),
		Loader:       asset.NewFileLoader(os.DirFS(assetRoot), logger),
		Renderer:     r,
		Notifier:     render.Notifiers(notifiers...),
		Tick:         time.Second / time.Duration(cfg.Server.TickHz),
		ScaleByDelta: cfg.Server.ScaleByDelta,
	})
	if err != nil {
		return err
	}

	err = terminal.Run(ctx, l, screen, cfg.Server.TickHz, logger)
	if err == context.Canceled {
		return nil
	}
	return err
}
