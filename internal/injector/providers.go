package injector

import (
	"os"

	"github.com/google/wire"
	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/app"
	"github.com/zeusync/trackrun/internal/config"
	"github.com/zeusync/trackrun/internal/core/asset"
	"github.com/zeusync/trackrun/internal/core/events/bus"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/server"
	"github.com/zeusync/trackrun/internal/transport/websocket"
)

// Options come from the command line.
type Options struct {
	ConfigPath string
	Scene      string
	AssetRoot  string
}

var ServerSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideBus,
	ProvideHub,
	ProvideLoader,
	ProvideServer,
)

func ProvideConfig(opts Options) (*config.Config, error) {
	return config.Load(opts.ConfigPath)
}

func ProvideLogger(cfg *config.Config) (log.Log, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.NewWithConfig(log.Config{
		Level:       level,
		Encoding:    cfg.Log.Encoding,
		OutputPaths: cfg.Log.OutputPaths,
	}), nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideHub(opts Options, cfg *config.Config, logger log.Log) (*websocket.Hub, error) {
	sc, err := cfg.Scene(opts.Scene)
	if err != nil {
		return nil, err
	}
	mapper, err := app.NewMapper(sc)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %s", opts.Scene)
	}
	return websocket.NewHub(websocket.Config{Scene: opts.Scene, Keys: mapper.Keys()}, logger), nil
}

func ProvideLoader(opts Options, logger log.Log) asset.Loader {
	root := opts.AssetRoot
	if root == "" {
		root = "."
	}
	return asset.NewFileLoader(os.DirFS(root), logger)
}

func ProvideServer(opts Options, cfg *config.Config, logger log.Log, eventBus bus.EventBus, hub *websocket.Hub, loader asset.Loader) (*server.Server, error) {
	return server.New(cfg, opts.Scene, logger, eventBus, hub, loader)
}
