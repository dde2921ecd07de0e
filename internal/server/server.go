// Package server runs one scene headless and publishes it: browsers over
// WebSocket, spectators over QUIC.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/trackrun/internal/app"
	"github.com/zeusync/trackrun/internal/config"
	"github.com/zeusync/trackrun/internal/core/asset"
	"github.com/zeusync/trackrun/internal/core/events/bus"
	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/host"
	"github.com/zeusync/trackrun/internal/render"
	"github.com/zeusync/trackrun/internal/transport/quic"
	"github.com/zeusync/trackrun/internal/transport/websocket"
)

const shutdownTimeout = 5 * time.Second

// Server wires the loop of one scene to its transports.
type Server struct {
	cfg    *config.Config
	scene  string
	logger log.Log
	bus    bus.EventBus
	hub    *websocket.Hub
	loader asset.Loader

	running    atomic.Bool
	collisions atomic.Uint64
	httpAddr   atomic.Value // string
	quicAddr   atomic.Value // string
}

func New(cfg *config.Config, scene string, logger log.Log, eventBus bus.EventBus, hub *websocket.Hub, loader asset.Loader) (*Server, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if _, err := cfg.Scene(scene); err != nil {
		return nil, err
	}
	return &Server{
		cfg:    cfg,
		scene:  scene,
		logger: logger.Named("server"),
		bus:    eventBus,
		hub:    hub,
		loader: loader,
	}, nil
}

// Run blocks until ctx is cancelled or a component fails. Cancellation is
// a clean shutdown and returns nil.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	sc, err := s.cfg.Scene(s.scene)
	if err != nil {
		return err
	}

	s.bus.AddObserver(bus.LogObserver{Logger: s.logger})
	sub, err := s.bus.Subscribe(loop.EventCollision, func(bus.Event) error {
		s.collisions.Add(1)
		return nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = sub.Cancel() }()

	var feed *quic.Feed
	if addr := s.cfg.Server.QUICAddr; addr != "" {
		feed, err = quic.Listen(quic.Config{Addr: addr}, s.logger)
		if err != nil {
			return errors.Wrap(ErrListenerFailed, err.Error())
		}
		s.quicAddr.Store(feed.Addr().String())
	}

	renderers := []loop.Renderer{s.hub}
	if feed != nil {
		renderers = append(renderers, &render.Dedupe{Next: feed})
	}

	tick := time.Second / time.Duration(s.cfg.Server.TickHz)
	l, err := app.Build(ctx, s.scene, sc, app.Options{
		Logger:       s.logger,
		Bus:          s.bus,
		Loader:       s.loader,
		Renderer:     render.Fanout(renderers...),
		Notifier:     s.hub,
		Tick:         tick,
		ScaleByDelta: s.cfg.Server.ScaleByDelta,
	})
	if err != nil {
		if feed != nil {
			_ = feed.Close()
		}
		return err
	}

	ln, err := net.Listen("tcp", s.cfg.Server.HTTPAddr)
	if err != nil {
		if feed != nil {
			_ = feed.Close()
		}
		return errors.Wrap(ErrListenerFailed, err.Error())
	}
	s.httpAddr.Store(ln.Addr().String())
	httpSrv := &http.Server{Handler: s.routes(), ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http listening", log.String("addr", ln.Addr().String()))
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	if feed != nil {
		g.Go(func() error { return feed.Serve(gctx) })
	}
	g.Go(func() error {
		return host.RunHeadless(gctx, l, s.hub.Inputs(), host.HeadlessConfig{Hz: s.cfg.Server.TickHz, Logger: s.logger})
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.hub.Close()
		if feed != nil {
			_ = feed.Close()
		}
		return httpSrv.Shutdown(shutdownCtx)
	})

	s.logger.Info("server started", log.String("scene", s.scene), log.Int("tick_hz", s.cfg.Server.TickHz))
	err = g.Wait()
	s.logger.Info("server stopped", log.Uint64("collisions", s.collisions.Load()))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HTTPAddr is the bound HTTP address once Run has started listening.
func (s *Server) HTTPAddr() string {
	addr, _ := s.httpAddr.Load().(string)
	return addr
}

func (s *Server) QUICAddr() string {
	addr, _ := s.quicAddr.Load().(string)
	return addr
}

type health struct {
	Scene      string `json:"scene"`
	Clients    int    `json:"clients"`
	Collisions uint64 `json:"collisions"`
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(health{
			Scene:      s.scene,
			Clients:    s.hub.Clients(),
			Collisions: s.collisions.Load(),
		})
	})
	return mux
}
