// Package host runs a frame loop without a display: a ticker drives the
// frames and key and resize events arrive on channels.
package host

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/observability/log"
)

var ErrInvalidRate = errors.New("invalid tick rate")

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Inputs are the event sources of a host. Nil channels are never read.
type Inputs struct {
	Keys    <-chan string
	Resizes <-chan Size
}

type HeadlessConfig struct {
	Hz int
	// Frames stops the host after this many frames; 0 runs until the
	// context is cancelled.
	Frames uint64
	Logger log.Log
}

// RunHeadless starts l and drives it until ctx is done. Keys are applied
// the moment they are received, between frames.
func RunHeadless(ctx context.Context, l *loop.Loop, in Inputs, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		return errors.Wrapf(ErrInvalidRate, "%d hz", cfg.Hz)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.Named("host")

	if err := l.Start(); err != nil {
		return err
	}

	t := time.NewTicker(time.Second / time.Duration(cfg.Hz))
	defer t.Stop()

	start := time.Now()
	keys, resizes := in.Keys, in.Resizes
	var frames uint64
	for {
		select {
		case <-ctx.Done():
			logger.Info("host stopped", log.Uint64("frames", frames))
			return ctx.Err()
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			l.OnKey(key)
		case sz, ok := <-resizes:
			if !ok {
				resizes = nil
				continue
			}
			l.Resize(sz.Width, sz.Height)
		case <-t.C:
			if err := l.Frame(ctx, time.Since(start)); err != nil {
				return err
			}
			frames++
			if cfg.Frames > 0 && frames >= cfg.Frames {
				logger.Info("frame budget reached", log.Uint64("frames", frames))
				return nil
			}
		}
	}
}
