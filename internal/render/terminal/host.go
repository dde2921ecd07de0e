package terminal

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/host"
)

// Run drives l from the terminal: frames on a ticker, keys from the screen
// applied as they arrive. It returns when the user quits or ctx is done.
// The screen must already be initialised; Run does not call Fini.
func Run(ctx context.Context, l *loop.Loop, screen tcell.Screen, hz int, logger log.Log) error {
	if hz <= 0 {
		return errors.Wrapf(host.ErrInvalidRate, "%d hz", hz)
	}
	if logger == nil {
		logger = log.Nop()
	}
	if err := l.Start(); err != nil {
		return err
	}

	w, h := screen.Size()
	l.Resize(w, h*CellAspect)

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer close(quit)

	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if IsQuit(ev.Key(), ev.Rune()) {
					logger.Info("quit requested")
					return nil
				}
				if name, ok := KeyName(ev.Key(), ev.Rune()); ok {
					l.OnKey(name)
				}
			case *tcell.EventResize:
				screen.Sync()
				w, h = ev.Size()
				l.Resize(w, h*CellAspect)
			}
		case <-ticker.C:
			if err := l.Frame(ctx, time.Since(start)); err != nil {
				return err
			}
		}
	}
}
