//go:build cgo

// Package window is a desktop host: ebiten calls Update once per tick and
// the loop advances one frame each time.
package window

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/zeusync/trackrun/internal/core/input"
	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/scene"
)

var keyNames = map[ebiten.Key]string{
	ebiten.KeyArrowLeft:  input.KeyArrowLeft,
	ebiten.KeyArrowRight: input.KeyArrowRight,
	ebiten.KeyArrowUp:    input.KeyArrowUp,
	ebiten.KeyArrowDown:  input.KeyArrowDown,
}

// Game is an ebiten.Game that also serves as the loop's renderer and
// notifier.
type Game struct {
	loop  *loop.Loop
	ctx   context.Context
	start time.Time

	mu           sync.Mutex
	snap         scene.Snapshot
	width        int
	height       int
	sized        bool
	overlay      string
	overlayUntil time.Time
}

var (
	_ loop.Renderer = (*Game)(nil)
	_ loop.Notifier = (*Game)(nil)
)

func NewGame() *Game {
	return &Game{}
}

func (g *Game) Render(_ context.Context, snap scene.Snapshot) error {
	g.mu.Lock()
	g.snap = snap
	g.mu.Unlock()
	return nil
}

func (g *Game) Notify(_ context.Context, ev loop.CollisionEvent) {
	g.mu.Lock()
	g.overlay = fmt.Sprintf("COLLISION  run %.1fs  best %.1fs", ev.Elapsed, ev.Best)
	g.overlayUntil = time.Now().Add(1500 * time.Millisecond)
	g.mu.Unlock()
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.mu.Lock()
	resized, w, h := g.sized, g.width, g.height
	g.sized = false
	g.mu.Unlock()
	if resized {
		g.loop.Resize(w, h)
	}

	for key, name := range keyNames {
		if inpututil.IsKeyJustPressed(key) {
			g.loop.OnKey(name)
		}
	}
	return g.loop.Frame(g.ctx, time.Since(g.start))
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	snap := g.snap
	overlay := g.overlay
	if time.Now().After(g.overlayUntil) {
		overlay = ""
	}
	g.mu.Unlock()

	b := screen.Bounds()
	lines, rects := Shapes(snap, b.Dx(), b.Dy())
	for _, l := range lines {
		vector.StrokeLine(screen, float32(l.X0), float32(l.Y0), float32(l.X1), float32(l.Y1), 1, colorTrack, true)
	}
	for _, r := range rects {
		half := r.Size / 2
		vector.DrawFilledRect(screen, float32(r.X-half), float32(r.Y-half), float32(r.Size), float32(r.Size), r.Color, false)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  frame %d  run %.1fs  best %.1fs", snap.Scene, snap.Frame, snap.Elapsed, snap.Best))
	if overlay != "" {
		ebitenutil.DebugPrintAt(screen, overlay, b.Dx()/2-len(overlay)*3, b.Dy()/2)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mu.Lock()
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height, g.sized = outsideWidth, outsideHeight, true
	}
	g.mu.Unlock()
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it closes or ctx is done. g must
// be the renderer l was built with.
func Run(ctx context.Context, g *Game, l *loop.Loop, title string, hz int) error {
	if err := l.Start(); err != nil {
		return err
	}
	g.loop, g.ctx, g.start = l, ctx, time.Now()

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(960, 640)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(hz)
	return ebiten.RunGame(g)
}
