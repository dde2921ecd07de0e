// Package terminal draws the scene on a character terminal and reads the
// arrow keys from it.
package terminal

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/trackrun/internal/core/input"
	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/scene"
)

// CellAspect is how much taller a terminal cell is than it is wide.
const CellAspect = 2

const overlayDuration = 1500 * time.Millisecond

var (
	styleHUD      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleFocus    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleTrack    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDecor    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleOverlay  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true)
)

// Renderer implements loop.Renderer and loop.Notifier on a tcell screen.
type Renderer struct {
	screen tcell.Screen
	now    func() time.Time

	mu           sync.Mutex
	overlay      string
	overlayUntil time.Time
}

var (
	_ loop.Renderer = (*Renderer)(nil)
	_ loop.Notifier = (*Renderer)(nil)
)

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen, now: time.Now}
}

func glyph(k scene.Kind) (rune, tcell.Style) {
	switch k {
	case scene.KindFocus:
		return '@', styleFocus
	case scene.KindObstacle:
		return 'O', styleObstacle
	case scene.KindTrackSegment:
		return '=', styleTrack
	default:
		return '*', styleDecor
	}
}

func (r *Renderer) Render(_ context.Context, snap scene.Snapshot) error {
	w, h := r.screen.Size()
	r.screen.Clear()
	if w <= 0 || h <= 0 {
		return nil
	}

	// the camera sees cells as CellAspect times taller than wide
	cam := snap.Camera
	cam.Aspect = float64(w) / float64(h*CellAspect)

	// track first so everything else draws over it
	for _, o := range snap.Objects {
		if o.Kind == scene.KindTrackSegment {
			r.drawSegment(cam, o, w, h)
		}
	}
	for _, o := range snap.Objects {
		if o.Kind == scene.KindTrackSegment {
			continue
		}
		p, ok := cam.Project(o.Position, w, h)
		if !ok {
			continue
		}
		ch, style := glyph(o.Kind)
		r.set(int(math.Round(p.X)), int(math.Round(p.Y)), ch, style, w, h)
	}

	r.drawText(0, 0, fmt.Sprintf(" %s  frame %d  run %.1fs  best %.1fs ", snap.Scene, snap.Frame, snap.Elapsed, snap.Best), styleHUD, w, h)

	r.mu.Lock()
	overlay := r.overlay
	if r.now().After(r.overlayUntil) {
		overlay = ""
	}
	r.mu.Unlock()
	if overlay != "" {
		r.drawText((w-len(overlay))/2, h/2, overlay, styleOverlay, w, h)
	}

	r.screen.Show()
	return nil
}

// drawSegment draws the near and far edges of a track segment.
func (r *Renderer) drawSegment(cam scene.Camera, o scene.ObjectState, w, h int) {
	halfW, halfL := o.Scale.X/2, o.Scale.Z/2
	for _, dz := range []float64{-halfL, halfL} {
		left, okL := cam.Project(o.Position.Add(scene.V(-halfW, 0, dz)), w, h)
		right, okR := cam.Project(o.Position.Add(scene.V(halfW, 0, dz)), w, h)
		if !okL || !okR {
			continue
		}
		y := int(math.Round(left.Y))
		for x := int(math.Round(left.X)); x <= int(math.Round(right.X)); x++ {
			r.set(x, y, '=', styleTrack, w, h)
		}
	}
}

func (r *Renderer) set(x, y int, ch rune, style tcell.Style, w, h int) {
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	r.screen.SetContent(x, y, ch, nil, style)
}

func (r *Renderer) drawText(x, y int, s string, style tcell.Style, w, h int) {
	for i, ch := range []rune(s) {
		r.set(x+i, y, ch, style, w, h)
	}
}

// Notify shows a collision banner over the next frames.
func (r *Renderer) Notify(_ context.Context, ev loop.CollisionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlay = fmt.Sprintf(" COLLISION  run %.1fs  best %.1fs ", ev.Elapsed, ev.Best)
	r.overlayUntil = r.now().Add(overlayDuration)
}

// KeyName maps a terminal key to the loop's key names. hjkl work as arrows.
func KeyName(key tcell.Key, ch rune) (string, bool) {
	switch key {
	case tcell.KeyLeft:
		return input.KeyArrowLeft, true
	case tcell.KeyRight:
		return input.KeyArrowRight, true
	case tcell.KeyUp:
		return input.KeyArrowUp, true
	case tcell.KeyDown:
		return input.KeyArrowDown, true
	case tcell.KeyRune:
		switch ch {
		case 'h':
			return input.KeyArrowLeft, true
		case 'l':
			return input.KeyArrowRight, true
		case 'k':
			return input.KeyArrowUp, true
		case 'j':
			return input.KeyArrowDown, true
		}
	}
	return "", false
}

// IsQuit reports keys that end the session.
func IsQuit(key tcell.Key, ch rune) bool {
	return key == tcell.KeyEscape || key == tcell.KeyCtrlC || (key == tcell.KeyRune && ch == 'q')
}
