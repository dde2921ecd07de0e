//go:build !cgo

package window

import (
	"context"

	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/scene"
)

// Game stands in for the ebiten host when cgo is unavailable.
type Game struct{}

func NewGame() *Game { return &Game{} }

func (g *Game) Render(context.Context, scene.Snapshot) error { return nil }

func (g *Game) Notify(context.Context, loop.CollisionEvent) {}

func Run(context.Context, *Game, *loop.Loop, string, int) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
