package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/trackrun/internal/core/scene"
)

func TestShapesOrderFarToNear(t *testing.T) {
	near := scene.NewObject(scene.KindFocus, "player")
	far := scene.NewObject(scene.KindObstacle, "rock")
	far.Position = scene.V(0, 0, -3)
	behind := scene.NewObject(scene.KindObstacle, "gone")
	behind.Position = scene.V(0, 0, 8)

	cam := scene.NewCamera(75, 0.1, 100, scene.V(0, 0, 5))
	cam.Aspect = 4.0 / 3
	_, rects := Shapes(scene.Capture("dodge", 1, 0, 0, cam, scene.NewRegistry(near, far, behind)), 640, 480)

	require.Len(t, rects, 2)
	assert.Equal(t, colorObstacle, rects[0].Color)
	assert.Equal(t, colorFocus, rects[1].Color)
	assert.Greater(t, rects[1].Size, rects[0].Size, "nearer objects draw larger")
	assert.InDelta(t, 320, rects[1].X, 1e-9)
	assert.InDelta(t, 240, rects[1].Y, 1e-9)
}

func TestShapesTrackOutline(t *testing.T) {
	seg := scene.NewObject(scene.KindTrackSegment, "track")
	seg.Scale = scene.V(10, 1, 20)
	seg.Position = scene.V(0, 0, -15)

	cam := scene.NewCamera(75, 0.1, 1000, scene.V(0, 2, 5))
	lines, rects := Shapes(scene.Capture("race", 1, 0, 0, cam, scene.NewRegistry(seg)), 640, 480)
	assert.Empty(t, rects)
	assert.Len(t, lines, 4)
}
