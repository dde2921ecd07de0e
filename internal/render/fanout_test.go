package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/scene"
)

func snapshotAt(z float64) scene.Snapshot {
	o := scene.NewObject(scene.KindObstacle, "o")
	o.ID = "fixed"
	o.Position = scene.V(0, 0, z)
	return scene.Capture("dodge", 1, 0, 0, scene.Camera{}, scene.NewRegistry(o))
}

func TestFanoutCallsEveryRenderer(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	r := Fanout(
		loop.RendererFunc(func(context.Context, scene.Snapshot) error { order = append(order, "a"); return boom }),
		nil,
		loop.RendererFunc(func(context.Context, scene.Snapshot) error { order = append(order, "b"); return nil }),
	)
	err := r.Render(context.Background(), snapshotAt(1))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestNotifiers(t *testing.T) {
	var got []uint64
	n := Notifiers(
		loop.NotifierFunc(func(_ context.Context, ev loop.CollisionEvent) { got = append(got, ev.Frame) }),
		nil,
		loop.NotifierFunc(func(_ context.Context, ev loop.CollisionEvent) { got = append(got, ev.Frame*10) }),
	)
	n.Notify(context.Background(), loop.CollisionEvent{Frame: 3})
	assert.Equal(t, []uint64{3, 30}, got)
}

func TestDedupeSkipsIdenticalFrames(t *testing.T) {
	calls := 0
	d := &Dedupe{Next: loop.RendererFunc(func(context.Context, scene.Snapshot) error { calls++; return nil })}
	ctx := context.Background()

	require.NoError(t, d.Render(ctx, snapshotAt(1)))
	require.NoError(t, d.Render(ctx, snapshotAt(1)))
	require.NoError(t, d.Render(ctx, snapshotAt(2)))
	assert.Equal(t, 2, calls)
	assert.EqualValues(t, 1, d.Skipped())
}
