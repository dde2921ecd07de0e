package asset

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/core/scene"
)

const carGLTF = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "Car", "children": [1, 2], "translation": [0, 0.1, 0], "scale": [0.5, 0.5, 0.5]},
    {"name": "Body"},
    {"name": "Wheels", "children": [3]},
    {"name": "WheelFL", "translation": [0.4, 0, 0.6]}
  ],
  "animations": [{"name": "Idle"}, {}]
}`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"models/scene.gltf":  {Data: []byte(carGLTF)},
		"models/broken.gltf": {Data: []byte(`{"asset": {}}`)},
		"models/cycle.gltf": {Data: []byte(`{"asset": {"version": "2.0"}, "scenes": [{"nodes": [0]}],
			"nodes": [{"name": "a", "children": [0]}]}`)},
		"models/car.glb": {Data: []byte{0x67, 0x6c, 0x54, 0x46}},
	}
}

func wait(t *testing.T, f *Future) (Model, error) {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("load of %s never completed", f.Path())
	}
	return f.Wait()
}

func TestLoadGLTF(t *testing.T) {
	l := NewFileLoader(testFS(), log.Nop())
	m, err := wait(t, l.Load(context.Background(), "models/scene.gltf"))
	require.NoError(t, err)

	require.NotNil(t, m.Root)
	assert.Equal(t, "Car", m.Root.Name)
	assert.Equal(t, scene.V(0, 0.1, 0), m.Root.Position)
	assert.Equal(t, scene.V(0.5, 0.5, 0.5), m.Root.Scale)

	names := make([]string, len(m.Nodes))
	for i, n := range m.Nodes {
		names[i] = n.Name
	}
	assert.Equal(t, []string{"Car", "Body", "Wheels", "WheelFL"}, names)
	assert.Equal(t, 2, m.Nodes[3].Depth)
	assert.Equal(t, scene.V(1, 1, 1), m.Nodes[1].Scale)
	assert.Equal(t, []string{"Idle", "animation_1"}, m.Clips)
}

func TestLoadErrors(t *testing.T) {
	l := NewFileLoader(testFS(), log.Nop())

	_, err := wait(t, l.Load(context.Background(), "models/missing.gltf"))
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)

	_, err = wait(t, l.Load(context.Background(), "models/broken.gltf"))
	assert.True(t, errors.Is(err, ErrInvalidModel), "got %v", err)

	_, err = wait(t, l.Load(context.Background(), "models/cycle.gltf"))
	assert.True(t, errors.Is(err, ErrInvalidModel), "got %v", err)

	_, err = wait(t, l.Load(context.Background(), "models/car.glb"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat), "got %v", err)

	_, err = wait(t, l.Load(context.Background(), "/abs/car.gltf"))
	assert.True(t, errors.Is(err, fs.ErrInvalid), "got %v", err)
}

func TestLoadCancelled(t *testing.T) {
	l := NewFileLoader(testFS(), log.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := l.Load(ctx, "models/scene.gltf")
	_, err := wait(t, f)
	// either the read won the race or the cancellation did
	if err != nil {
		assert.True(t, errors.Is(err, context.Canceled))
	}
}

func TestConcurrentLoadsGetDistinctRoots(t *testing.T) {
	l := NewFileLoader(testFS(), log.Nop())
	a := l.Load(context.Background(), "models/scene.gltf")
	b := l.Load(context.Background(), "models/scene.gltf")
	ma, err := wait(t, a)
	require.NoError(t, err)
	mb, err := wait(t, b)
	require.NoError(t, err)
	assert.NotSame(t, ma.Root, mb.Root)
	assert.NotEqual(t, ma.Root.ID, mb.Root.ID)
}

func TestPollAndResolved(t *testing.T) {
	f := newFuture("x")
	_, ready, _ := f.Poll()
	assert.False(t, ready)

	done := Resolved("y", Model{Clips: []string{"run"}}, nil)
	m, ready, err := done.Poll()
	assert.True(t, ready)
	assert.NoError(t, err)
	assert.Equal(t, []string{"run"}, m.Clips)
}
