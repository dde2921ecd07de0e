package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/trackrun/internal/core/scene"
)

func TestDefaultPresets(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"cube", "dodge", "race"}, c.Names())
	assert.Equal(t, 60, c.Server.TickHz)

	dodge, err := c.Scene("dodge")
	require.NoError(t, err)
	assert.Equal(t, 0.35, dodge.Threshold)
	require.NotNil(t, dodge.Obstacles)
	assert.Equal(t, 5, dodge.Obstacles.Count)
	b := dodge.SceneBounds()
	assert.Equal(t, scene.AxisZ, b.TravelAxis)
	assert.Equal(t, -1.0, b.Direction)
	assert.Equal(t, scene.Between(-2, 2), b.X)
	assert.Len(t, dodge.Keys, 4)

	race, err := c.Scene("race")
	require.NoError(t, err)
	require.NotNil(t, race.Track)
	assert.Equal(t, 20.0, race.SceneBounds().SegmentLength)
	assert.Equal(t, "models/scene.gltf", race.Focus.Model)
	assert.Equal(t, 0.5, race.Focus.Scale)
	assert.Len(t, race.Decorations, 5)
	assert.Equal(t, scene.V(1, 1, 1), race.Decorations[0].Scale)

	cube, err := c.Scene("cube")
	require.NoError(t, err)
	assert.Nil(t, cube.Focus)
	assert.Equal(t, scene.V(1, 1, 0), cube.Decorations[0].Spin)
}

func TestUnknownScene(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	_, err = c.Scene("kart")
	assert.ErrorIs(t, err, ErrUnknownScene)
}

func TestUserFileOverridesAndAdds(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(`
server:
  tick_hz: 30
scenes:
  dodge:
    threshold: 1
    bounds:
      travel_axis: z
      direction: -1
  tunnel:
    threshold: 0.2
    bounds:
      x: {min: -1, max: 1, limited: true}
      travel_axis: z
      exit_at: -3
      spawn_near: 4
      spawn_far: 9
    obstacles: {count: 3, speed: 0.1}
`))
	require.NoError(t, err)
	assert.Equal(t, 30, c.Server.TickHz)
	assert.Equal(t, ":8080", c.Server.HTTPAddr, "unset fields keep built-in values")
	assert.Equal(t, []string{"cube", "dodge", "race", "tunnel"}, c.Names())

	dodge, err := c.Scene("dodge")
	require.NoError(t, err)
	assert.Nil(t, dodge.Obstacles, "a scene is replaced as a whole")

	tunnel, err := c.Scene("tunnel")
	require.NoError(t, err)
	assert.Equal(t, -1.0, tunnel.Bounds.Direction)
	assert.Equal(t, 75.0, tunnel.Camera.FOV)
}

func TestValidation(t *testing.T) {
	cases := map[string]string{
		"min above max": `
scenes:
  bad:
    threshold: 1
    bounds: {x: {min: 3, max: 1, limited: true}, travel_axis: z}`,
		"zero threshold": `
scenes:
  bad:
    threshold: 0
    bounds: {travel_axis: z}`,
		"track without length": `
scenes:
  bad:
    threshold: 1
    bounds: {travel_axis: z, direction: 1}
    track: {count: 3}`,
		"empty spawn range": `
scenes:
  bad:
    threshold: 1
    bounds: {travel_axis: z, spawn_near: 5, spawn_far: 5}
    obstacles: {count: 2}`,
		"step key without step": `
scenes:
  bad:
    threshold: 1
    bounds: {travel_axis: z}
    keys: [{key: ArrowLeft, axis: x, sign: -1}]`,
		"focus outside bounds": `
scenes:
  bad:
    threshold: 1
    bounds: {x: {min: -2, max: 2, limited: true}, travel_axis: z}
    focus: {name: player, position: {x: 5, y: 0, z: 0}}`,
		"negative tick": `
server: {tick_hz: -1}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestFocusMustStartInsideBounds(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	sc, err := cfg.Scene("dodge")
	require.NoError(t, err)
	require.NotNil(t, sc.Focus)
	require.NoError(t, sc.Validate())

	focus := *sc.Focus
	focus.Position = scene.V(5, 0, 0)
	sc.Focus = &focus
	assert.ErrorIs(t, sc.Validate(), ErrInvalid)

	focus.Position = scene.V(2, -1, 0)
	assert.NoError(t, sc.Validate(), "bounds are inclusive")
}

func TestRejectsUnknownFields(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("server:\n  tickhz: 30\n"))
	assert.Error(t, err)

	_, err = LoadYAML(strings.NewReader("scenes:\n  x:\n    threshold: 1\n    bounds: {travel_axis: w}\n"))
	assert.ErrorIs(t, err, scene.ErrUnknownAxis)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
