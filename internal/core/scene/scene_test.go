package scene

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(kind Kind, name string) *Object {
	return NewObject(kind, name)
}

func TestRegistryRotateKindKeepsOtherSlots(t *testing.T) {
	a := named(KindTrackSegment, "a")
	tree := named(KindDecoration, "tree")
	b := named(KindTrackSegment, "b")
	c := named(KindTrackSegment, "c")
	reg := NewRegistry(a, tree, b, c)

	reg.RotateKind(KindTrackSegment)

	got := reg.Objects()
	require.Len(t, got, 4)
	assert.Equal(t, []string{"b", "tree", "c", "a"}, []string{got[0].Name, got[1].Name, got[2].Name, got[3].Name})
	assert.Equal(t, []*Object{b, c, a}, reg.OfKind(KindTrackSegment))
}

func TestRegistryAddIgnoresDuplicatesAndNil(t *testing.T) {
	a := named(KindObstacle, "a")
	reg := NewRegistry(a)
	reg.Add(a)
	reg.Add(nil)

	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, map[Kind]int{KindObstacle: 1}, reg.Counts())
	assert.Equal(t, []*Object{a}, reg.OfKind(KindObstacle))
}

func TestOptional(t *testing.T) {
	absent := Absent[*Object]()
	_, ok := absent.Get()
	assert.False(t, ok)
	absent.IfPresent(func(*Object) { t.Fatal("called on absent value") })

	o := named(KindFocus, "player")
	present := Present(o)
	got, ok := present.Get()
	assert.True(t, ok)
	assert.Same(t, o, got)

	calls := 0
	present.IfPresent(func(*Object) { calls++ })
	assert.Equal(t, 1, calls)
}

func TestBoundsValidate(t *testing.T) {
	ok := Bounds{X: Between(-2, 2), Direction: -1, SpawnNear: 2, SpawnFar: 7}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.X = Range{Min: 3, Max: 1, Limited: true}
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidBounds))

	bad = ok
	bad.Direction = 0
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidBounds))

	bad = ok
	bad.SpawnNear, bad.SpawnFar = 7, 2
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidBounds))
}

func TestBoundsLateralAxes(t *testing.T) {
	assert.Equal(t, [2]Axis{AxisX, AxisY}, Bounds{TravelAxis: AxisZ}.LateralAxes())
	assert.Equal(t, [2]Axis{AxisY, AxisZ}, Bounds{TravelAxis: AxisX}.LateralAxes())
}

func TestCameraProjectCenter(t *testing.T) {
	cam := NewCamera(90, 0.1, 100, V(0, 0, 5))
	require.True(t, cam.Resize(200, 100))

	p, ok := cam.Project(V(0, 0, 0), 200, 100)
	require.True(t, ok)
	assert.InDelta(t, 100, p.X, 1e-9)
	assert.InDelta(t, 50, p.Y, 1e-9)
	assert.InDelta(t, 5, p.Depth, 1e-9)
	// tan(45deg) = 1, so one unit at depth 5 spans h/2/5 pixels
	assert.InDelta(t, 10, p.PixelsPerUnit, 1e-9)

	_, ok = cam.Project(V(0, 0, 10), 200, 100)
	assert.False(t, ok, "points behind the camera are not visible")

	assert.False(t, cam.Resize(10, 0))
	assert.InDelta(t, 2, cam.Aspect, 1e-9)
}

func TestCameraFollow(t *testing.T) {
	cam := NewCamera(75, 0.1, 1000, V(0, 2, 5))
	cam.FollowTarget(V(1, 0, -3))
	assert.Equal(t, V(0, 2, 5), cam.Position, "follow disabled without an offset")

	cam.Follow = V(0, 2, 5)
	cam.FollowTarget(V(1, 0, -3))
	assert.Equal(t, V(1, 2, 2), cam.Position)
	assert.Equal(t, V(1, 0, -3), cam.Target)
}

func TestSnapshotFingerprint(t *testing.T) {
	o := named(KindObstacle, "o")
	o.Position = V(1, 2, 3)
	reg := NewRegistry(o)
	cam := NewCamera(75, 0.1, 100, V(0, 0, 5))

	a := Capture("dodge", 1, 0.5, 0, cam, reg)
	b := Capture("dodge", 2, 0.6, 0, cam, reg)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "frame counters do not affect the fingerprint")

	o.Position.Z -= 0.05
	c := Capture("dodge", 3, 0.7, 0, cam, reg)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Equal(t, V(1, 2, 3), a.Objects[0].Position, "snapshots are copies")
}

func TestSnapshotJSONKind(t *testing.T) {
	o := named(KindTrackSegment, "seg")
	snap := Capture("race", 0, 0, 0, Camera{}, NewRegistry(o))
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"kind":"track-segment"`)

	var back Snapshot
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, KindTrackSegment, back.Objects[0].Kind)
}

func TestVec3(t *testing.T) {
	assert.InDelta(t, 5, V(0, 3, 4).DistanceTo(Vec3{}), 1e-12)
	assert.Equal(t, V(0, -1, 0), Unit(AxisY, -1))
	assert.Equal(t, V(1, 9, 3), V(1, 2, 3).With(AxisY, 9))
	assert.False(t, V(math.NaN(), 0, 0).IsFinite())
	assert.True(t, V(1, 2, 3).IsFinite())
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis("Z")
	require.NoError(t, err)
	assert.Equal(t, AxisZ, a)

	_, err = ParseAxis("w")
	assert.ErrorIs(t, err, ErrUnknownAxis)

	var b Axis
	require.NoError(t, b.UnmarshalText([]byte("y")))
	assert.Equal(t, AxisY, b)
}
