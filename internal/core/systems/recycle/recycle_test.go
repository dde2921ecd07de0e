package recycle

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/trackrun/internal/core/scene"
	"github.com/zeusync/trackrun/internal/core/systems/movement"
)

func dodgeBounds() scene.Bounds {
	return scene.Bounds{
		X:          scene.Between(-2, 2),
		Y:          scene.Between(-1, 1),
		TravelAxis: scene.AxisZ,
		Direction:  -1,
		ExitAt:     -2,
		SpawnNear:  2,
		SpawnFar:   7,
	}
}

func trackBounds() scene.Bounds {
	return scene.Bounds{
		X:             scene.Between(-5, 5),
		TravelAxis:    scene.AxisZ,
		Direction:     1,
		ExitAt:        20,
		SegmentLength: 20,
	}
}

func TestExitedIsStrict(t *testing.T) {
	b := dodgeBounds()
	o := scene.NewObject(scene.KindObstacle, "o")

	o.Position.Z = -2
	assert.False(t, Exited(o, b))
	o.Position.Z = -2.01
	assert.True(t, Exited(o, b))

	tb := trackBounds()
	o.Position.Z = 20
	assert.False(t, Exited(o, tb))
	o.Position.Z = 20.5
	assert.True(t, Exited(o, tb))
}

func TestMaybeRecycleRespawnsInsideSpawnVolume(t *testing.T) {
	b := dodgeBounds()
	p := NewPolicy(rand.New(rand.NewSource(1)))
	o := scene.NewObject(scene.KindObstacle, "o")
	o.Position = scene.V(0, 0, -2.01)

	require.True(t, p.MaybeRecycle(o, b))
	assert.GreaterOrEqual(t, o.Position.Z, 2.0)
	assert.Less(t, o.Position.Z, 7.0)
	assert.True(t, b.X.Contains(o.Position.X))
	assert.True(t, b.Y.Contains(o.Position.Y))

	before := o.Position
	assert.False(t, p.MaybeRecycle(o, b), "inside bounds, nothing to do")
	assert.Equal(t, before, o.Position)
}

func TestMaybeRecycleIgnoresOtherKinds(t *testing.T) {
	p := NewPolicy(rand.New(rand.NewSource(1)))
	tree := scene.NewObject(scene.KindDecoration, "tree")
	tree.Position.Z = -10
	assert.False(t, p.MaybeRecycle(tree, dodgeBounds()))
	assert.Equal(t, -10.0, tree.Position.Z)
}

func TestRespawnKeepsUnlimitedLateralAxes(t *testing.T) {
	b := dodgeBounds()
	b.Y = scene.Range{}
	p := NewPolicy(rand.New(rand.NewSource(3)))
	o := scene.NewObject(scene.KindObstacle, "o")
	o.Position = scene.V(0, 42, -5)

	p.Respawn(o, b)
	assert.Equal(t, 42.0, o.Position.Y)
}

func TestObstacleCountClosedUnderRecycling(t *testing.T) {
	b := dodgeBounds()
	p := NewPolicy(rand.New(rand.NewSource(11)))
	reg := scene.NewRegistry()
	for i := 0; i < 5; i++ {
		o := scene.NewObject(scene.KindObstacle, "o")
		o.Speed = 0.05
		p.Respawn(o, b)
		reg.Add(o)
	}
	ids := make(map[string]bool)
	for _, o := range reg.Objects() {
		ids[o.ID] = true
	}

	recycled := 0
	for frame := 0; frame < 2000; frame++ {
		for _, o := range reg.Objects() {
			movement.Advance(o, b, 1, 16*time.Millisecond)
			if p.MaybeRecycle(o, b) {
				recycled++
			}
		}
		require.Equal(t, 5, reg.Count(scene.KindObstacle))
	}
	assert.Greater(t, recycled, 0)
	for _, o := range reg.Objects() {
		assert.True(t, ids[o.ID], "objects are recycled in place, never replaced")
	}
}

func newTrack(n int, b scene.Bounds) (*scene.Registry, []*scene.Object) {
	reg := scene.NewRegistry()
	segs := make([]*scene.Object, n)
	for i := range segs {
		segs[i] = scene.NewObject(scene.KindTrackSegment, "segment")
		segs[i].Speed = 0.5
		reg.Add(segs[i])
	}
	LayRing(segs, b, 0)
	return reg, segs
}

func TestRecycleRingPlacesSegmentBehindFarthest(t *testing.T) {
	b := trackBounds()
	reg, segs := newTrack(5, b)
	assert.Equal(t, -80.0, segs[4].Position.Z)

	segs[0].Position.Z = 20.5
	farthest := segs[4].Position.Z

	require.Equal(t, 1, RecycleRing(reg, b))
	assert.Equal(t, farthest-b.SegmentLength, segs[0].Position.Z)

	ring := reg.OfKind(scene.KindTrackSegment)
	assert.Same(t, segs[1], ring[0], "next segment becomes the front")
	assert.Same(t, segs[0], ring[4], "recycled segment becomes the farthest")

	assert.Equal(t, 0, RecycleRing(reg, b))
}

func TestRecycleRingStaysContiguous(t *testing.T) {
	b := trackBounds()
	reg, _ := newTrack(5, b)

	crossings := 0
	for frame := 0; frame < 1000; frame++ {
		for _, s := range reg.OfKind(scene.KindTrackSegment) {
			movement.Advance(s, b, 1, 16*time.Millisecond)
		}
		crossings += RecycleRing(reg, b)

		ring := reg.OfKind(scene.KindTrackSegment)
		require.Len(t, ring, 5)
		zs := make([]float64, len(ring))
		for i, s := range ring {
			zs[i] = s.Position.Z
			if i > 0 {
				assert.InDelta(t, ring[i-1].Position.Z-b.SegmentLength, s.Position.Z, 1e-6, "ring order follows the travel axis")
			}
		}
		sort.Float64s(zs)
		for i := 1; i < len(zs); i++ {
			assert.InDelta(t, b.SegmentLength, zs[i]-zs[i-1], 1e-6, "gap in ring at frame %d", frame)
		}
		assert.LessOrEqual(t, zs[len(zs)-1], b.ExitAt)
	}
	assert.Greater(t, crossings, 0)
}

func TestRecycleRingOneSegmentPerCrossing(t *testing.T) {
	b := trackBounds()
	reg, segs := newTrack(3, b)
	// a long stall puts two segments past the exit at once
	for _, s := range segs {
		s.Position.Z += 45
	}
	// z: 45, 25, 5
	assert.Equal(t, 2, RecycleRing(reg, b))
	ring := reg.OfKind(scene.KindTrackSegment)
	assert.Equal(t, []float64{5, -15, -35}, []float64{ring[0].Position.Z, ring[1].Position.Z, ring[2].Position.Z})
}

func TestRecycleRingWithoutSegments(t *testing.T) {
	assert.Equal(t, 0, RecycleRing(scene.NewRegistry(), trackBounds()))
	b := trackBounds()
	b.SegmentLength = 0
	reg, _ := newTrack(2, trackBounds())
	assert.Equal(t, 0, RecycleRing(reg, b))
}
