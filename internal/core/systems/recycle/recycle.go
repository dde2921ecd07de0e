// Package recycle puts objects that left the active region back into
// circulation instead of destroying them.
package recycle

import (
	"math/rand"

	"github.com/zeusync/trackrun/internal/core/scene"
)

// Policy repositions obstacles. It keeps its own random source so tests
// can seed it.
type Policy struct {
	rng *rand.Rand
}

func NewPolicy(rng *rand.Rand) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Policy{rng: rng}
}

// Exited reports whether o has strictly passed the exit threshold in the
// travel direction.
func Exited(o *scene.Object, b scene.Bounds) bool {
	v := o.Position.Get(b.TravelAxis)
	if b.Direction < 0 {
		return v < b.ExitAt
	}
	return v > b.ExitAt
}

// MaybeRecycle respawns an obstacle that exited the bounds. Objects of other
// kinds are left alone; track segments are handled by Ring.
func (p *Policy) MaybeRecycle(o *scene.Object, b scene.Bounds) bool {
	if o == nil || o.Kind != scene.KindObstacle || !Exited(o, b) {
		return false
	}
	p.Respawn(o, b)
	return true
}

// Respawn gives o a uniformly random lateral position inside the limited
// lateral ranges and a depth in [SpawnNear, SpawnFar). Unlimited lateral
// axes keep their current value.
func (p *Policy) Respawn(o *scene.Object, b scene.Bounds) {
	pos := o.Position
	for _, axis := range b.LateralAxes() {
		r := b.Range(axis)
		if r.Limited {
			pos = pos.With(axis, p.uniform(r.Min, r.Max))
		}
	}
	pos = pos.With(b.TravelAxis, p.uniform(b.SpawnNear, b.SpawnFar))
	o.Position = pos
}

func (p *Policy) uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + p.rng.Float64()*(max-min)
}
