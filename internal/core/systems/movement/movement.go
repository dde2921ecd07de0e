// Package movement holds the per-kind rules for how positions change.
package movement

import (
	"time"

	"github.com/zeusync/trackrun/internal/core/scene"
)

// Advance moves a non-focus object one step along the travel axis and
// applies its spin. ticks is the number of nominal frames represented by
// this step (1 for frame-locked loops). Exit checks belong to recycling.
func Advance(o *scene.Object, b scene.Bounds, ticks float64, dt time.Duration) {
	if o == nil || o.Kind == scene.KindFocus {
		return
	}
	if o.Speed != 0 {
		axis := b.TravelAxis
		o.Position = o.Position.With(axis, o.Position.Get(axis)+b.Direction*o.Speed*ticks)
	}
	if o.Spin != (scene.Vec3{}) {
		o.Rotation = o.Rotation.Add(o.Spin.Scale(dt.Seconds()))
	}
}

// ApplyStep moves o by step if the result stays inside every limited axis
// of b. A step that would leave the bounds is discarded whole, never
// partially applied.
func ApplyStep(o *scene.Object, step scene.Vec3, b scene.Bounds) bool {
	if o == nil {
		return false
	}
	next := o.Position.Add(step)
	if !next.IsFinite() || !b.Contains(next) {
		return false
	}
	o.Position = next
	return true
}

// Turn rotates o about the vertical axis.
func Turn(o *scene.Object, yaw float64) {
	if o == nil {
		return
	}
	o.Rotation.Y += yaw
}
