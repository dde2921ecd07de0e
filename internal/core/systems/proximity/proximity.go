// Package proximity measures how close the focus object is to everything it
// can collide with.
package proximity

import (
	"math"

	"github.com/zeusync/trackrun/internal/core/scene"
)

type Kind uint8

const (
	None Kind = iota
	Collision
)

func (k Kind) String() string {
	if k == Collision {
		return "collision"
	}
	return "none"
}

// Result is at most one trigger per evaluation. Hits counts how many objects
// were inside the threshold; Nearest is +Inf when nothing was measured.
type Result struct {
	Kind      Kind
	Hits      int
	Nearest   float64
	NearestID string
}

// Evaluate compares the focus position with every collidable non-focus
// object. It fires Collision when any distance is strictly below threshold.
// An absent focus never fires.
func Evaluate(focus scene.Optional[*scene.Object], objects []*scene.Object, threshold float64) Result {
	res := Result{Kind: None, Nearest: math.Inf(1)}
	f, ok := focus.Get()
	if !ok || f == nil {
		return res
	}

	for _, o := range objects {
		if o == f || o.Kind == scene.KindFocus || !o.Collidable {
			continue
		}
		d := f.Position.DistanceTo(o.Position)
		if d < res.Nearest {
			res.Nearest = d
			res.NearestID = o.ID
		}
		if d < threshold {
			res.Hits++
		}
	}
	if res.Hits > 0 {
		res.Kind = Collision
	}
	return res
}
