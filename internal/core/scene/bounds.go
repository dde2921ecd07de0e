package scene

import (
	"math"

	"github.com/pkg/errors"
)

var ErrInvalidBounds = errors.New("invalid bounds")

// Range is an inclusive interval. An unlimited range accepts any value.
type Range struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Limited bool    `yaml:"limited"`
}

func Between(min, max float64) Range {
	return Range{Min: min, Max: max, Limited: true}
}

func (r Range) Contains(v float64) bool {
	if !r.Limited {
		return true
	}
	return v >= r.Min && v <= r.Max
}

// Bounds is the static travel configuration of a scene.
type Bounds struct {
	X, Y, Z Range

	// TravelAxis is the axis obstacles and track segments move along.
	TravelAxis Axis
	// Direction is +1 or -1, the sign of movement along TravelAxis.
	Direction float64
	// ExitAt is the travel coordinate an object must strictly pass, in
	// Direction, to be recycled.
	ExitAt float64
	// SpawnNear and SpawnFar bound the respawn depth of obstacles.
	SpawnNear, SpawnFar float64
	// SegmentLength is the spacing of the track ring.
	SegmentLength float64
}

func (b Bounds) Range(a Axis) Range {
	switch a {
	case AxisX:
		return b.X
	case AxisY:
		return b.Y
	default:
		return b.Z
	}
}

// Contains reports whether p lies within every limited axis.
func (b Bounds) Contains(p Vec3) bool {
	return b.X.Contains(p.X) && b.Y.Contains(p.Y) && b.Z.Contains(p.Z)
}

// LateralAxes are the two axes orthogonal to the travel axis.
func (b Bounds) LateralAxes() [2]Axis {
	switch b.TravelAxis {
	case AxisX:
		return [2]Axis{AxisY, AxisZ}
	case AxisY:
		return [2]Axis{AxisX, AxisZ}
	default:
		return [2]Axis{AxisX, AxisY}
	}
}

func (b Bounds) Validate() error {
	for _, a := range []Axis{AxisX, AxisY, AxisZ} {
		r := b.Range(a)
		if r.Limited && r.Min > r.Max {
			return errors.Wrapf(ErrInvalidBounds, "axis %s: min %v > max %v", a, r.Min, r.Max)
		}
	}
	if b.Direction != 1 && b.Direction != -1 {
		return errors.Wrapf(ErrInvalidBounds, "direction must be +1 or -1, got %v", b.Direction)
	}
	if b.SpawnNear > b.SpawnFar {
		return errors.Wrapf(ErrInvalidBounds, "spawn near %v > far %v", b.SpawnNear, b.SpawnFar)
	}
	if b.SegmentLength < 0 || math.IsNaN(b.SegmentLength) {
		return errors.Wrapf(ErrInvalidBounds, "segment length %v", b.SegmentLength)
	}
	return nil
}
