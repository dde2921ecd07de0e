package scene

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind selects which policies apply to an object.
type Kind uint8

const (
	KindDecoration Kind = iota
	KindFocus
	KindObstacle
	KindTrackSegment
)

var ErrUnknownKind = errors.New("unknown object kind")

func (k Kind) String() string {
	switch k {
	case KindDecoration:
		return "decoration"
	case KindFocus:
		return "focus"
	case KindObstacle:
		return "obstacle"
	case KindTrackSegment:
		return "track-segment"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "decoration", "static-decoration":
		return KindDecoration, nil
	case "focus":
		return KindFocus, nil
	case "obstacle":
		return KindObstacle, nil
	case "track-segment", "segment":
		return KindTrackSegment, nil
	default:
		return KindDecoration, errors.Wrapf(ErrUnknownKind, "%q", s)
	}
}

// MarshalText lets kinds travel as strings in snapshots.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Object is a movable entity drawn by the renderer. Objects are never
// destroyed during a session; recycling resets their position in place.
type Object struct {
	ID       string
	Name     string
	Kind     Kind
	Position Vec3
	Rotation Vec3
	Scale    Vec3

	// Speed is the distance travelled along the travel axis per tick.
	Speed float64
	// Spin is the angular velocity in radians per second.
	Spin Vec3

	Collidable bool
}

func NewObject(kind Kind, name string) *Object {
	return &Object{
		ID:    uuid.NewString(),
		Name:  name,
		Kind:  kind,
		Scale: Vec3{1, 1, 1},
	}
}

// Clone copies o under a fresh ID.
func (o *Object) Clone() *Object {
	c := *o
	c.ID = uuid.NewString()
	return &c
}
