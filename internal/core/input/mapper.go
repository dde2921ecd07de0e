// Package input turns discrete key presses into movement of the focus object.
package input

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/core/scene"
)

// Key names follow the browser KeyboardEvent.key values; hosts translate
// their native codes into these.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
)

var ErrInvalidBinding = errors.New("invalid key binding")

// Binding maps one key to a unit step along an axis, or to a yaw turn when
// Turn is set.
type Binding struct {
	Key  string
	Axis scene.Axis
	Sign float64
	Turn bool
}

// Delta is the effect of one key press.
type Delta struct {
	Step scene.Vec3
	Yaw  float64
}

func (d Delta) IsZero() bool {
	return d.Step == (scene.Vec3{}) && d.Yaw == 0
}

type Mapper struct {
	bindings map[string]Binding
	step     float64
	turn     float64
}

// NewMapper builds a mapper where each bound key moves by step units or
// turns by turn radians.
func NewMapper(step, turn float64, bindings ...Binding) (*Mapper, error) {
	m := &Mapper{
		bindings: make(map[string]Binding, len(bindings)),
		step:     step,
		turn:     turn,
	}
	for _, b := range bindings {
		if b.Key == "" {
			return nil, errors.Wrap(ErrInvalidBinding, "empty key")
		}
		if b.Sign != 1 && b.Sign != -1 {
			return nil, errors.Wrapf(ErrInvalidBinding, "key %s: sign must be +1 or -1", b.Key)
		}
		if _, dup := m.bindings[b.Key]; dup {
			return nil, errors.Wrapf(ErrInvalidBinding, "key %s bound twice", b.Key)
		}
		m.bindings[b.Key] = b
	}
	return m, nil
}

// ArrowKeys binds the arrow keys to the two given axes: left/right on
// horizontal, up/down on vertical.
func ArrowKeys(horizontal, vertical scene.Axis, verticalSign float64) []Binding {
	return []Binding{
		{Key: KeyArrowLeft, Axis: horizontal, Sign: -1},
		{Key: KeyArrowRight, Axis: horizontal, Sign: 1},
		{Key: KeyArrowUp, Axis: vertical, Sign: verticalSign},
		{Key: KeyArrowDown, Axis: vertical, Sign: -verticalSign},
	}
}

// OnKey returns the delta for key. Unrecognised keys report false.
func (m *Mapper) OnKey(key string) (Delta, bool) {
	b, ok := m.bindings[key]
	if !ok {
		return Delta{}, false
	}
	if b.Turn {
		return Delta{Yaw: b.Sign * m.turn}, true
	}
	return Delta{Step: scene.Unit(b.Axis, b.Sign*m.step)}, true
}

// Keys lists the bound key names in sorted order.
func (m *Mapper) Keys() []string {
	out := make([]string, 0, len(m.bindings))
	for k := range m.bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
