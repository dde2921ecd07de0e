package loop

import (
	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/core/input"
	"github.com/zeusync/trackrun/internal/core/scene"
	"github.com/zeusync/trackrun/internal/core/systems/recycle"
)

// Session is all mutable state of one running scene. It is owned by the
// loop goroutine.
type Session struct {
	Name      string
	Registry  *scene.Registry
	Focus     scene.Optional[*scene.Object]
	Bounds    scene.Bounds
	Camera    scene.Camera
	Threshold float64
	Mapper    *input.Mapper
	Recycler  *recycle.Policy

	// Elapsed is seconds since the last collision; Best is the longest
	// such run seen so far.
	Elapsed    float64
	Best       float64
	Frames     uint64
	Collisions uint64
}

func (s *Session) validate() error {
	if s.Registry == nil {
		return ErrNoRegistry
	}
	if s.Threshold <= 0 {
		return ErrBadThreshold
	}
	return s.Bounds.Validate()
}

// Snapshot captures the current frame for renderers.
func (s *Session) Snapshot() scene.Snapshot {
	return scene.Capture(s.Name, s.Frames, s.Elapsed, s.Best, s.Camera, s.Registry)
}

// SetFocus makes o the focus and registers it. A session holds at most one
// focus, so replacing a present focus with another object fails.
func (s *Session) SetFocus(o *scene.Object) error {
	if o == nil {
		return nil
	}
	if cur, ok := s.Focus.Get(); ok && cur != o {
		return errors.Wrapf(ErrFocusPresent, "%s already focused, refusing %s", cur.Name, o.Name)
	}
	o.Kind = scene.KindFocus
	s.Registry.Add(o)
	s.Focus = scene.Present(o)
	return nil
}
