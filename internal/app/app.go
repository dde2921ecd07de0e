// Package app turns a scene preset into a ready-to-start frame loop.
package app

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/config"
	"github.com/zeusync/trackrun/internal/core/asset"
	"github.com/zeusync/trackrun/internal/core/events/bus"
	"github.com/zeusync/trackrun/internal/core/input"
	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/core/scene"
	"github.com/zeusync/trackrun/internal/core/systems/recycle"
)

// Options carries the collaborators a loop is wired with. Nil fields are
// left out; a nil Loader means model-backed focus objects never appear.
type Options struct {
	Logger       log.Log
	Bus          bus.EventBus
	Loader       asset.Loader
	Renderer     loop.Renderer
	Notifier     loop.Notifier
	Tick         time.Duration
	ScaleByDelta bool
}

// NewMapper builds the key bindings of a preset.
func NewMapper(sc config.SceneConfig) (*input.Mapper, error) {
	bindings := make([]input.Binding, len(sc.Keys))
	for i, k := range sc.Keys {
		bindings[i] = input.Binding{Key: k.Key, Axis: k.Axis, Sign: k.Sign, Turn: k.Turn}
	}
	return input.NewMapper(sc.Step, sc.Turn, bindings...)
}

// NewSession builds the initial scene state for a preset. A focus with a
// model is not created here; see Build.
func NewSession(name string, sc config.SceneConfig) (*loop.Session, error) {
	if err := sc.Validate(); err != nil {
		return nil, errors.Wrapf(err, "scene %s", name)
	}

	mapper, err := NewMapper(sc)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %s", name)
	}

	seed := sc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	recycler := recycle.NewPolicy(rand.New(rand.NewSource(seed)))

	b := sc.SceneBounds()
	cam := scene.NewCamera(sc.Camera.FOV, sc.Camera.Near, sc.Camera.Far, sc.Camera.Position)
	cam.Target = sc.Camera.Target
	cam.Follow = sc.Camera.Follow

	reg := scene.NewRegistry()
	s := &loop.Session{
		Name:      name,
		Registry:  reg,
		Focus:     scene.Absent[*scene.Object](),
		Bounds:    b,
		Camera:    cam,
		Threshold: sc.Threshold,
		Mapper:    mapper,
		Recycler:  recycler,
	}

	if t := sc.Track; t != nil && t.Count > 0 {
		segments := make([]*scene.Object, t.Count)
		for i := range segments {
			seg := scene.NewObject(scene.KindTrackSegment, "track")
			seg.Scale = scene.V(t.Width, 1, t.Length)
			seg.Speed = t.Speed
			segments[i] = seg
			reg.Add(seg)
		}
		recycle.LayRing(segments, b, t.Start)
	}

	for _, d := range sc.Decorations {
		o := scene.NewObject(d.Kind, d.Name)
		o.Position = d.Position
		o.Rotation = d.Rotation
		o.Scale = d.Scale
		o.Spin = d.Spin
		o.Speed = d.Speed
		o.Collidable = d.Collidable
		reg.Add(o)
	}

	if ob := sc.Obstacles; ob != nil {
		for i := 0; i < ob.Count; i++ {
			o := scene.NewObject(scene.KindObstacle, ob.Name)
			o.Speed = ob.Speed
			o.Collidable = true
			recycler.Respawn(o, b)
			reg.Add(o)
		}
	}

	if f := sc.Focus; f != nil && f.Model == "" {
		o := scene.NewObject(scene.KindFocus, f.Name)
		placeFocus(o, *f)
		if err := s.SetFocus(o); err != nil {
			return nil, err
		}
		s.Camera.FollowTarget(o.Position)
	}
	return s, nil
}

// Build creates the loop for a preset. A model-backed focus is requested
// from the loader and attached by the loop once it arrives.
func Build(ctx context.Context, name string, sc config.SceneConfig, opts Options) (*loop.Loop, error) {
	s, err := NewSession(name, sc)
	if err != nil {
		return nil, err
	}

	loopOpts := []loop.Option{loop.WithTick(opts.Tick, opts.ScaleByDelta)}
	if opts.Logger != nil {
		loopOpts = append(loopOpts, loop.WithLogger(opts.Logger))
	}
	if opts.Bus != nil {
		loopOpts = append(loopOpts, loop.WithBus(opts.Bus))
	}
	if opts.Renderer != nil {
		loopOpts = append(loopOpts, loop.WithRenderer(opts.Renderer))
	}
	if opts.Notifier != nil {
		loopOpts = append(loopOpts, loop.WithNotifier(opts.Notifier))
	}

	l, err := loop.New(s, loopOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %s", name)
	}

	if f := sc.Focus; f != nil && f.Model != "" && opts.Loader != nil {
		fc := *f
		l.Attach(opts.Loader.Load(ctx, fc.Model), func(o *scene.Object) {
			o.Kind = scene.KindFocus
			placeFocus(o, fc)
		})
	}
	return l, nil
}

func placeFocus(o *scene.Object, f config.FocusConfig) {
	if f.Name != "" {
		o.Name = f.Name
	}
	o.Position = f.Position
	o.Rotation = f.Rotation
	if f.Scale > 0 {
		o.Scale = scene.V(f.Scale, f.Scale, f.Scale)
	}
}
