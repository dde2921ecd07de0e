// Package loop drives one scene frame by frame: it advances objects,
// recycles what left the play volume, checks the focus for collisions and
// hands a snapshot to the renderer.
package loop

import (
	"context"
	"math/rand"
	"time"

	"github.com/zeusync/trackrun/internal/core/asset"
	"github.com/zeusync/trackrun/internal/core/events/bus"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/core/scene"
	"github.com/zeusync/trackrun/internal/core/systems/movement"
	"github.com/zeusync/trackrun/internal/core/systems/proximity"
	"github.com/zeusync/trackrun/internal/core/systems/recycle"
)

type State uint8

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// DefaultTick is the nominal frame interval objects' speeds are tuned for.
const DefaultTick = time.Second / 60

type pendingAttach struct {
	future *asset.Future
	setup  func(*scene.Object)
}

// Loop is not safe for concurrent use. Hosts call Start, Frame, OnKey,
// Attach and Resize from a single goroutine.
type Loop struct {
	session  *Session
	renderer Renderer
	notifier Notifier
	bus      bus.EventBus
	logger   log.Log

	state        State
	tick         time.Duration
	scaleByDelta bool
	last         time.Duration
	hasLast      bool
	pending      []pendingAttach

	renderErrors uint64
}

type Option func(*Loop)

func WithRenderer(r Renderer) Option { return func(l *Loop) { l.renderer = r } }

func WithNotifier(n Notifier) Option { return func(l *Loop) { l.notifier = n } }

func WithBus(b bus.EventBus) Option { return func(l *Loop) { l.bus = b } }

func WithLogger(logger log.Log) Option { return func(l *Loop) { l.logger = logger } }

// WithTick sets the nominal frame interval. With scale set, movement is
// multiplied by the real frame delta over tick; otherwise every frame
// counts as exactly one tick.
func WithTick(tick time.Duration, scale bool) Option {
	return func(l *Loop) {
		if tick > 0 {
			l.tick = tick
		}
		l.scaleByDelta = scale
	}
}

func New(s *Session, opts ...Option) (*Loop, error) {
	if s == nil {
		return nil, ErrNoRegistry
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	if s.Recycler == nil {
		s.Recycler = recycle.NewPolicy(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	l := &Loop{
		session: s,
		tick:    DefaultTick,
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("loop").With(log.String("scene", s.Name))
	return l, nil
}

func (l *Loop) State() State { return l.state }

func (l *Loop) Session() *Session { return l.session }

func (l *Loop) RenderErrors() uint64 { return l.renderErrors }

// Start moves the loop from Idle to Running. It can only succeed once.
func (l *Loop) Start() error {
	if l.state == StateRunning {
		return ErrAlreadyRunning
	}
	l.state = StateRunning
	l.logger.Info("frame loop started",
		log.Int("objects", l.session.Registry.Len()),
		log.Bool("focus", l.session.Focus.IsPresent()))
	l.publish(EventStarted, l.session.Name)
	return nil
}

// Frame runs one tick. now is a monotonic timestamp from the host; the
// first frame assumes one nominal tick has passed.
func (l *Loop) Frame(ctx context.Context, now time.Duration) error {
	if l.state != StateRunning {
		return ErrNotRunning
	}

	dt := l.tick
	if l.hasLast {
		dt = now - l.last
		if dt < 0 {
			dt = 0
		}
	}
	l.last, l.hasLast = now, true

	ticks := 1.0
	if l.scaleByDelta {
		ticks = float64(dt) / float64(l.tick)
	}

	s := l.session
	l.drainAttaches()

	for _, o := range s.Registry.Objects() {
		movement.Advance(o, s.Bounds, ticks, dt)
	}

	obstacles := 0
	for _, o := range s.Registry.Objects() {
		if s.Recycler.MaybeRecycle(o, s.Bounds) {
			obstacles++
		}
	}
	segments := recycle.RecycleRing(s.Registry, s.Bounds)
	if obstacles > 0 || segments > 0 {
		l.publish(EventRecycled, RecycledEvent{Frame: s.Frames, Obstacles: obstacles, Segments: segments})
	}

	res := proximity.Evaluate(s.Focus, s.Registry.Objects(), s.Threshold)
	if res.Kind == proximity.Collision {
		l.collide(ctx, res)
	} else {
		s.Elapsed += dt.Seconds()
		if s.Elapsed > s.Best {
			s.Best = s.Elapsed
		}
	}
	s.Frames++

	s.Focus.IfPresent(func(f *scene.Object) {
		s.Camera.FollowTarget(f.Position)
	})

	if l.renderer != nil {
		if err := l.renderer.Render(ctx, s.Snapshot()); err != nil {
			l.renderErrors++
			l.logger.Warn("render failed",
				log.Uint64("frame", s.Frames),
				log.Uint64("failures", l.renderErrors),
				log.Error(err))
		}
	}
	return nil
}

// collide resets the run: every collidable object is sent back to the
// spawn volume and the elapsed counter restarts from zero.
func (l *Loop) collide(ctx context.Context, res proximity.Result) {
	s := l.session
	if s.Elapsed > s.Best {
		s.Best = s.Elapsed
	}
	ev := CollisionEvent{
		Scene:     s.Name,
		Frame:     s.Frames,
		Elapsed:   s.Elapsed,
		Best:      s.Best,
		Hits:      res.Hits,
		NearestID: res.NearestID,
	}

	for _, o := range s.Registry.Objects() {
		if o.Collidable && o.Kind != scene.KindFocus {
			s.Recycler.Respawn(o, s.Bounds)
		}
	}
	s.Elapsed = 0
	s.Collisions++

	l.logger.Info("collision",
		log.Uint64("frame", ev.Frame),
		log.Int("hits", ev.Hits),
		log.Float64("nearest", res.Nearest),
		log.Float64("elapsed", ev.Elapsed),
		log.Float64("best", ev.Best))
	l.publish(EventCollision, ev)

	if l.notifier != nil {
		l.notifier.Notify(ctx, ev)
	}
}

// OnKey applies one key press to the focus right away. It reports whether
// the focus changed.
func (l *Loop) OnKey(key string) bool {
	s := l.session
	if s.Mapper == nil {
		return false
	}
	delta, ok := s.Mapper.OnKey(key)
	if !ok || delta.IsZero() {
		return false
	}
	f, present := s.Focus.Get()
	if !present {
		return false
	}
	if delta.Yaw != 0 {
		movement.Turn(f, delta.Yaw)
		return true
	}
	return movement.ApplyStep(f, delta.Step, s.Bounds)
}

// Attach registers a pending asset. Once f resolves, the object is set up
// and added at the start of the following frame.
func (l *Loop) Attach(f *asset.Future, setup func(*scene.Object)) {
	if f == nil {
		return
	}
	l.pending = append(l.pending, pendingAttach{future: f, setup: setup})
}

// Pending reports how many attaches are still waiting on their asset.
func (l *Loop) Pending() int { return len(l.pending) }

func (l *Loop) drainAttaches() {
	if len(l.pending) == 0 {
		return
	}
	s := l.session
	waiting := l.pending[:0]
	for _, p := range l.pending {
		model, ready, err := p.future.Poll()
		if !ready {
			waiting = append(waiting, p)
			continue
		}
		if err != nil || model.Root == nil {
			l.logger.Error("asset not attached",
				log.String("path", p.future.Path()),
				log.Error(err))
			l.publish(EventAttachFailed, AttachedEvent{Path: p.future.Path(), Err: err})
			continue
		}

		root := model.Root
		if p.setup != nil {
			p.setup(root)
		}
		if root.Kind == scene.KindFocus {
			if err := s.SetFocus(root); err != nil {
				l.logger.Warn("focus asset not attached",
					log.String("path", p.future.Path()),
					log.String("name", root.Name),
					log.Error(err))
				l.publish(EventAttachFailed, AttachedEvent{Path: p.future.Path(), Name: root.Name, ID: root.ID, Err: err})
				continue
			}
		} else {
			s.Registry.Add(root)
		}
		l.logger.Info("asset attached",
			log.String("path", p.future.Path()),
			log.String("name", root.Name),
			log.String("kind", root.Kind.String()),
			log.Int("nodes", len(model.Nodes)))
		l.publish(EventAttached, AttachedEvent{Path: p.future.Path(), Name: root.Name, ID: root.ID})
	}
	clear(l.pending[len(waiting):])
	l.pending = waiting
}

// Resize updates the camera aspect for a new display size.
func (l *Loop) Resize(width, height int) {
	if !l.session.Camera.Resize(width, height) {
		return
	}
	l.publish(EventResized, ResizedEvent{Width: width, Height: height, Aspect: l.session.Camera.Aspect})
}

func (l *Loop) publish(eventType string, data any) {
	if l.bus == nil {
		return
	}
	if err := l.bus.Publish(bus.NewEvent(eventType, eventSource, data)); err != nil {
		l.logger.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
