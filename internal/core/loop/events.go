package loop

import (
	"context"

	"github.com/zeusync/trackrun/internal/core/scene"
)

// Event types published on the bus.
const (
	EventCollision    = "loop.collision"
	EventRecycled     = "loop.recycled"
	EventAttached     = "loop.attached"
	EventAttachFailed = "loop.attach_failed"
	EventResized      = "loop.resized"
	EventStarted      = "loop.started"
)

const eventSource = "frame-loop"

// CollisionEvent describes the frame on which the focus touched something.
// Elapsed is the run time that just ended.
type CollisionEvent struct {
	Scene     string
	Frame     uint64
	Elapsed   float64
	Best      float64
	Hits      int
	NearestID string
}

type RecycledEvent struct {
	Frame     uint64
	Obstacles int
	Segments  int
}

type AttachedEvent struct {
	Path string
	Name string
	ID   string
	Err  error
}

type ResizedEvent struct {
	Width, Height int
	Aspect        float64
}

// Renderer receives one snapshot per frame. It is called on the loop's
// goroutine and must not block for long.
type Renderer interface {
	Render(ctx context.Context, snap scene.Snapshot) error
}

type RendererFunc func(ctx context.Context, snap scene.Snapshot) error

func (f RendererFunc) Render(ctx context.Context, snap scene.Snapshot) error { return f(ctx, snap) }

// Notifier surfaces a collision to the user. It may block; the loop waits
// for it before continuing the frame.
type Notifier interface {
	Notify(ctx context.Context, ev CollisionEvent)
}

type NotifierFunc func(ctx context.Context, ev CollisionEvent)

func (f NotifierFunc) Notify(ctx context.Context, ev CollisionEvent) { f(ctx, ev) }
