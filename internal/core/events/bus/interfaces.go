package bus

import "time"

// EventBus is an in-process pub/sub bus for frame-loop events.
//
// - Handlers subscribe by Event.Type().
// - Publish calls handlers synchronously in the publisher's goroutine, in
//   subscription order, so a frame's events are handled before the frame
//   returns.
// - Handler errors are joined and returned from Publish.
// - Observers, when registered, see every publish and delivery.
// - All methods are safe for concurrent use.
type EventBus interface {
	Publish(event Event) error
	// PublishAsync delivers in a new goroutine; the channel receives the
	// joined handler error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	Unsubscribe(Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	// GetMetrics counts only while at least one observer is registered.
	GetMetrics() Metrics
}

// Event is an immutable message. Implementations should treat Event values
// as read-only.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	EventHandler func(event Event) error
)

type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

type Observer interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, elapsed time.Duration)
}

type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
