package bus

// EventBus is an in-process pub/sub bus used by the host simulation to hand
// capability events to agents.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type(), or AnyType for all.
// - Topics: handlers can subscribe within a topic (one per agent in the arena).
// - Synchronous, ordered delivery: Publish calls handlers in the caller goroutine
//   in subscription order, so replays are deterministic.
// - Error aggregation: handler errors are combined and returned from Publish.
//
// All methods are safe for concurrent use. Handlers may subscribe or cancel
// from inside a delivery; the change applies to the next Publish.
type EventBus interface {
	// Publish delivers the event to subscribers of event.Type() in the default topic.
	Publish(event Event) error
	// PublishToTopic delivers the event to subscribers within topic.
	PublishToTopic(topic string, event Event) error
	// PublishBatch publishes events in order to the default topic and combines errors.
	PublishBatch(events ...Event) error

	// Subscribe registers a handler for eventType in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeTopic registers a handler for eventType within topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is ignored.
	Unsubscribe(Subscription) error

	// AddObserver registers an observer notified after every delivery.
	AddObserver(obs Observer)
	// RemoveObserver unregisters a previously added observer.
	RemoveObserver(obs Observer)
	// Topics returns a snapshot of known topics, sorted by name.
	Topics() []TopicInfo
}

// AnyType subscribes a handler to every event type of a topic.
const AnyType = "*"

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered.
	EventFilter func(event Event) bool
)

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// Observer is notified about deliveries. Observers should return quickly.
type Observer interface {
	OnDelivered(topic string, event Event, handlers int, err error)
}

// TopicInfo is a snapshot about one topic.
type TopicInfo struct {
	Name string
	Subs int
}
