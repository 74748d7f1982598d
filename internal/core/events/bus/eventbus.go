package bus

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ErrNilHandler is returned when subscribing without a handler.
var ErrNilHandler = errors.New("bus: nil handler")

// simpleEvent is a basic Event for callers without their own event types.
type simpleEvent struct {
	typeStr string
	source  string
	data    any
}

func (e simpleEvent) Type() string   { return e.typeStr }
func (e simpleEvent) Source() string { return e.source }
func (e simpleEvent) Data() any      { return e.data }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{typeStr: typ, source: src, data: data}
}

type subscription struct {
	id        string
	topic     string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }

func (s *subscription) IsActive() bool {
	return s.active.Load()
}

func (s *subscription) Cancel() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// inMemoryBus keeps subscriptions as ordered slices so delivery order is the
// subscription order.
type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: topic -> ordered subscriptions
	handlers  map[string][]*subscription
	observers []Observer
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{
		handlers: make(map[string][]*subscription),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver("", event)
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.CombineErrors(all, err)
		}
	}
	return all
}

// PublishWithFilters drops the event silently if any filter rejects it.
func PublishWithFilters(b EventBus, event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if !f(event) {
			return nil
		}
	}
	return b.Publish(event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	return b.SubscribeTopic("", eventType, handler)
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &subscription{
		id:        uuid.NewString(),
		topic:     topic,
		eventType: eventType,
		handler:   handler,
	}
	s.active.Store(true)
	s.cancel = func() { b.remove(s) }
	b.handlers[topic] = append(b.handlers[topic], s)
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers = append(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.observers {
		if o == obs {
			b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
			return
		}
	}
}

func (b *inMemoryBus) Topics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]TopicInfo, 0, len(b.handlers))
	for name, subs := range b.handlers {
		out = append(out, TopicInfo{Name: name, Subs: len(subs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (b *inMemoryBus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	subs := b.handlers[s.topic]
	for i, cur := range subs {
		if cur == s {
			// copy so in-flight deliveries keep their snapshot
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, s.topic)
			} else {
				b.handlers[s.topic] = next
			}
			return
		}
	}
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	etype := event.Type()
	b.mu.RLock()
	subs := b.handlers[topic]
	observers := b.observers
	b.mu.RUnlock()

	var all error
	delivered := 0
	for _, s := range subs {
		if s.eventType != etype && s.eventType != AnyType {
			continue
		}
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.CombineErrors(all, errors.Wrapf(err, "handler %s for %q", s.id, etype))
		}
	}
	for _, obs := range observers {
		obs.OnDelivered(topic, event, delivered, all)
	}
	return all
}
