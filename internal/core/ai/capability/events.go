package capability

import (
	"github.com/cockroachdb/errors"

	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/pkg/sequence"
)

// EventKind enumerates what the host can tell an agent about.
type EventKind int

const (
	EnemySpotted EventKind = iota + 1
	NoMoreEnemies
	ThreatDetected
	Died
	Respawned
	DestinationReached
)

var eventNames = map[EventKind]string{
	EnemySpotted:       "enemy_spotted",
	NoMoreEnemies:      "no_more_enemies",
	ThreatDetected:     "threat_detected",
	Died:               "died",
	Respawned:          "respawned",
	DestinationReached: "destination_reached",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is one host notification. Enemy is set for EnemySpotted, Ball for
// ThreatDetected. Event satisfies bus.Event so the host can publish it as is.
type Event struct {
	Kind  EventKind
	Agent string
	Enemy PerceivedAgent
	Ball  Ball
	Frame uint64
}

func (e Event) Type() string   { return e.Kind.String() }
func (e Event) Source() string { return e.Agent }
func (e Event) Data() any      { return e }

// Inbox queues host events for one agent until the owning engine drains
// them at the start of its tick.
type Inbox struct {
	queue sequence.Queue[Event]
	sub   bus.Subscription
}

func NewInbox() *Inbox {
	return &Inbox{}
}

// Push queues an event. Hosts without a bus call it directly.
func (in *Inbox) Push(ev Event) {
	in.queue.Enqueue(ev)
}

// Drain returns queued events in arrival order and empties the inbox.
func (in *Inbox) Drain() []Event {
	return in.queue.Drain()
}

func (in *Inbox) Len() int { return in.queue.Len() }

// Attach subscribes the inbox to every event published on topic.
// An inbox holds at most one subscription.
func (in *Inbox) Attach(b bus.EventBus, topic string) error {
	if in.sub != nil {
		return errors.Newf("inbox already attached to topic %q", in.sub.Topic())
	}
	sub, err := b.SubscribeTopic(topic, bus.AnyType, func(e bus.Event) error {
		ev, ok := e.Data().(Event)
		if !ok {
			return errors.Newf("unexpected payload %T for %q", e.Data(), e.Type())
		}
		in.Push(ev)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "attach inbox to %q", topic)
	}
	in.sub = sub
	return nil
}

// Detach cancels the bus subscription. Queued events stay queued.
func (in *Inbox) Detach() error {
	if in.sub == nil {
		return nil
	}
	err := in.sub.Cancel()
	in.sub = nil
	return err
}
