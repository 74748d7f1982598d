// Package blackboard is the shared store of one decision engine instance.
//
// Perception data that the executor refreshes every tick lives in a typed
// Snapshot. Everything else (flags such as "force_attack", scratch values
// passed between leaves) goes into a small keyed map accessed through the
// generic Set, Get and GetOr functions.
//
// A Blackboard is owned by exactly one engine and is not safe for concurrent
// use.
package blackboard

import (
	"reflect"
	"slices"

	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/observability/metrics"
	"github.com/zeusync/arena/internal/core/systems/physics"
)

// Snapshot holds the fixed perception keys.
type Snapshot struct {
	Frame    uint64
	Position physics.Vec2

	Target    capability.PerceivedAgent
	HasTarget bool

	VisibleEnemies  []capability.PerceivedAgent
	VisibleAllies   []capability.PerceivedAgent
	VisiblePowerUps []capability.PowerUp

	Objective    physics.Vec2
	HasObjective bool
	FlagZone     physics.Vec2
	HasFlagZone  bool
}

// Capture reads every fixed key from the agent.
func Capture(a capability.Perception, frame uint64) Snapshot {
	s := Snapshot{
		Frame:           frame,
		Position:        a.Position(),
		VisibleEnemies:  a.VisibleEnemies(),
		VisibleAllies:   a.VisibleAllies(),
		VisiblePowerUps: a.VisiblePowerUps(),
	}
	s.Target, s.HasTarget = a.Target()
	s.Objective, s.HasObjective = a.Objective()
	s.FlagZone, s.HasFlagZone = a.FlagZone()
	return s
}

// Watcher is notified after every successful Set.
type Watcher func(key string, value any)

// Reasons reported to metrics.Recorder.DegradedRead.
const (
	ReasonMissing      = "missing"
	ReasonTypeMismatch = "type_mismatch"
)

type watch struct {
	id uint64
	fn Watcher
}

type Option func(*Blackboard)

func WithLogger(l log.Log) Option {
	return func(b *Blackboard) { b.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(b *Blackboard) { b.metrics = r }
}

type Blackboard struct {
	snap     Snapshot
	values   map[string]any
	keys     []string
	watchers  []watch
	nextWatch uint64
	notifying int
	stale     bool
	version   uint64

	log     log.Log
	metrics metrics.Recorder
}

func New(opts ...Option) *Blackboard {
	b := &Blackboard{
		values:  make(map[string]any),
		log:     log.NewNop(),
		metrics: metrics.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Snapshot returns the perception data of the current tick.
func (b *Blackboard) Snapshot() Snapshot { return b.snap }

// Refresh replaces the perception snapshot. Only the owning executor calls it.
func (b *Blackboard) Refresh(s Snapshot) {
	b.snap = s
	b.version++
}

// Version increases on every Refresh, Set, Remove and Clear.
func (b *Blackboard) Version() uint64 { return b.version }

// Watch registers w and returns a function that unregisters it. Cancelled
// watchers are dropped once no notification is in flight.
func (b *Blackboard) Watch(w Watcher) (cancel func()) {
	id := b.nextWatch
	b.nextWatch++
	b.watchers = append(b.watchers, watch{id: id, fn: w})
	return func() {
		for i := range b.watchers {
			if b.watchers[i].id == id {
				b.watchers[i].fn = nil
				b.stale = true
			}
		}
		b.compact()
	}
}

func (b *Blackboard) compact() {
	if !b.stale || b.notifying > 0 {
		return
	}
	b.watchers = slices.DeleteFunc(b.watchers, func(w watch) bool { return w.fn == nil })
	b.stale = false
}

// Has reports whether key holds a value.
func (b *Blackboard) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Remove deletes key and reports whether it existed.
func (b *Blackboard) Remove(key string) bool {
	if _, ok := b.values[key]; !ok {
		return false
	}
	delete(b.values, key)
	if i := slices.Index(b.keys, key); i >= 0 {
		b.keys = slices.Delete(b.keys, i, i+1)
	}
	b.version++
	return true
}

// Clear drops every dynamic entry and the snapshot. Watchers stay registered.
func (b *Blackboard) Clear() {
	clear(b.values)
	b.keys = b.keys[:0]
	b.snap = Snapshot{}
	b.version++
}

// Count returns the number of dynamic entries.
func (b *Blackboard) Count() int { return len(b.values) }

// Keys returns dynamic keys in insertion order.
func (b *Blackboard) Keys() []string {
	return slices.Clone(b.keys)
}

func (b *Blackboard) set(key string, value any) {
	if key == "" {
		b.log.Warn("blackboard: rejected empty key", log.Any("value", value))
		return
	}
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
	b.version++
	b.notifying++
	for i := 0; i < len(b.watchers); i++ {
		if w := b.watchers[i].fn; w != nil {
			w(key, value)
		}
	}
	b.notifying--
	b.compact()
}

func (b *Blackboard) degraded(key, reason, msg, want string, got any) {
	b.metrics.DegradedRead(reason)
	fields := []log.Field{
		log.String("key", key),
		log.String("want", want),
	}
	if got != nil {
		fields = append(fields, log.String("got", reflect.TypeOf(got).String()))
	}
	b.log.Warn("blackboard: "+msg, fields...)
}

// Set stores value under key and notifies watchers. An empty key is logged
// and ignored.
func Set[T any](b *Blackboard, key string, value T) {
	b.set(key, value)
}

// Lookup returns the value under key when present with type T. It never logs.
func Lookup[T any](b *Blackboard, key string) (T, bool) {
	v, ok := b.values[key].(T)
	return v, ok
}

// Get returns the value under key, or the zero T when the key is missing or
// holds another type. The miss is logged, never returned as an error.
func Get[T any](b *Blackboard, key string) T {
	var zero T
	return GetOr(b, key, zero)
}

// GetOr is Get with a caller supplied fallback.
func GetOr[T any](b *Blackboard, key string, fallback T) T {
	raw, ok := b.values[key]
	if !ok {
		b.degraded(key, ReasonMissing, "missing key", typeName[T](), nil)
		return fallback
	}
	v, ok := raw.(T)
	if !ok {
		b.degraded(key, ReasonTypeMismatch, "type mismatch", typeName[T](), raw)
		return fallback
	}
	return v
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
