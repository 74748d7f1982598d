package blackboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/ai/capability/capabilitytest"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/systems/physics"
)

type countingRecorder struct {
	degraded []string
}

func (r *countingRecorder) Tick(string)                         {}
func (r *countingRecorder) StateChanged(string, string, string) {}
func (r *countingRecorder) UtilitySwitched(string)              {}
func (r *countingRecorder) DegradedRead(reason string)          { r.degraded = append(r.degraded, reason) }

func newObserved() (*Blackboard, *observer.ObservedLogs, *countingRecorder) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &countingRecorder{}
	return New(WithLogger(log.FromZap(zap.New(core))), WithMetrics(rec)), logs, rec
}

func TestSetGetRoundTrip(t *testing.T) {
	bb, logs, _ := newObserved()
	Set(bb, "force_attack", true)
	Set(bb, "retries", 3)

	assert.True(t, Get[bool](bb, "force_attack"))
	assert.Equal(t, 3, Get[int](bb, "retries"))
	assert.Equal(t, 0, logs.Len())
}

func TestGetTypeMismatchReturnsDefault(t *testing.T) {
	bb, logs, rec := newObserved()
	Set(bb, "k", 42)

	assert.Equal(t, "", Get[string](bb, "k"))
	assert.Equal(t, "fallback", GetOr(bb, "k", "fallback"))
	assert.Equal(t, 1.5, GetOr(bb, "missing", 1.5))

	require.Equal(t, 3, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, first.Level)
	assert.Equal(t, "k", first.ContextMap()["key"])
	assert.Equal(t, "string", first.ContextMap()["want"])
	assert.Equal(t, "int", first.ContextMap()["got"])
	assert.Equal(t, []string{ReasonTypeMismatch, ReasonTypeMismatch, ReasonMissing}, rec.degraded)
}

func TestLookupDoesNotLog(t *testing.T) {
	bb, logs, _ := newObserved()
	_, ok := Lookup[int](bb, "nope")
	assert.False(t, ok)
	Set(bb, "n", 7)
	v, ok := Lookup[int](bb, "n")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 0, logs.Len())
}

func TestEmptyKeyIsIgnored(t *testing.T) {
	bb, logs, _ := newObserved()
	notified := 0
	bb.Watch(func(string, any) { notified++ })

	Set(bb, "", "x")
	assert.Equal(t, 0, bb.Count())
	assert.Equal(t, 0, notified)
	assert.Equal(t, 1, logs.FilterMessage("blackboard: rejected empty key").Len())
}

func TestWatchersAndKeyOrder(t *testing.T) {
	bb := New()
	var seen []string
	cancel := bb.Watch(func(key string, value any) {
		seen = append(seen, key)
	})

	Set(bb, "b", 1)
	Set(bb, "a", 2)
	Set(bb, "b", 3)
	assert.Equal(t, []string{"b", "a", "b"}, seen)
	assert.Equal(t, []string{"b", "a"}, bb.Keys())
	assert.Equal(t, 3, Get[int](bb, "b"))

	cancel()
	Set(bb, "c", 4)
	assert.Len(t, seen, 3)

	assert.True(t, bb.Remove("b"))
	assert.False(t, bb.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, bb.Keys())
	assert.Equal(t, 2, bb.Count())

	bb.Clear()
	assert.Equal(t, 0, bb.Count())
	assert.Empty(t, bb.Keys())
	assert.False(t, bb.Has("a"))
}

func TestCancelledWatchersAreDropped(t *testing.T) {
	bb := New()
	for i := 0; i < 100; i++ {
		cancel := bb.Watch(func(string, any) {})
		cancel()
		cancel()
	}
	assert.Empty(t, bb.watchers)

	var seen []string
	bb.Watch(func(key string, _ any) { seen = append(seen, "kept:"+key) })
	Set(bb, "k", 1)
	assert.Equal(t, []string{"kept:k"}, seen)
	assert.Len(t, bb.watchers, 1)
}

func TestWatcherCancelsItselfDuringNotify(t *testing.T) {
	bb := New()
	var seen []string
	var cancel func()
	cancel = bb.Watch(func(key string, _ any) {
		seen = append(seen, "once:"+key)
		cancel()
	})
	bb.Watch(func(key string, _ any) { seen = append(seen, "always:"+key) })

	Set(bb, "a", 1)
	Set(bb, "b", 2)
	assert.Equal(t, []string{"once:a", "always:a", "always:b"}, seen)
	assert.Len(t, bb.watchers, 1)
}

func TestCaptureAndRefresh(t *testing.T) {
	a := capabilitytest.New("a")
	a.Pos = physics.V(1, 2)
	goal := physics.V(9, 9)
	a.Goal = &goal
	a.Enemies = []capability.PerceivedAgent{{ID: "e1", Position: physics.V(4, 4)}}
	a.Current = &a.Enemies[0]

	bb := New()
	v0 := bb.Version()
	bb.Refresh(Capture(a, 12))
	assert.Greater(t, bb.Version(), v0)

	s := bb.Snapshot()
	assert.Equal(t, uint64(12), s.Frame)
	assert.Equal(t, physics.V(1, 2), s.Position)
	assert.True(t, s.HasTarget)
	assert.Equal(t, "e1", s.Target.ID)
	assert.True(t, s.HasObjective)
	assert.Equal(t, goal, s.Objective)
	assert.False(t, s.HasFlagZone)
	require.Len(t, s.VisibleEnemies, 1)
}
