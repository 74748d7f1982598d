package capability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/ai/capability/capabilitytest"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/systems/physics"
)

func TestReady(t *testing.T) {
	a := capabilitytest.New("a")
	assert.True(t, capability.Ready(a))

	a.OnSurface = false
	assert.False(t, capability.Ready(a))
	a.OnSurface, a.Enabled = true, false
	assert.False(t, capability.Ready(a))
	a.Enabled, a.Alive = true, false
	assert.False(t, capability.Ready(a))
}

func TestNearestKeepsEarliestOnTie(t *testing.T) {
	_, ok := capability.Nearest(physics.V(0, 0), nil)
	assert.False(t, ok)

	got, ok := capability.Nearest(physics.V(0, 0), []capability.PerceivedAgent{
		{ID: "far", Position: physics.V(9, 0)},
		{ID: "left", Position: physics.V(-2, 0)},
		{ID: "right", Position: physics.V(2, 0)},
	})
	require.True(t, ok)
	assert.Equal(t, "left", got.ID)
}

func TestInboxDrainsInArrivalOrder(t *testing.T) {
	in := capability.NewInbox()
	assert.Empty(t, in.Drain())

	in.Push(capability.Event{Kind: capability.EnemySpotted, Frame: 1})
	in.Push(capability.Event{Kind: capability.Died, Frame: 2})
	assert.Equal(t, 2, in.Len())

	got := in.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, capability.EnemySpotted, got[0].Kind)
	assert.Equal(t, capability.Died, got[1].Kind)
	assert.Equal(t, 0, in.Len())
}

func TestInboxAttachAndDetach(t *testing.T) {
	b := bus.New()
	in := capability.NewInbox()
	require.NoError(t, in.Attach(b, "agent-1"))
	require.Error(t, in.Attach(b, "agent-1"))

	require.NoError(t, b.PublishToTopic("agent-1", capability.Event{Kind: capability.Respawned, Agent: "agent-1"}))
	require.NoError(t, b.PublishToTopic("agent-2", capability.Event{Kind: capability.Died, Agent: "agent-2"}))
	assert.Error(t, b.PublishToTopic("agent-1", bus.NewEvent("noise", "test", 42)))

	require.NoError(t, in.Detach())
	require.NoError(t, in.Detach())
	require.NoError(t, b.PublishToTopic("agent-1", capability.Event{Kind: capability.Died}))

	got := in.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, capability.Respawned, got[0].Kind)
	assert.Equal(t, "respawned", got[0].Type())
	assert.Equal(t, "agent-1", got[0].Source())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "threat_detected", capability.ThreatDetected.String())
	assert.Equal(t, "unknown", capability.EventKind(0).String())
}

func TestMemoryOverwritesByIdentity(t *testing.T) {
	m := capability.NewMemory()
	m.Observe(
		capability.PerceivedAgent{ID: "b", SeenAt: 1},
		capability.PerceivedAgent{ID: "a", SeenAt: 1},
	)
	m.Observe(capability.PerceivedAgent{ID: "b", SeenAt: 5, Position: physics.V(3, 3)})

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, uint64(5), all[0].SeenAt)
	assert.Equal(t, "a", all[1].ID)

	m.Forget(3)
	assert.Equal(t, 1, m.Len())
	_, ok := m.Get("a")
	assert.False(t, ok)
	got, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, physics.V(3, 3), got.Position)

	m.Clear()
	assert.Equal(t, 0, m.Len())
}
