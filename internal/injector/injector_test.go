package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/observability/log"
)

func TestInitializeRuntime(t *testing.T) {
	rt, err := InitializeRuntime(log.LevelSilent)
	require.NoError(t, err)
	require.NotNil(t, rt.Log)
	require.NotNil(t, rt.Metrics)

	rt.Metrics.Tick("fsm")
	rt.Metrics.UtilitySwitched("attack")
	families, err := rt.Registry.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "arena_ai_ticks_total")
	assert.Contains(t, names, "arena_ai_utility_switches_total")
}

func TestRuntimesHaveSeparateRegistries(t *testing.T) {
	a, err := InitializeRuntime(log.LevelSilent)
	require.NoError(t, err)
	b, err := InitializeRuntime(log.LevelSilent)
	require.NoError(t, err)
	assert.NotSame(t, a.Registry, b.Registry)
}
