package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.Tick("fsm")
	c.Tick("fsm")
	c.Tick("bt")
	c.StateChanged("fsm", "Idle", "Combat")
	c.UtilitySwitched("attack")
	c.DegradedRead("missing")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ticks.WithLabelValues("fsm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ticks.WithLabelValues("bt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stateChanges.WithLabelValues("fsm", "Combat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.switches.WithLabelValues("attack")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.degraded.WithLabelValues("missing")))
}

func TestCollectorDoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)
	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestNopRecorder(t *testing.T) {
	r := Nop()
	r.Tick("fsm")
	r.StateChanged("fsm", "a", "b")
	r.UtilitySwitched("x")
	r.DegradedRead("missing")
}
