package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives decision-engine events worth counting. Implementations
// must return quickly; they are called from inside the tick.
type Recorder interface {
	// Tick counts one tick of the named engine ("fsm", "bt", "utility").
	Tick(engine string)
	// StateChanged counts an active-behavior change inside an engine.
	StateChanged(engine, from, to string)
	// UtilitySwitched counts a hysteresis-passing switch to action.
	UtilitySwitched(action string)
	// DegradedRead counts a blackboard read that fell back to a default,
	// labelled by a fixed reason such as "missing" or "type_mismatch".
	DegradedRead(reason string)
}

type nop struct{}

// Nop returns a Recorder that drops everything.
func Nop() Recorder { return nop{} }

func (nop) Tick(string)                         {}
func (nop) StateChanged(string, string, string) {}
func (nop) UtilitySwitched(string)              {}
func (nop) DegradedRead(string)                 {}

var _ Recorder = (*Collector)(nil)

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	ticks        *prometheus.CounterVec
	stateChanges *prometheus.CounterVec
	switches     *prometheus.CounterVec
	degraded     *prometheus.CounterVec
}

// NewCollector creates the collector and registers its vectors on reg.
// A nil reg uses a fresh private registry.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arena",
				Subsystem: "ai",
				Name:      "ticks_total",
				Help:      "Number of engine ticks",
			},
			[]string{"engine"},
		),
		stateChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arena",
				Subsystem: "ai",
				Name:      "state_changes_total",
				Help:      "Number of active state or root changes",
			},
			[]string{"engine", "to"},
		),
		switches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arena",
				Subsystem: "ai",
				Name:      "utility_switches_total",
				Help:      "Number of utility arbiter action switches",
			},
			[]string{"action"},
		),
		degraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arena",
				Subsystem: "ai",
				Name:      "blackboard_degraded_reads_total",
				Help:      "Blackboard reads that returned a fallback value",
			},
			[]string{"reason"},
		),
	}
	for _, col := range []prometheus.Collector{c.ticks, c.stateChanges, c.switches, c.degraded} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) Tick(engine string) {
	c.ticks.WithLabelValues(engine).Inc()
}

func (c *Collector) StateChanged(engine, _, to string) {
	c.stateChanges.WithLabelValues(engine, to).Inc()
}

func (c *Collector) UtilitySwitched(action string) {
	c.switches.WithLabelValues(action).Inc()
}

func (c *Collector) DegradedRead(reason string) {
	c.degraded.WithLabelValues(reason).Inc()
}
