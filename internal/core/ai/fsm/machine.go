// Package fsm implements a hierarchical finite-state machine driven by
// edge-triggered conditions.
//
// Exactly one top-level State is active per Machine. Host events reach the
// machine through Post (or SetCondition for a direct latch); ExecuteAI then
// looks up (current, condition) in the transition table once, switches state
// on a hit, clears the condition and executes the active state.
package fsm

import (
	"github.com/cockroachdb/errors"

	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/observability/metrics"
	"github.com/zeusync/arena/pkg/sequence"
)

var (
	ErrNilState         = errors.New("fsm: nil state")
	ErrNoneCondition    = errors.New("fsm: transition on the none condition")
	ErrStateCycle       = errors.New("fsm: state would contain itself")
	ErrUnknownState     = errors.New("fsm: unknown state")
	ErrUnknownCondition = errors.New("fsm: unknown condition")
)

type transitionKey struct {
	from *State
	on   Condition
}

type Option func(*Machine)

func WithLogger(l log.Log) Option {
	return func(m *Machine) { m.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(m *Machine) { m.metrics = r }
}

// WithClock sets the frame passed to hooks. By default it is the number of
// ExecuteAI calls so far.
func WithClock(clock func() uint64) Option {
	return func(m *Machine) { m.clock = clock }
}

// Machine is owned by one agent and is not safe for concurrent use.
type Machine struct {
	agent       capability.Agent
	current     *State
	condition   Condition
	pending     sequence.Queue[Condition]
	transitions map[transitionKey]*State
	executions  uint64
	clock       func() uint64

	log     log.Log
	metrics metrics.Recorder
}

func New(agent capability.Agent, opts ...Option) *Machine {
	m := &Machine{
		agent:       agent,
		transitions: make(map[transitionKey]*State),
		log:         log.NewNop(),
		metrics:     metrics.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = func() uint64 { return m.executions }
	}
	return m
}

// AddTransition sets the target for (from, on), replacing an earlier one.
func (m *Machine) AddTransition(from *State, on Condition, to *State) error {
	if from == nil || to == nil {
		return errors.Wrapf(ErrNilState, "transition on %s", on)
	}
	if on == None {
		return errors.Wrapf(ErrNoneCondition, "transition from %q", from.Name())
	}
	m.transitions[transitionKey{from: from, on: on}] = to
	return nil
}

// Lookup returns the target registered for (from, on).
func (m *Machine) Lookup(from *State, on Condition) (*State, bool) {
	to, ok := m.transitions[transitionKey{from: from, on: on}]
	return to, ok
}

// ChangeState exits the active state, makes next active and enters it.
// Changing to the active state re-enters it.
func (m *Machine) ChangeState(next *State) error {
	if next == nil {
		return ErrNilState
	}
	ctx := m.context(m.clock())
	prev := m.current
	if prev != nil {
		prev.exit(ctx)
	}
	m.current = next
	next.enter(ctx)

	from := ""
	if prev != nil {
		from = prev.Name()
	}
	m.log.Debug("fsm: state changed", log.String("from", from), log.String("to", next.Name()))
	m.metrics.StateChanged("fsm", from, next.Name())
	return nil
}

// SetCondition latches c for the next ProcessTransitions.
func (m *Machine) SetCondition(c Condition) { m.condition = c }

// Condition returns the latched condition.
func (m *Machine) Condition() Condition { return m.condition }

// Post queues c. Queued conditions are latched in order at the start of the
// next ExecuteAI, so the last one posted wins.
func (m *Machine) Post(c Condition) { m.pending.Enqueue(c) }

// ProcessTransitions consumes the latched condition.
func (m *Machine) ProcessTransitions() {
	c := m.condition
	m.condition = None
	if m.current == nil || c == None {
		return
	}
	to, ok := m.transitions[transitionKey{from: m.current, on: c}]
	if !ok {
		m.log.Debug("fsm: condition ignored", log.String("state", m.current.Name()), log.String("on", c.String()))
		return
	}
	m.log.Debug("fsm: transition", log.String("from", m.current.Name()), log.String("on", c.String()), log.String("to", to.Name()))
	if err := m.ChangeState(to); err != nil {
		m.log.Warn("fsm: transition failed", log.String("from", m.current.Name()), log.String("on", c.String()), log.Error(err))
	}
}

// ExecuteAI drains posted conditions, processes transitions and executes
// the active state.
func (m *Machine) ExecuteAI() {
	m.executions++
	for _, c := range m.pending.Drain() {
		if c != None {
			m.SetCondition(c)
		}
	}
	m.ProcessTransitions()
	if m.current == nil {
		return
	}
	m.metrics.Tick("fsm")
	m.current.execute(m.context(m.clock()))
}

// Update runs ExecuteAI.
func (m *Machine) Update() { m.ExecuteAI() }

// Current returns the active state, nil before the first ChangeState.
func (m *Machine) Current() *State { return m.current }

func (m *Machine) Agent() capability.Agent { return m.agent }

func (m *Machine) context(frame uint64) *Context {
	return &Context{Agent: m.agent, Frame: frame, Log: m.log, machine: m}
}
