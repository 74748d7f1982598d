package fsm

import (
	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// Context is passed to every hook of the active state and its substates.
type Context struct {
	Agent capability.Agent
	Frame uint64
	Log   log.Log

	machine *Machine
}

// Signal queues a condition for the next ExecuteAI, the same as Machine.Post.
func (c *Context) Signal(cond Condition) {
	if c.machine != nil {
		c.machine.Post(cond)
	}
}

// Behavior is the logic of one state.
type Behavior interface {
	Enter(ctx *Context)
	Execute(ctx *Context)
	Exit(ctx *Context)
}

// Hooks adapts plain functions to Behavior. Nil hooks are skipped.
type Hooks struct {
	OnEnter   func(ctx *Context)
	OnExecute func(ctx *Context)
	OnExit    func(ctx *Context)
}

func (h Hooks) Enter(ctx *Context) {
	if h.OnEnter != nil {
		h.OnEnter(ctx)
	}
}

func (h Hooks) Execute(ctx *Context) {
	if h.OnExecute != nil {
		h.OnExecute(ctx)
	}
}

func (h Hooks) Exit(ctx *Context) {
	if h.OnExit != nil {
		h.OnExit(ctx)
	}
}

// State is a named behavior with ordered substates. Each hook runs the
// state's own behavior first and then the same hook of every substate in
// declaration order.
type State struct {
	name      string
	behavior  Behavior
	substates []*State
}

// NewState builds a state. behavior may be nil for a pure container; nil
// substates are dropped.
func NewState(name string, behavior Behavior, substates ...*State) *State {
	s := &State{name: name, behavior: behavior}
	for _, sub := range substates {
		if sub != nil {
			s.substates = append(s.substates, sub)
		}
	}
	return s
}

func (s *State) Name() string { return s.name }

// Behavior returns the state's own behavior, nil for containers.
func (s *State) Behavior() Behavior { return s.behavior }

// AddSubstate appends sub. It rejects nil and substates that already
// contain s.
func (s *State) AddSubstate(sub *State) error {
	if sub == nil {
		return ErrNilState
	}
	if sub == s || sub.contains(s) {
		return ErrStateCycle
	}
	s.substates = append(s.substates, sub)
	return nil
}

// Substates returns a copy of the ordered substates.
func (s *State) Substates() []*State {
	return append([]*State(nil), s.substates...)
}

func (s *State) contains(target *State) bool {
	for _, sub := range s.substates {
		if sub == target || sub.contains(target) {
			return true
		}
	}
	return false
}

func (s *State) enter(ctx *Context) {
	if s.behavior != nil {
		s.behavior.Enter(ctx)
	}
	for _, sub := range s.substates {
		sub.enter(ctx)
	}
}

func (s *State) execute(ctx *Context) {
	if s.behavior != nil {
		s.behavior.Execute(ctx)
	}
	for _, sub := range s.substates {
		sub.execute(ctx)
	}
}

func (s *State) exit(ctx *Context) {
	if s.behavior != nil {
		s.behavior.Exit(ctx)
	}
	for _, sub := range s.substates {
		sub.exit(ctx)
	}
}
