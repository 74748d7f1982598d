package bt

import (
	"github.com/zeusync/arena/internal/core/ai/blackboard"
	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// Context is what a leaf sees during one tick. Leaves must not keep it
// after returning.
type Context struct {
	Agent capability.Agent
	BB    *blackboard.Blackboard
	Frame uint64
	Log   log.Log
}

// Leaf is a condition or action. Leaves that need per-episode setup or
// cleanup also implement Enterer or Exiter.
type Leaf interface {
	Execute(ctx *Context) Status
}

// Enterer is called once when a leaf starts a fresh episode.
type Enterer interface {
	OnEnter(ctx *Context)
}

// Exiter is called once when a leaf episode ends with Success or Failure.
type Exiter interface {
	OnExit(ctx *Context)
}

// Action adapts a function to Leaf.
type Action func(ctx *Context) Status

func (f Action) Execute(ctx *Context) Status { return f(ctx) }

// Condition adapts a predicate to Leaf: true is Success, false is Failure.
type Condition func(ctx *Context) bool

func (f Condition) Execute(ctx *Context) Status {
	if f(ctx) {
		return Success
	}
	return Failure
}

// Hooks wraps a leaf with enter and exit callbacks. Nil callbacks are skipped.
type Hooks struct {
	Leaf  Leaf
	Enter func(ctx *Context)
	Exit  func(ctx *Context)
}

func (h Hooks) Execute(ctx *Context) Status { return h.Leaf.Execute(ctx) }

func (h Hooks) OnEnter(ctx *Context) {
	if h.Enter != nil {
		h.Enter(ctx)
	}
}

func (h Hooks) OnExit(ctx *Context) {
	if h.Exit != nil {
		h.Exit(ctx)
	}
}
