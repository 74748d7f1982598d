package bt

import (
	"github.com/cockroachdb/errors"

	"github.com/zeusync/arena/internal/core/ai/blackboard"
	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/observability/metrics"
)

type Option func(*Executor)

func WithLogger(l log.Log) Option {
	return func(e *Executor) { e.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(e *Executor) { e.metrics = r }
}

// WithBlackboard shares bb instead of creating a private one.
func WithBlackboard(bb *blackboard.Blackboard) Option {
	return func(e *Executor) { e.bb = bb }
}

// WithClock sets the frame source passed to leaves and stored in the
// snapshot. By default the frame is the execution counter.
func WithClock(clock func() uint64) Option {
	return func(e *Executor) { e.clock = clock }
}

// Executor drives one tree for one agent. It starts stopped.
type Executor struct {
	agent      capability.Agent
	tree       *Tree
	root       NodeID
	bb         *blackboard.Blackboard
	clock      func() uint64
	active     bool
	executions uint64

	log     log.Log
	metrics metrics.Recorder
}

// NewExecutor validates the tree and root and returns a stopped executor.
// root may be NoNode.
func NewExecutor(agent capability.Agent, tree *Tree, root NodeID, opts ...Option) (*Executor, error) {
	if tree == nil {
		return nil, errors.New("bt: nil tree")
	}
	if err := tree.Err(); err != nil {
		return nil, err
	}
	if root != NoNode && !tree.valid(root) {
		return nil, errors.Wrapf(ErrUnknownNode, "root %d", root)
	}
	e := &Executor{
		agent:   agent,
		tree:    tree,
		root:    root,
		log:     log.NewNop(),
		metrics: metrics.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bb == nil {
		e.bb = blackboard.New(blackboard.WithLogger(e.log), blackboard.WithMetrics(e.metrics))
	}
	if e.clock == nil {
		e.clock = func() uint64 { return e.executions }
	}
	return e, nil
}

// Tick refreshes the blackboard snapshot from the agent and ticks the root.
// It returns Failure without doing anything when stopped or rootless.
func (e *Executor) Tick() Status {
	if !e.active || e.root == NoNode {
		return Failure
	}
	e.executions++
	frame := e.clock()
	e.bb.Refresh(blackboard.Capture(e.agent, frame))
	e.metrics.Tick("bt")
	ctx := &Context{Agent: e.agent, BB: e.bb, Frame: frame, Log: e.log}
	return e.tree.Tick(e.root, ctx)
}

// Update ticks and drops the status.
func (e *Executor) Update() { e.Tick() }

func (e *Executor) Start() { e.active = true }
func (e *Executor) Stop()  { e.active = false }

func (e *Executor) IsActive() bool { return e.active }

// Reset returns the whole tree to fresh entry and zeroes the execution count.
func (e *Executor) Reset() {
	if e.root != NoNode {
		e.tree.Reset(e.root)
	}
	e.executions = 0
}

// SetRootNode resets the current root subtree and swaps in root.
func (e *Executor) SetRootNode(root NodeID) error {
	if root != NoNode && !e.tree.valid(root) {
		return errors.Wrapf(ErrUnknownNode, "root %d", root)
	}
	from := e.tree.Name(e.root)
	if e.root != NoNode {
		e.tree.Reset(e.root)
	}
	e.root = root
	to := e.tree.Name(root)
	e.log.Debug("bt: root changed", log.String("from", from), log.String("to", to))
	e.metrics.StateChanged("bt", from, to)
	return nil
}

func (e *Executor) Root() NodeID                       { return e.root }
func (e *Executor) Tree() *Tree                        { return e.tree }
func (e *Executor) Blackboard() *blackboard.Blackboard { return e.bb }
func (e *Executor) Executions() uint64                 { return e.executions }
