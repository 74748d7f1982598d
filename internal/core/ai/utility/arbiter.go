// Package utility picks the active behavior of an agent by scoring a fixed,
// ordered table of actions every tick.
//
// The highest score wins. Ties go to the action declared first, which
// matters because inactive options usually all score 0. The action thunk
// (typically a ChangeState on a Machine or a SetRootNode on an Executor)
// only runs when the winner differs from the previous one. After deciding,
// the underlying driver is ticked.
package utility

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/observability/metrics"
)

var (
	ErrUnknownAction   = errors.New("utility: unknown action")
	ErrDuplicateAction = errors.New("utility: duplicate action")
	ErrInvalidAction   = errors.New("utility: action needs a scorer and a thunk")
)

// Driver is the engine the arbiter switches and ticks.
type Driver interface {
	Update()
}

// Scorer returns the desirability of an action this tick.
type Scorer func() float64

// Thunk switches the driver to an action. Errors are configuration bugs
// and are logged.
type Thunk func() error

type action[K comparable] struct {
	kind   K
	name   string
	score  Scorer
	thunk  Thunk
	latest float64
}

// Score is the result of one action in the last decision.
type Score[K comparable] struct {
	Kind  K
	Name  string
	Value float64
}

type Option func(*options)

type options struct {
	log     log.Log
	metrics metrics.Recorder
}

func WithLogger(l log.Log) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

// Arbiter is owned by one agent and is not safe for concurrent use.
type Arbiter[K comparable] struct {
	driver  Driver
	actions []action[K]
	index   map[K]int
	current int
	log     log.Log
	metrics metrics.Recorder
}

// New returns an arbiter over driver. driver may be nil when the thunks do
// all the work.
func New[K comparable](driver Driver, opts ...Option) *Arbiter[K] {
	o := options{log: log.NewNop(), metrics: metrics.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Arbiter[K]{
		driver:  driver,
		index:   make(map[K]int),
		current: -1,
		log:     o.log,
		metrics: o.metrics,
	}
}

// Add appends an action. Declaration order is the tie-break order.
func (a *Arbiter[K]) Add(kind K, score Scorer, thunk Thunk) error {
	if score == nil || thunk == nil {
		return errors.Wrapf(ErrInvalidAction, "%v", kind)
	}
	if _, ok := a.index[kind]; ok {
		return errors.Wrapf(ErrDuplicateAction, "%v", kind)
	}
	a.index[kind] = len(a.actions)
	a.actions = append(a.actions, action[K]{kind: kind, name: fmt.Sprint(kind), score: score, thunk: thunk})
	return nil
}

// Decide scores every action and switches to the winner when it changed.
// The current action keeps winning while it ties the maximal score; other
// ties go to the first declared. It reports the winner and whether a switch
// happened. With no actions it returns false for both.
func (a *Arbiter[K]) Decide() (K, bool, bool) {
	var zero K
	if len(a.actions) == 0 {
		return zero, false, false
	}
	best := -1
	bestScore := math.Inf(-1)
	for i := range a.actions {
		s := a.actions[i].score()
		if math.IsNaN(s) {
			s = math.Inf(-1)
		}
		a.actions[i].latest = s
		if best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	if a.current >= 0 && a.actions[a.current].latest == bestScore {
		best = a.current
	}
	winner := a.actions[best]
	if best == a.current {
		return winner.kind, true, false
	}
	if err := a.switchTo(best); err != nil {
		a.log.Error("utility: switch failed", log.String("action", winner.name), log.Error(err))
		return winner.kind, true, false
	}
	a.log.Debug("utility: switched", log.String("action", winner.name), log.Float64("score", bestScore))
	return winner.kind, true, true
}

// Tick decides and then updates the driver.
func (a *Arbiter[K]) Tick() {
	a.Decide()
	a.metrics.Tick("utility")
	if a.driver != nil {
		a.driver.Update()
	}
}

// Update runs Tick, so an arbiter can drive another arbiter.
func (a *Arbiter[K]) Update() { a.Tick() }

// Select forces kind to become current, running its thunk when it is not
// already current.
func (a *Arbiter[K]) Select(kind K) error {
	i, ok := a.index[kind]
	if !ok {
		return errors.Wrapf(ErrUnknownAction, "%v", kind)
	}
	if i == a.current {
		return nil
	}
	return a.switchTo(i)
}

// Current returns the active action.
func (a *Arbiter[K]) Current() (K, bool) {
	if a.current < 0 {
		var zero K
		return zero, false
	}
	return a.actions[a.current].kind, true
}

// Scores returns the scores of the last decision in declaration order.
func (a *Arbiter[K]) Scores() []Score[K] {
	out := make([]Score[K], len(a.actions))
	for i, act := range a.actions {
		out[i] = Score[K]{Kind: act.kind, Name: act.name, Value: act.latest}
	}
	return out
}

// Len returns the number of registered actions.
func (a *Arbiter[K]) Len() int { return len(a.actions) }

func (a *Arbiter[K]) switchTo(i int) error {
	act := a.actions[i]
	if err := act.thunk(); err != nil {
		return errors.Wrapf(err, "activate %s", act.name)
	}
	from := ""
	if a.current >= 0 {
		from = a.actions[a.current].name
	}
	a.current = i
	a.metrics.UtilitySwitched(act.name)
	a.metrics.StateChanged("utility", from, act.name)
	return nil
}
