package fsm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/arena/internal/core/ai/capability/capabilitytest"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// tracer returns a Behavior that appends "<name>.<hook>" to trace.
func tracer(name string, trace *[]string) Behavior {
	return Hooks{
		OnEnter:   func(*Context) { *trace = append(*trace, name+".enter") },
		OnExecute: func(*Context) { *trace = append(*trace, name+".execute") },
		OnExit:    func(*Context) { *trace = append(*trace, name+".exit") },
	}
}

func TestSubstatesRunAfterOwnHooksInOrder(t *testing.T) {
	var trace []string
	inner := NewState("inner", tracer("inner", &trace))
	s1 := NewState("s1", tracer("s1", &trace), inner)
	s2 := NewState("s2", tracer("s2", &trace))
	parent := NewState("parent", tracer("parent", &trace), s1, s2)
	m := New(capabilitytest.New("a1"))

	require.NoError(t, m.ChangeState(parent))
	m.ExecuteAI()
	require.NoError(t, m.ChangeState(NewState("other", nil)))

	assert.Equal(t, []string{
		"parent.enter", "s1.enter", "inner.enter", "s2.enter",
		"parent.execute", "s1.execute", "inner.execute", "s2.execute",
		"parent.exit", "s1.exit", "inner.exit", "s2.exit",
	}, trace)
}

func TestChangeStateExitsBeforeEnter(t *testing.T) {
	var trace []string
	a := NewState("a", tracer("a", &trace))
	b := NewState("b", tracer("b", &trace))
	m := New(capabilitytest.New("a1"))

	require.NoError(t, m.ChangeState(a))
	require.NoError(t, m.ChangeState(b))
	assert.Equal(t, []string{"a.enter", "a.exit", "b.enter"}, trace)
	assert.Same(t, b, m.Current())

	assert.ErrorIs(t, m.ChangeState(nil), ErrNilState)
	assert.Same(t, b, m.Current())
}

func TestChangeStateToCurrentReenters(t *testing.T) {
	var trace []string
	a := NewState("a", tracer("a", &trace))
	m := New(capabilitytest.New("a1"))
	require.NoError(t, m.ChangeState(a))
	require.NoError(t, m.ChangeState(a))
	assert.Equal(t, []string{"a.enter", "a.exit", "a.enter"}, trace)
}

func TestTransitionDeterminism(t *testing.T) {
	idle := NewState("idle", nil)
	combat := NewState("combat", nil)
	dead := NewState("dead", nil)
	m := New(capabilitytest.New("a1"))
	require.NoError(t, m.AddTransition(idle, SeesEnemy, combat))
	require.NoError(t, m.AddTransition(combat, Died, dead))
	require.NoError(t, m.ChangeState(idle))

	cases := []struct {
		cond Condition
		want *State
	}{
		{Died, idle},
		{SeesEnemy, combat},
		{SeesEnemy, combat},
		{Died, dead},
		{None, dead},
	}
	for _, tc := range cases {
		m.SetCondition(tc.cond)
		m.ExecuteAI()
		assert.Same(t, tc.want, m.Current(), "after %s", tc.cond)
		assert.Equal(t, None, m.Condition(), "condition must be spent after %s", tc.cond)
	}
}

func TestConditionIsNotStale(t *testing.T) {
	idle := NewState("idle", nil)
	combat := NewState("combat", nil)
	m := New(capabilitytest.New("a1"))
	require.NoError(t, m.AddTransition(idle, SeesEnemy, combat))
	require.NoError(t, m.ChangeState(combat))

	m.SetCondition(SeesEnemy)
	m.ExecuteAI()
	require.NoError(t, m.ChangeState(idle))
	m.ExecuteAI()
	assert.Same(t, idle, m.Current())
}

func TestAddTransitionUpsertAndValidation(t *testing.T) {
	a := NewState("a", nil)
	b := NewState("b", nil)
	c := NewState("c", nil)
	m := New(capabilitytest.New("a1"))

	require.NoError(t, m.AddTransition(a, Protect, b))
	require.NoError(t, m.AddTransition(a, Protect, c))
	to, ok := m.Lookup(a, Protect)
	require.True(t, ok)
	assert.Same(t, c, to)

	assert.ErrorIs(t, m.AddTransition(nil, Protect, b), ErrNilState)
	assert.ErrorIs(t, m.AddTransition(a, Protect, nil), ErrNilState)
	assert.ErrorIs(t, m.AddTransition(a, None, b), ErrNoneCondition)
}

func TestTableTransitionsNeverFail(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	idle := NewState("idle", nil)
	combat := NewState("combat", nil)
	m := New(capabilitytest.New("a1"), WithLogger(log.FromZap(zap.New(core))))
	require.NoError(t, m.AddTransition(idle, SeesEnemy, combat))
	require.ErrorIs(t, m.AddTransition(combat, Died, nil), ErrNilState)
	_, ok := m.Lookup(combat, Died)
	require.False(t, ok)
	require.NoError(t, m.ChangeState(idle))

	m.SetCondition(SeesEnemy)
	m.ExecuteAI()
	m.SetCondition(Died)
	m.ExecuteAI()

	assert.Same(t, combat, m.Current())
	assert.Equal(t, 1, logs.FilterMessage("fsm: transition").Len())
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestPostedConditionsLastWins(t *testing.T) {
	idle := NewState("idle", nil)
	combat := NewState("combat", nil)
	moving := NewState("moving", nil)
	m := New(capabilitytest.New("a1"))
	require.NoError(t, m.AddTransition(idle, SeesEnemy, combat))
	require.NoError(t, m.AddTransition(idle, MoveToObjective, moving))
	require.NoError(t, m.ChangeState(idle))

	m.Post(SeesEnemy)
	m.Post(MoveToObjective)
	m.Post(None)
	assert.Same(t, idle, m.Current())
	m.ExecuteAI()
	assert.Same(t, moving, m.Current())
}

func TestSignalFromStateAppliesNextTick(t *testing.T) {
	idle := NewState("idle", Hooks{OnExecute: func(ctx *Context) { ctx.Signal(SeesEnemy) }})
	combat := NewState("combat", nil)
	m := New(capabilitytest.New("a1"))
	require.NoError(t, m.AddTransition(idle, SeesEnemy, combat))
	require.NoError(t, m.ChangeState(idle))

	m.ExecuteAI()
	assert.Same(t, idle, m.Current())
	m.ExecuteAI()
	assert.Same(t, combat, m.Current())
}

func TestAddSubstateValidation(t *testing.T) {
	a := NewState("a", nil)
	b := NewState("b", nil, a)
	assert.ErrorIs(t, a.AddSubstate(nil), ErrNilState)
	assert.ErrorIs(t, a.AddSubstate(b), ErrStateCycle)
	assert.ErrorIs(t, a.AddSubstate(a), ErrStateCycle)
	require.NoError(t, b.AddSubstate(NewState("c", nil)))
	assert.Len(t, b.Substates(), 2)
}

func TestClockReachesHooks(t *testing.T) {
	var frames []uint64
	s := NewState("s", Hooks{OnExecute: func(ctx *Context) { frames = append(frames, ctx.Frame) }})
	m := New(capabilitytest.New("a1"))
	require.NoError(t, m.ChangeState(s))
	m.ExecuteAI()
	m.ExecuteAI()
	assert.Equal(t, []uint64{1, 2}, frames)

	m2 := New(capabilitytest.New("a2"), WithClock(func() uint64 { return 77 }))
	require.NoError(t, m2.ChangeState(s))
	m2.Update()
	assert.Equal(t, uint64(77), frames[2])
}

func TestConditionNames(t *testing.T) {
	for c := None; c <= Dodge; c++ {
		got, ok := ParseCondition(c.String())
		require.True(t, ok, c.String())
		assert.Equal(t, c, got)
	}
	_, ok := ParseCondition("bogus")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Condition(99).String())
}

const tableYAML = `
initial: idle
states:
  idle:
    transitions:
      - {on: sees_enemy, to: combat}
      - {on: died, to: dead}
  combat:
    transitions:
      - {on: idle, to: idle}
      - {on: died, to: dead}
  dead:
    transitions:
      - {on: spawned, to: idle}
`

func TestApplyTable(t *testing.T) {
	idle := NewState("idle", nil)
	combat := NewState("combat", nil)
	dead := NewState("dead", nil)
	tbl, err := LoadTable(strings.NewReader(tableYAML))
	require.NoError(t, err)

	m := New(capabilitytest.New("a1"))
	initial, err := m.ApplyTable(tbl, idle, combat, dead)
	require.NoError(t, err)
	assert.Same(t, idle, initial)
	require.NoError(t, m.ChangeState(initial))

	for _, step := range []struct {
		on   Condition
		want *State
	}{
		{SeesEnemy, combat},
		{Died, dead},
		{SeesEnemy, dead},
		{Spawned, idle},
	} {
		m.Post(step.on)
		m.ExecuteAI()
		assert.Same(t, step.want, m.Current())
	}
}

func TestApplyTableRejectsUnknownNames(t *testing.T) {
	idle := NewState("idle", nil)
	cases := map[string]struct {
		doc  string
		want error
	}{
		"unknown target":    {"states:\n  idle:\n    transitions: [{on: died, to: grave}]\n", ErrUnknownState},
		"unknown source":    {"states:\n  nowhere: {}\n", ErrUnknownState},
		"unknown condition": {"states:\n  idle:\n    transitions: [{on: sneeze, to: idle}]\n", ErrUnknownCondition},
		"none condition":    {"states:\n  idle:\n    transitions: [{on: none, to: idle}]\n", ErrNoneCondition},
		"unknown initial":   {"initial: limbo\n", ErrUnknownState},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tbl, err := LoadTable(strings.NewReader(tc.doc))
			require.NoError(t, err)
			m := New(capabilitytest.New("a1"))
			_, err = m.ApplyTable(tbl, idle)
			assert.ErrorIs(t, err, tc.want)
			_, ok := m.Lookup(idle, Died)
			assert.False(t, ok)
		})
	}
}
