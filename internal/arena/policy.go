package arena

import (
	"github.com/cockroachdb/errors"

	"github.com/zeusync/arena/internal/core/ai/blackboard"
	"github.com/zeusync/arena/internal/core/ai/bt"
	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/ai/fsm"
	"github.com/zeusync/arena/internal/core/ai/utility"
	"github.com/zeusync/arena/internal/core/npc"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// Policy names the engine that drives an agent.
type Policy string

const (
	PolicyFSM     Policy = "fsm"
	PolicyBT      Policy = "bt"
	PolicyUtility Policy = "utility"
)

var ErrUnknownPolicy = errors.New("arena: unknown policy")

func Policies() []Policy { return []Policy{PolicyFSM, PolicyBT, PolicyUtility} }

func ParsePolicy(s string) (Policy, error) {
	for _, p := range Policies() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownPolicy, "%q", s)
}

// eventConditions maps host events onto fsm conditions.
var eventConditions = map[capability.EventKind]fsm.Condition{
	capability.EnemySpotted:       fsm.SeesEnemy,
	capability.NoMoreEnemies:      fsm.Idle,
	capability.ThreatDetected:     fsm.Dodge,
	capability.Died:               fsm.Died,
	capability.Respawned:          fsm.Spawned,
	capability.DestinationReached: fsm.Idle,
}

// Build wires agent to a fresh engine of policy p and returns its
// controller. The inbox is not attached to any bus.
func Build(p Policy, agent capability.Agent, role Role, opts ...Option) (*npc.Controller, error) {
	o := newOptions(opts)
	if o.defs == nil {
		defs, err := DefaultDefinitions()
		if err != nil {
			return nil, err
		}
		o.defs = defs
	}
	o.log = o.log.Named("agent").With(
		log.String("agent", agent.ID()),
		log.String("policy", string(p)),
		log.String("role", role.String()),
	)
	b := newBrain(agent, role)

	var (
		driver    npc.Driver
		translate npc.Translator
		err       error
	)
	switch p {
	case PolicyFSM:
		driver, translate, err = buildFSM(agent, b, o)
	case PolicyBT:
		driver, translate, err = buildBT(agent, b, o)
	case PolicyUtility:
		driver, translate, err = buildUtility(agent, b, o)
	default:
		err = errors.Wrapf(ErrUnknownPolicy, "%q", p)
	}
	if err != nil {
		return nil, err
	}
	return npc.NewController(agent, driver, npc.WithTranslator(translate), npc.WithLogger(o.log)), nil
}

func newMachine(agent capability.Agent, o options) *fsm.Machine {
	mopts := []fsm.Option{fsm.WithLogger(o.log), fsm.WithMetrics(o.metrics)}
	if o.clock != nil {
		mopts = append(mopts, fsm.WithClock(o.clock))
	}
	return fsm.New(agent, mopts...)
}

func buildFSM(agent capability.Agent, b *brain, o options) (npc.Driver, npc.Translator, error) {
	table, err := o.defs.Machine(DefaultName)
	if err != nil {
		return nil, nil, err
	}
	m := newMachine(agent, o)
	s := newStates(b)
	initial, err := m.ApplyTable(table, s.all()...)
	if err != nil {
		return nil, nil, err
	}
	if initial == nil {
		initial = s.spawned
	}
	if err := m.ChangeState(initial); err != nil {
		return nil, nil, err
	}
	translate := func(ev capability.Event) {
		b.note(ev)
		if c, ok := eventConditions[ev.Kind]; ok {
			m.Post(c)
		}
	}
	return m, translate, nil
}

func buildBT(agent capability.Agent, b *brain, o options) (npc.Driver, npc.Translator, error) {
	cfg, err := o.defs.Tree(DefaultName)
	if err != nil {
		return nil, nil, err
	}
	reg := bt.NewRegistry()
	registerLeaves(reg, b)
	tree := bt.NewTree()
	root, err := cfg.Build(tree, reg)
	if err != nil {
		return nil, nil, err
	}
	bb := blackboard.New(blackboard.WithLogger(o.log), blackboard.WithMetrics(o.metrics))
	eopts := []bt.Option{bt.WithLogger(o.log), bt.WithMetrics(o.metrics), bt.WithBlackboard(bb)}
	if o.clock != nil {
		eopts = append(eopts, bt.WithClock(o.clock))
	}
	ex, err := bt.NewExecutor(agent, tree, root, eopts...)
	if err != nil {
		return nil, nil, err
	}
	blackboard.Set(bb, KeyAttacker, b.role == Attacker)
	ex.Start()

	translate := func(ev capability.Event) {
		b.note(ev)
		switch ev.Kind {
		case capability.ThreatDetected:
			blackboard.Set(bb, KeyThreat, ev.Ball)
		case capability.DestinationReached:
			blackboard.Set(bb, KeyArrived, true)
		case capability.Died:
			ex.Reset()
			bb.Remove(KeyThreat)
			bb.Remove(KeyArrived)
		}
	}
	return ex, translate, nil
}

func buildUtility(agent capability.Agent, b *brain, o options) (npc.Driver, npc.Translator, error) {
	table, err := o.defs.UtilityTable(DefaultName)
	if err != nil {
		return nil, nil, err
	}
	m := newMachine(agent, o)
	s := newStates(b)
	clock := o.clock
	if clock == nil {
		clock = func() uint64 { return 0 }
	}
	arb := utility.New[Action](m, utility.WithLogger(o.log), utility.WithMetrics(o.metrics))
	if err := addActions(arb, m, table, agent, b, s, clock); err != nil {
		return nil, nil, err
	}
	if table.Initial != "" {
		initial, ok := s.byName(table.Initial)
		if !ok {
			return nil, nil, errors.Wrapf(fsm.ErrUnknownState, "utility initial %q", table.Initial)
		}
		if err := m.ChangeState(initial); err != nil {
			return nil, nil, err
		}
	}
	return arb, b.note, nil
}
