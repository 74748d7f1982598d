package arena

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/ai/fsm"
	"github.com/zeusync/arena/internal/core/ai/utility"
)

// Action is a utility action of the arena policy. Each one activates one
// top-level state of the agent's machine.
type Action int

const (
	ActionIdle Action = iota
	ActionEvade
	ActionAttack
	ActionCollect
	ActionAdvance
	ActionDefend
	ActionRest
)

var actionNames = [...]string{"idle", "evade", "attack", "collect", "advance", "defend", "rest"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

func ParseAction(s string) (Action, bool) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), true
		}
	}
	return 0, false
}

var ErrUnknownAction = errors.New("arena: unknown utility action")

func (s *states) forAction(a Action) *fsm.State {
	switch a {
	case ActionEvade:
		return s.dodge
	case ActionAttack:
		return s.combat
	case ActionCollect:
		return s.collect
	case ActionAdvance:
		return s.objective
	case ActionDefend:
		return s.protect
	case ActionRest:
		return s.dead
	}
	return s.idle
}

// addActions registers the table's actions on arb in table order. Every
// thunk is a ChangeState on m.
func addActions(arb *utility.Arbiter[Action], m *fsm.Machine, t *UtilityTable, agent capability.Agent, b *brain, s *states, clock func() uint64) error {
	for _, e := range t.Actions {
		a, ok := ParseAction(e.Action)
		if !ok {
			return errors.Wrapf(ErrUnknownAction, "%q", e.Action)
		}
		score := scorer(a, agent, b, clock)
		weight := e.weight()
		state := s.forAction(a)
		err := arb.Add(a,
			func() float64 { return weight * score() },
			func() error { return m.ChangeState(state) },
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// closeness is 1 at distance 0 and falls linearly to 0 at scale.
func closeness(d, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	return math.Max(0, 1-d/scale)
}

func scorer(a Action, agent capability.Agent, b *brain, clock func() uint64) utility.Scorer {
	switch a {
	case ActionIdle:
		return func() float64 {
			if _, ok := b.lastSighting(clock()); ok && agent.IsAlive() {
				return 0.35
			}
			return 0.05
		}
	case ActionEvade:
		return func() float64 {
			if agent.IsAlive() && b.threatened {
				return 1
			}
			return 0
		}
	case ActionAttack:
		return func() float64 {
			if !agent.IsAlive() {
				return 0
			}
			e, ok := capability.Nearest(agent.Position(), agent.VisibleEnemies())
			if !ok {
				return 0
			}
			return 0.6 + 0.3*closeness(agent.Position().Dist(e.Position), 2*agent.ThrowRange())
		}
	case ActionCollect:
		return func() float64 {
			if !agent.IsAlive() || len(agent.VisibleEnemies()) > 0 {
				return 0
			}
			p, ok := closestPowerUp(agent.Position(), agent.VisiblePowerUps(), CollectRadius)
			if !ok {
				return 0
			}
			return 0.4 + 0.2*closeness(agent.Position().Dist(p.Position), CollectRadius)
		}
	case ActionAdvance:
		return roleScore(agent, b, Attacker)
	case ActionDefend:
		return roleScore(agent, b, Defender)
	case ActionRest:
		return func() float64 {
			if agent.IsAlive() {
				return 0
			}
			return 2
		}
	}
	return func() float64 { return 0 }
}

func roleScore(agent capability.Agent, b *brain, role Role) utility.Scorer {
	return func() float64 {
		if agent.IsAlive() && b.role == role {
			return 0.3
		}
		return 0
	}
}
