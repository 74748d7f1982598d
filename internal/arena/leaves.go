package arena

import (
	"github.com/zeusync/arena/internal/core/ai/blackboard"
	"github.com/zeusync/arena/internal/core/ai/bt"
	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/systems/physics"
)

// Blackboard keys written by the arena translators and leaves.
const (
	KeyThreat   = "threat"
	KeyAttacker = "attacker"
	KeyArrived  = "arrived"
)

// registerLeaves adds the arena leaves to reg. Leaves that keep state
// between ticks are built per tree, so each agent gets its own.
func registerLeaves(reg *bt.Registry, b *brain) {
	reg.Register("ready", func(map[string]any) (bt.Leaf, error) {
		return bt.Condition(func(ctx *bt.Context) bool { return capability.Ready(ctx.Agent) }), nil
	})
	reg.Register("threatened", func(map[string]any) (bt.Leaf, error) {
		return bt.Condition(func(ctx *bt.Context) bool { return ctx.BB.Has(KeyThreat) }), nil
	})
	reg.Register("enemies_visible", func(map[string]any) (bt.Leaf, error) {
		return bt.Condition(func(ctx *bt.Context) bool { return len(ctx.BB.Snapshot().VisibleEnemies) > 0 }), nil
	})
	reg.Register("dodge", func(map[string]any) (bt.Leaf, error) {
		return dodgeLeaf{}, nil
	})
	reg.Register("acquire_target", func(map[string]any) (bt.Leaf, error) {
		return bt.Action(acquireTarget), nil
	})
	reg.Register("follow_enemy", func(map[string]any) (bt.Leaf, error) {
		return bt.Action(followEnemy), nil
	})
	reg.Register("face_target", func(map[string]any) (bt.Leaf, error) {
		return bt.Action(faceTarget), nil
	})
	reg.Register("throw", func(map[string]any) (bt.Leaf, error) {
		return bt.Action(throwAtTarget), nil
	})
	reg.Register("powerup_nearby", func(params map[string]any) (bt.Leaf, error) {
		radius, err := bt.ParamFloat(params, "radius", CollectRadius)
		if err != nil {
			return nil, err
		}
		return bt.Condition(func(ctx *bt.Context) bool {
			_, ok := nearestPowerUp(ctx.BB.Snapshot(), radius)
			return ok
		}), nil
	})
	reg.Register("collect_powerup", func(params map[string]any) (bt.Leaf, error) {
		radius, err := bt.ParamFloat(params, "radius", CollectRadius)
		if err != nil {
			return nil, err
		}
		return collectLeaf{radius: radius}, nil
	})
	reg.Register("investigate", func(map[string]any) (bt.Leaf, error) {
		return bt.Action(func(ctx *bt.Context) bt.Status {
			last, ok := b.lastSighting(ctx.Frame)
			if !ok {
				return bt.Failure
			}
			if ctx.BB.Snapshot().Position.Dist(last.Position) <= PickupRadius {
				b.memory.Forget(last.SeenAt + 1)
				return bt.Failure
			}
			ctx.Agent.MoveTo(last.Position)
			return bt.Success
		}), nil
	})
	reg.Register("advance", func(params map[string]any) (bt.Leaf, error) {
		timeout, err := bt.ParamInt(params, "timeout", MoveTimeoutFrames)
		if err != nil {
			return nil, err
		}
		return &advanceLeaf{timeout: uint64(timeout)}, nil
	})
	reg.Register("guard", func(map[string]any) (bt.Leaf, error) {
		return &guardLeaf{brain: b}, nil
	})
}

// dodgeLeaf rolls away from the ball under KeyThreat and stays Running
// until the roll is over.
type dodgeLeaf struct{}

func (dodgeLeaf) OnEnter(ctx *bt.Context) {
	ball, ok := blackboard.Lookup[capability.Ball](ctx.BB, KeyThreat)
	if !ok {
		return
	}
	ctx.Agent.StartDodge(dodgeAway(ctx.Agent.Position(), ball))
}

func (dodgeLeaf) Execute(ctx *bt.Context) bt.Status {
	if ctx.Agent.IsAlive() && !ctx.Agent.IsEnabled() {
		return bt.Running
	}
	return bt.Success
}

func (dodgeLeaf) OnExit(ctx *bt.Context) { ctx.BB.Remove(KeyThreat) }

func acquireTarget(ctx *bt.Context) bt.Status {
	if _, ok := ctx.Agent.RefreshTarget(); ok {
		return bt.Success
	}
	return bt.Failure
}

func followEnemy(ctx *bt.Context) bt.Status {
	t, ok := ctx.Agent.Target()
	if !ok {
		return bt.Failure
	}
	if ctx.Agent.Position().Dist(t.Position) > FollowStopDistance(ctx.Agent.ThrowRange()) {
		ctx.Agent.MoveTo(t.Position)
	} else {
		ctx.Agent.StopMoving()
	}
	return bt.Success
}

func faceTarget(ctx *bt.Context) bt.Status {
	t, ok := ctx.Agent.Target()
	if !ok {
		return bt.Failure
	}
	ctx.Agent.FaceTarget(t.Position)
	return bt.Success
}

func throwAtTarget(ctx *bt.Context) bt.Status {
	t, ok := ctx.Agent.Target()
	if !ok || ctx.Agent.Position().Dist(t.Position) > ctx.Agent.ThrowRange() {
		return bt.Failure
	}
	if !ctx.Agent.Throw(t.Position) {
		return bt.Failure
	}
	return bt.Success
}

func nearestPowerUp(s blackboard.Snapshot, radius float64) (capability.PowerUp, bool) {
	return closestPowerUp(s.Position, s.VisiblePowerUps, radius)
}

// closestPowerUp returns the power-up nearest to from within radius.
func closestPowerUp(from physics.Vec2, ups []capability.PowerUp, radius float64) (capability.PowerUp, bool) {
	var best capability.PowerUp
	bestDist := radius
	found := false
	for _, p := range ups {
		if d := from.Dist(p.Position); d <= bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}

// collectLeaf walks to the nearest power-up and picks it up once in reach.
type collectLeaf struct {
	radius float64
}

func (l collectLeaf) Execute(ctx *bt.Context) bt.Status {
	s := ctx.BB.Snapshot()
	p, ok := nearestPowerUp(s, l.radius)
	if !ok {
		return bt.Failure
	}
	if s.Position.Dist(p.Position) <= PickupRadius {
		if ctx.Agent.ConsumePowerUp(p.ID) {
			return bt.Success
		}
		return bt.Failure
	}
	ctx.Agent.MoveTo(p.Position)
	return bt.Success
}

// advanceLeaf heads for the objective. The move is issued again after an
// arrival or when it has not arrived within timeout frames.
type advanceLeaf struct {
	timeout  uint64
	issued   bool
	issuedAt uint64
}

func (l *advanceLeaf) Execute(ctx *bt.Context) bt.Status {
	s := ctx.BB.Snapshot()
	if !s.HasObjective {
		return bt.Failure
	}
	arrived := ctx.BB.Remove(KeyArrived)
	if !l.issued || arrived || ctx.Frame-l.issuedAt > l.timeout {
		ctx.Agent.MoveTo(s.Objective)
		l.issued, l.issuedAt = true, ctx.Frame
	}
	return bt.Success
}

// guardLeaf patrols in front of the agent's flag zone.
type guardLeaf struct {
	brain  *brain
	point  physics.Vec2
	placed bool
}

func (l *guardLeaf) Execute(ctx *bt.Context) bt.Status {
	p, ok := l.brain.patrolPoint(ctx.Frame)
	if !ok {
		return bt.Failure
	}
	if !l.placed || !p.Equal(l.point) {
		ctx.Agent.MoveTo(p)
		l.point, l.placed = p, true
	}
	return bt.Success
}
