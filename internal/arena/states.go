package arena

import (
	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/ai/fsm"
	"github.com/zeusync/arena/internal/core/systems/physics"
)

// State names, as used in transition tables.
const (
	StateSpawned         = "spawned"
	StateIdle            = "idle"
	StateMoveToObjective = "move_to_objective"
	StateProtect         = "protect"
	StateCombat          = "combat"
	StateDodge           = "dodge"
	StateDead            = "dead"
	StateCollect         = "collect"

	StateAcquireTarget = "acquire_target"
	StateFollowEnemy   = "follow_enemy"
	StateFaceTarget    = "face_target"
	StateThrow         = "throw"
)

// states is the full state set of one agent. Combat is a container whose
// substates run in order: acquire, follow, face, throw.
type states struct {
	spawned   *fsm.State
	idle      *fsm.State
	objective *fsm.State
	protect   *fsm.State
	combat    *fsm.State
	dodge     *fsm.State
	dead      *fsm.State
	collect   *fsm.State
}

func newStates(b *brain) *states {
	return &states{
		spawned:   fsm.NewState(StateSpawned, &spawnedState{brain: b}),
		idle:      fsm.NewState(StateIdle, &idleState{brain: b}),
		objective: fsm.NewState(StateMoveToObjective, &objectiveState{}),
		protect:   fsm.NewState(StateProtect, &protectState{brain: b}),
		combat: fsm.NewState(StateCombat, combatState{},
			fsm.NewState(StateAcquireTarget, acquireTargetState{}),
			fsm.NewState(StateFollowEnemy, followEnemyState{}),
			fsm.NewState(StateFaceTarget, faceTargetState{}),
			fsm.NewState(StateThrow, throwState{}),
		),
		dodge:   fsm.NewState(StateDodge, &dodgeState{brain: b}),
		dead:    fsm.NewState(StateDead, &deadState{brain: b}),
		collect: fsm.NewState(StateCollect, collectState{}),
	}
}

// all returns the top-level states.
func (s *states) all() []*fsm.State {
	return []*fsm.State{s.spawned, s.idle, s.objective, s.protect, s.combat, s.dodge, s.dead, s.collect}
}

func (s *states) byName(name string) (*fsm.State, bool) {
	for _, st := range s.all() {
		if st.Name() == name {
			return st, true
		}
	}
	return nil, false
}

// base gives states no-op hooks to override.
type base struct{}

func (base) Enter(*fsm.Context)   {}
func (base) Execute(*fsm.Context) {}
func (base) Exit(*fsm.Context)    {}

type spawnedState struct {
	base
	brain *brain
}

func (s *spawnedState) Enter(*fsm.Context) { s.brain.clearThreat() }

func (s *spawnedState) Execute(ctx *fsm.Context) { ctx.Signal(fsm.Idle) }

// idleState walks to the last place an enemy was seen, then hands over to
// the agent's role.
type idleState struct {
	base
	brain *brain
}

func (s *idleState) Enter(ctx *fsm.Context) { ctx.Agent.StopMoving() }

func (s *idleState) Execute(ctx *fsm.Context) {
	a := ctx.Agent
	if !capability.Ready(a) {
		return
	}
	if len(a.VisibleEnemies()) > 0 {
		ctx.Signal(fsm.SeesEnemy)
		return
	}
	if last, ok := s.brain.lastSighting(ctx.Frame); ok {
		if a.Position().Dist(last.Position) > PickupRadius {
			a.MoveTo(last.Position)
			return
		}
		s.brain.memory.Forget(last.SeenAt + 1)
	}
	if s.brain.role == Defender {
		ctx.Signal(fsm.Protect)
		return
	}
	ctx.Signal(fsm.MoveToObjective)
}

// objectiveState heads for the enemy flag zone, re-issuing the move when it
// has not arrived within MoveTimeoutFrames.
type objectiveState struct {
	base
	issuedAt uint64
}

func (s *objectiveState) Enter(ctx *fsm.Context) { s.advance(ctx) }

func (s *objectiveState) Execute(ctx *fsm.Context) {
	if !capability.Ready(ctx.Agent) {
		return
	}
	if len(ctx.Agent.VisibleEnemies()) > 0 {
		ctx.Signal(fsm.SeesEnemy)
		return
	}
	if ctx.Frame-s.issuedAt > MoveTimeoutFrames {
		s.advance(ctx)
	}
}

func (s *objectiveState) advance(ctx *fsm.Context) {
	if goal, ok := ctx.Agent.Objective(); ok {
		ctx.Agent.MoveTo(goal)
	}
	s.issuedAt = ctx.Frame
}

type protectState struct {
	base
	brain  *brain
	point  physics.Vec2
	placed bool
}

func (s *protectState) Enter(ctx *fsm.Context) {
	s.placed = false
	s.patrol(ctx)
}

func (s *protectState) Execute(ctx *fsm.Context) {
	if !capability.Ready(ctx.Agent) {
		return
	}
	if len(ctx.Agent.VisibleEnemies()) > 0 {
		ctx.Signal(fsm.SeesEnemy)
		return
	}
	s.patrol(ctx)
}

func (s *protectState) patrol(ctx *fsm.Context) {
	p, ok := s.brain.patrolPoint(ctx.Frame)
	if !ok || (s.placed && p.Equal(s.point)) {
		return
	}
	s.point, s.placed = p, true
	ctx.Agent.MoveTo(p)
}

type combatState struct{ base }

func (combatState) Exit(ctx *fsm.Context) {
	ctx.Agent.RemoveTarget()
	ctx.Agent.StopMoving()
}

type acquireTargetState struct{ base }

func (acquireTargetState) Execute(ctx *fsm.Context) {
	if !capability.Ready(ctx.Agent) {
		return
	}
	if _, ok := ctx.Agent.RefreshTarget(); !ok {
		ctx.Signal(fsm.Idle)
	}
}

// followEnemyState closes in until FollowStopDistance.
type followEnemyState struct{ base }

func (followEnemyState) Execute(ctx *fsm.Context) {
	a := ctx.Agent
	t, ok := a.Target()
	if !ok || !capability.Ready(a) {
		return
	}
	if a.Position().Dist(t.Position) > FollowStopDistance(a.ThrowRange()) {
		a.MoveTo(t.Position)
		return
	}
	a.StopMoving()
}

type faceTargetState struct{ base }

func (faceTargetState) Execute(ctx *fsm.Context) {
	if t, ok := ctx.Agent.Target(); ok {
		ctx.Agent.FaceTarget(t.Position)
	}
}

type throwState struct{ base }

func (throwState) Execute(ctx *fsm.Context) {
	a := ctx.Agent
	t, ok := a.Target()
	if !ok || !capability.Ready(a) || a.Position().Dist(t.Position) > a.ThrowRange() {
		return
	}
	a.Throw(t.Position)
}

// dodgeState rolls across the path of the last threatening ball and goes
// idle once the roll is over.
type dodgeState struct {
	base
	brain *brain
}

func (s *dodgeState) Enter(ctx *fsm.Context) {
	if s.brain.threatened {
		ctx.Agent.StartDodge(s.brain.dodgeDirection())
	}
}

func (s *dodgeState) Execute(ctx *fsm.Context) {
	if !ctx.Agent.IsAlive() || !ctx.Agent.IsEnabled() {
		return
	}
	s.brain.clearThreat()
	ctx.Signal(fsm.Idle)
}

type deadState struct {
	base
	brain *brain
}

func (s *deadState) Enter(ctx *fsm.Context) {
	ctx.Agent.StopMoving()
	ctx.Agent.RemoveTarget()
	s.brain.clearThreat()
}

// collectState walks to the nearest power-up in reach and picks it up.
type collectState struct{ base }

func (collectState) Execute(ctx *fsm.Context) {
	a := ctx.Agent
	if !capability.Ready(a) {
		return
	}
	p, ok := closestPowerUp(a.Position(), a.VisiblePowerUps(), CollectRadius)
	if !ok {
		ctx.Signal(fsm.Idle)
		return
	}
	if a.Position().Dist(p.Position) <= PickupRadius {
		a.ConsumePowerUp(p.ID)
		return
	}
	a.MoveTo(p.Position)
}
