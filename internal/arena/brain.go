package arena

import (
	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/systems/physics"
)

// Role splits a team between pushing for the enemy flag and guarding its own.
type Role int

const (
	Attacker Role = iota
	Defender
)

func (r Role) String() string {
	if r == Attacker {
		return "attacker"
	}
	return "defender"
}

// RoleFor alternates roles by spawn index, starting with an attacker.
func RoleFor(index int) Role {
	if index%2 == 0 {
		return Attacker
	}
	return Defender
}

const (
	// MemoryFrames is how long a sighting stays worth investigating.
	MemoryFrames = 90
	// PatrolRadius is the distance defenders keep around their flag zone.
	PatrolRadius = 3.0
	// PatrolFrames is how often a defender moves to the next patrol point.
	PatrolFrames = 60
	// MoveTimeoutFrames re-issues a move that has not arrived in time.
	MoveTimeoutFrames = 240
	// CollectFrames is how long an agent chases a power-up before giving up.
	CollectFrames = 90
	// CollectRadius is how close a power-up must be to be worth a detour.
	CollectRadius = 6.0

	// FollowRangeOffset is subtracted from the throw range to get the
	// distance at which an agent stops closing in on its target.
	FollowRangeOffset = 1.5
)

// FollowStopDistance returns the distance at which FollowEnemy stops
// approaching. Ranges at or below FollowRangeOffset give a non-positive
// distance, so the follower never stops.
func FollowStopDistance(throwRange float64) float64 {
	return throwRange - FollowRangeOffset
}

// brain is the policy-side memory of one agent, shared by its states or
// leaves and the event translator.
type brain struct {
	agent  capability.Agent
	role   Role
	memory *capability.Memory

	threat     capability.Ball
	threatened bool
	threatAt   uint64
}

func newBrain(agent capability.Agent, role Role) *brain {
	return &brain{agent: agent, role: role, memory: capability.NewMemory()}
}

// note does the bookkeeping every policy shares.
func (b *brain) note(ev capability.Event) {
	switch ev.Kind {
	case capability.EnemySpotted:
		b.memory.Observe(ev.Enemy)
	case capability.ThreatDetected:
		b.threat = ev.Ball
		b.threatened = true
		b.threatAt = ev.Frame
	case capability.Died:
		b.clearThreat()
		b.memory.Clear()
	}
}

func (b *brain) clearThreat() {
	b.threat = capability.Ball{}
	b.threatened = false
}

// dodgeDirection points across the threatening ball's path.
func (b *brain) dodgeDirection() physics.Vec2 {
	return dodgeAway(b.agent.Position(), b.threat)
}

// dodgeAway points across the path of ball, away from its line.
func dodgeAway(pos physics.Vec2, ball capability.Ball) physics.Vec2 {
	away := pos.Sub(ball.Position)
	perp := ball.Velocity.Perp()
	if perp.IsZero() {
		return away.Normalize()
	}
	if perp.Dot(away) < 0 {
		perp = perp.Scale(-1)
	}
	return perp.Normalize()
}

// lastSighting returns the most recent remembered enemy seen within
// MemoryFrames of frame.
func (b *brain) lastSighting(frame uint64) (capability.PerceivedAgent, bool) {
	if frame > MemoryFrames {
		b.memory.Forget(frame - MemoryFrames)
	}
	var best capability.PerceivedAgent
	found := false
	for _, p := range b.memory.All() {
		if !found || p.SeenAt > best.SeenAt {
			best, found = p, true
		}
	}
	return best, found
}

// patrolPoint returns one of the points on a short line in front of the
// flag zone, moving to the next one every PatrolFrames frames.
func (b *brain) patrolPoint(frame uint64) (physics.Vec2, bool) {
	zone, ok := b.agent.FlagZone()
	if !ok {
		return physics.Vec2{}, false
	}
	forward := physics.V(1, 0)
	if goal, ok := b.agent.Objective(); ok {
		if f := goal.Sub(zone).Normalize(); !f.IsZero() {
			forward = f
		}
	}
	steps := [...]float64{-1, 0, 1, 0}
	i := (frame / PatrolFrames) % uint64(len(steps))
	return zone.Add(forward.Scale(PatrolRadius)).Add(forward.Perp().Scale(steps[i] * PatrolRadius)), true
}
