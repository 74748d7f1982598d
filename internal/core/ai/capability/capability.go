// Package capability is the contract between the decision engines and the
// host game. The engines only query and command agents through Agent; how
// positions, vision or projectiles are computed is the host's business.
package capability

import (
	"github.com/zeusync/arena/internal/core/systems/physics"
)

// PerceivedAgent is an immutable snapshot of another agent as seen at SeenAt.
type PerceivedAgent struct {
	ID       string
	Team     int
	Position physics.Vec2
	SeenAt   uint64
}

// PowerUp is a pickup visible to the agent.
type PowerUp struct {
	ID       string
	Kind     string
	Position physics.Vec2
}

// Ball is a projectile in flight.
type Ball struct {
	ID       string
	Owner    string
	Position physics.Vec2
	Velocity physics.Vec2
}

// Perception is the query half of the contract. Slices are owned by the
// caller after return and come ordered as the host perceives them.
type Perception interface {
	Position() physics.Vec2
	IsAlive() bool
	IsEnabled() bool
	OnNavigableSurface() bool

	// Target returns the current target, if any.
	Target() (PerceivedAgent, bool)
	ThrowRange() float64

	VisibleEnemies() []PerceivedAgent
	VisibleAllies() []PerceivedAgent
	VisiblePowerUps() []PowerUp

	// Objective is the position the agent should advance to, when the mode has one.
	Objective() (physics.Vec2, bool)
	// FlagZone is the zone the agent's team defends, when the mode has one.
	FlagZone() (physics.Vec2, bool)
}

// Movement commands are fire-and-forget; the host reports arrival through
// a DestinationReached event.
type Movement interface {
	MoveTo(p physics.Vec2)
	StopMoving()
	StrafeTo(p physics.Vec2)
	FaceTarget(p physics.Vec2)
	StartDodge(direction physics.Vec2)
}

type Combat interface {
	// Throw launches a ball at target and reports whether it was thrown.
	Throw(target physics.Vec2) bool
	// RefreshTarget keeps the current target when still visible, otherwise
	// acquires the nearest visible enemy.
	RefreshTarget() (PerceivedAgent, bool)
	RemoveTarget()
	ConsumePowerUp(id string) bool
}

// Agent is everything an engine may ask of its host agent.
type Agent interface {
	ID() string
	Perception
	Movement
	Combat
}

// Ready reports whether the agent can act this frame. Engines skip the
// frame when it cannot.
func Ready(a Perception) bool {
	return a.IsAlive() && a.IsEnabled() && a.OnNavigableSurface()
}

// Nearest returns the agent closest to from, keeping the earliest on ties.
func Nearest(from physics.Vec2, agents []PerceivedAgent) (PerceivedAgent, bool) {
	if len(agents) == 0 {
		return PerceivedAgent{}, false
	}
	best := agents[0]
	bestDist := from.Dist(best.Position)
	for _, a := range agents[1:] {
		if d := from.Dist(a.Position); d < bestDist {
			best, bestDist = a, d
		}
	}
	return best, true
}
