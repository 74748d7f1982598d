// Package capabilitytest provides a scriptable capability.Agent for tests.
package capabilitytest

import (
	"fmt"

	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/systems/physics"
)

// Agent is an in-memory capability.Agent. Query results come from its
// exported fields; commands are appended to Calls as short strings.
type Agent struct {
	Name      string
	Pos       physics.Vec2
	Alive     bool
	Enabled   bool
	OnSurface bool

	Current   *capability.PerceivedAgent
	Range     float64
	Enemies   []capability.PerceivedAgent
	Allies    []capability.PerceivedAgent
	PowerUps  []capability.PowerUp
	Goal      *physics.Vec2
	Zone      *physics.Vec2
	CanThrow  bool

	// Destination is the last MoveTo target, nil after StopMoving.
	Destination *physics.Vec2

	Calls []string
}

var _ capability.Agent = (*Agent)(nil)

// New returns a ready agent at the origin with a throw range of 10.
func New(name string) *Agent {
	return &Agent{
		Name:      name,
		Alive:     true,
		Enabled:   true,
		OnSurface: true,
		Range:     10,
		CanThrow:  true,
	}
}

func (a *Agent) ID() string               { return a.Name }
func (a *Agent) Position() physics.Vec2   { return a.Pos }
func (a *Agent) IsAlive() bool            { return a.Alive }
func (a *Agent) IsEnabled() bool          { return a.Enabled }
func (a *Agent) OnNavigableSurface() bool { return a.OnSurface }
func (a *Agent) ThrowRange() float64      { return a.Range }

func (a *Agent) Target() (capability.PerceivedAgent, bool) {
	if a.Current == nil {
		return capability.PerceivedAgent{}, false
	}
	return *a.Current, true
}

func (a *Agent) VisibleEnemies() []capability.PerceivedAgent {
	return append([]capability.PerceivedAgent(nil), a.Enemies...)
}

func (a *Agent) VisibleAllies() []capability.PerceivedAgent {
	return append([]capability.PerceivedAgent(nil), a.Allies...)
}

func (a *Agent) VisiblePowerUps() []capability.PowerUp {
	return append([]capability.PowerUp(nil), a.PowerUps...)
}

func (a *Agent) Objective() (physics.Vec2, bool) {
	if a.Goal == nil {
		return physics.Vec2{}, false
	}
	return *a.Goal, true
}

func (a *Agent) FlagZone() (physics.Vec2, bool) {
	if a.Zone == nil {
		return physics.Vec2{}, false
	}
	return *a.Zone, true
}

func (a *Agent) MoveTo(p physics.Vec2) {
	a.Destination = &p
	a.record("move", p)
}

func (a *Agent) StopMoving() {
	a.Destination = nil
	a.Calls = append(a.Calls, "stop")
}

func (a *Agent) StrafeTo(p physics.Vec2)           { a.record("strafe", p) }
func (a *Agent) FaceTarget(p physics.Vec2)         { a.record("face", p) }
func (a *Agent) StartDodge(direction physics.Vec2) { a.record("dodge", direction) }

func (a *Agent) Throw(target physics.Vec2) bool {
	a.record("throw", target)
	return a.CanThrow
}

func (a *Agent) RefreshTarget() (capability.PerceivedAgent, bool) {
	a.Calls = append(a.Calls, "refresh")
	if a.Current != nil {
		for _, e := range a.Enemies {
			if e.ID == a.Current.ID {
				*a.Current = e
				return e, true
			}
		}
	}
	e, ok := capability.Nearest(a.Pos, a.Enemies)
	if !ok {
		a.Current = nil
		return capability.PerceivedAgent{}, false
	}
	a.Current = &e
	return e, true
}

func (a *Agent) RemoveTarget() {
	a.Current = nil
	a.Calls = append(a.Calls, "untarget")
}

func (a *Agent) ConsumePowerUp(id string) bool {
	a.Calls = append(a.Calls, "consume "+id)
	for i, p := range a.PowerUps {
		if p.ID == id {
			a.PowerUps = append(a.PowerUps[:i], a.PowerUps[i+1:]...)
			return true
		}
	}
	return false
}

// Reset forgets recorded calls.
func (a *Agent) Reset() { a.Calls = nil }

func (a *Agent) record(verb string, p physics.Vec2) {
	a.Calls = append(a.Calls, fmt.Sprintf("%s %g,%g", verb, p.X, p.Y))
}
