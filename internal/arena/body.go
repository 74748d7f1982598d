package arena

import (
	"math/rand/v2"

	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/systems/physics"
)

// Body is one agent in the world. It implements capability.Agent; commands
// take effect on the next World.Step.
type Body struct {
	world *World
	id    string
	name  string
	team  Team
	index int
	rng   *rand.Rand

	pos      physics.Vec2
	facing   physics.Vec2
	dest     physics.Vec2
	moving   bool
	strafing bool
	alive    bool
	deaths   int

	dodgeDir     physics.Vec2
	dodgeUntil   uint64
	throwReadyAt uint64
	boostUntil   uint64
	target       string

	seen    map[string]bool
	threats map[string]bool
}

var _ capability.Agent = (*Body)(nil)

func (b *Body) ID() string   { return b.id }
func (b *Body) Name() string { return b.name }
func (b *Body) Team() Team   { return b.team }
func (b *Body) Index() int   { return b.index }
func (b *Body) Deaths() int  { return b.deaths }

func (b *Body) Facing() physics.Vec2 { return b.facing }
func (b *Body) Strafing() bool       { return b.moving && b.strafing }

// Destination returns where the body is walking to, if anywhere.
func (b *Body) Destination() (physics.Vec2, bool) { return b.dest, b.moving }

// Dodging reports whether a dodge roll is in progress.
func (b *Body) Dodging() bool { return b.world.frame < b.dodgeUntil }

// Boosted reports whether a speed power-up is active.
func (b *Body) Boosted() bool { return b.world.frame < b.boostUntil }

func (b *Body) Position() physics.Vec2 { return b.pos }
func (b *Body) IsAlive() bool          { return b.alive }
func (b *Body) IsEnabled() bool        { return b.alive && !b.Dodging() }
func (b *Body) ThrowRange() float64    { return b.world.settings.ThrowRange }

func (b *Body) OnNavigableSurface() bool { return b.world.inside(b.pos) }

func (b *Body) Target() (capability.PerceivedAgent, bool) {
	if b.target == "" {
		return capability.PerceivedAgent{}, false
	}
	t, ok := b.world.byID[b.target]
	if !ok || !t.alive || b.pos.Dist(t.pos) > b.world.settings.VisionRadius {
		return capability.PerceivedAgent{}, false
	}
	return t.perceived(), true
}

func (b *Body) VisibleEnemies() []capability.PerceivedAgent { return b.world.visible(b, true) }
func (b *Body) VisibleAllies() []capability.PerceivedAgent  { return b.world.visible(b, false) }

func (b *Body) VisiblePowerUps() []capability.PowerUp {
	var out []capability.PowerUp
	for _, p := range b.world.powerUps {
		if b.pos.Dist(p.Position) <= b.world.settings.VisionRadius {
			out = append(out, p)
		}
	}
	return out
}

func (b *Body) Objective() (physics.Vec2, bool) { return b.world.Base(b.team.Other()), true }
func (b *Body) FlagZone() (physics.Vec2, bool)  { return b.world.Base(b.team), true }

func (b *Body) MoveTo(p physics.Vec2) {
	b.walk(p)
	b.strafing = false
	b.FaceTarget(p)
}

// StrafeTo walks to p without turning.
func (b *Body) StrafeTo(p physics.Vec2) {
	b.walk(p)
	b.strafing = true
}

func (b *Body) walk(p physics.Vec2) {
	if !b.alive {
		return
	}
	b.dest = p.Clamp(b.world.settings.Width, b.world.settings.Height)
	b.moving = true
}

func (b *Body) StopMoving() { b.moving = false }

func (b *Body) FaceTarget(p physics.Vec2) {
	if d := p.Sub(b.pos); !d.IsZero() {
		b.facing = d.Normalize()
	}
}

// StartDodge rolls along direction for DodgeFrames frames. The body is
// immune to hits and disabled while rolling. The direction is perturbed
// slightly so that teammates dodging the same ball spread out.
func (b *Body) StartDodge(direction physics.Vec2) {
	if !b.alive || b.Dodging() || direction.IsZero() || b.world.settings.DodgeFrames == 0 {
		return
	}
	dir := direction.Normalize()
	dir = dir.Add(dir.Perp().Scale((b.rng.Float64() - 0.5) * 0.2)).Normalize()
	b.dodgeDir = dir
	b.dodgeUntil = b.world.frame + uint64(b.world.settings.DodgeFrames)
	b.moving = false
}

func (b *Body) Throw(target physics.Vec2) bool {
	w := b.world
	if !b.IsEnabled() || w.frame < b.throwReadyAt {
		return false
	}
	d := target.Sub(b.pos)
	if d.IsZero() || d.Len() > w.settings.ThrowRange {
		return false
	}
	b.facing = d.Normalize()
	b.throwReadyAt = w.frame + ThrowCooldown
	w.launch(b, b.facing)
	return true
}

func (b *Body) RefreshTarget() (capability.PerceivedAgent, bool) {
	if t, ok := b.Target(); ok {
		return t, true
	}
	t, ok := capability.Nearest(b.pos, b.VisibleEnemies())
	if !ok {
		b.target = ""
		return capability.PerceivedAgent{}, false
	}
	b.target = t.ID
	return t, true
}

func (b *Body) RemoveTarget() { b.target = "" }

func (b *Body) ConsumePowerUp(id string) bool {
	if !b.alive {
		return false
	}
	return b.world.consumePowerUp(b, id)
}

func (b *Body) speed() float64 {
	if b.Boosted() {
		return b.world.settings.Speed * BoostFactor
	}
	return b.world.settings.Speed
}

func (b *Body) perceived() capability.PerceivedAgent {
	return capability.PerceivedAgent{
		ID:       b.id,
		Team:     int(b.team),
		Position: b.pos,
		SeenAt:   b.world.frame,
	}
}
