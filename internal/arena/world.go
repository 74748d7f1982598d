// Package arena is the reference host for the decision engines: a small,
// deterministic team dodgeball arena. Two teams throw balls at each other,
// dodge incoming ones, collect speed power-ups and race for the enemy flag
// zone. Every agent is driven by one of the fsm, bt or utility policies
// through the capability contract, and learns about the world through
// events published on its own bus topic.
package arena

import (
	"fmt"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/systems/physics"
	"github.com/zeusync/arena/pkg/sequence"
)

const (
	HitRadius     = 0.6
	ThreatRadius  = 1.5
	PickupRadius  = 1.0
	CaptureRadius = 1.0
	ThrowCooldown = 10
	BoostFrames   = 120
	BoostFactor   = 1.5
	DodgeFactor   = 2.0

	// threatLookahead is how many frames of a ball's path are checked
	// against an agent before warning it.
	threatLookahead = 12
	powerUpKind     = "speed"
)

type Team int

const (
	Blue Team = iota
	Red
)

func (t Team) String() string {
	if t == Blue {
		return "blue"
	}
	return "red"
}

func (t Team) Other() Team { return 1 - t }

// Score is one team's tally.
type Score struct {
	Kills    int
	Captures int
	Throws   int
}

// Points weighs a capture as three kills.
func (s Score) Points() int { return s.Kills + 3*s.Captures }

type Result struct {
	Frames uint64
	Teams  [2]Score
}

// Winner returns the team with more points, false on a draw.
func (r Result) Winner() (Team, bool) {
	blue, red := r.Teams[Blue].Points(), r.Teams[Red].Points()
	switch {
	case blue > red:
		return Blue, true
	case red > blue:
		return Red, true
	}
	return Blue, false
}

type flight struct {
	ball      capability.Ball
	team      Team
	travelled float64
}

// World owns every body, ball and power-up of one match. It is stepped by a
// single goroutine and is not safe for concurrent use.
type World struct {
	settings Settings
	bus      bus.EventBus
	log      log.Log
	rng      *rand.Rand

	frame    uint64
	bodies   []*Body
	byID     map[string]*Body
	flights  []*flight
	powerUps []capability.PowerUp
	respawns *sequence.PriorityQueue[string]
	result   Result
	ballSeq  int
	powerSeq int
}

func NewWorld(s Settings, b bus.EventBus, opts ...Option) (*World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	w := &World{
		settings: s,
		bus:      b,
		log:      o.log.Named("world"),
		rng:      rand.New(rand.NewPCG(s.Seed, xxhash.Sum64String("arena"))),
		byID:     make(map[string]*Body),
		respawns: sequence.NewPriorityQueue[string](),
	}
	for i := 0; i < s.PowerUps; i++ {
		w.placePowerUp()
	}
	return w, nil
}

// Spawn adds a live body to team at its base. Body IDs are name-based UUIDs
// derived from the seed, so a replay with the same settings reproduces them.
func (w *World) Spawn(team Team) *Body {
	index := 0
	for _, b := range w.bodies {
		if b.team == team {
			index++
		}
	}
	name := fmt.Sprintf("%s-%d", team, index)
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("arena/%d/%s", w.settings.Seed, name))).String()
	b := &Body{
		world:   w,
		id:      id,
		name:    name,
		team:    team,
		index:   index,
		rng:     rand.New(rand.NewPCG(xxhash.Sum64String(id)^w.settings.Seed, uint64(index))),
		alive:   true,
		seen:    make(map[string]bool),
		threats: make(map[string]bool),
	}
	b.pos = w.spawnPoint(b)
	b.facing = w.Base(team.Other()).Sub(b.pos).Normalize()
	w.bodies = append(w.bodies, b)
	w.byID[id] = b
	w.log.Debug("body spawned", log.String("agent", id), log.String("name", name))
	return b
}

func (w *World) Settings() Settings { return w.settings }
func (w *World) Frame() uint64      { return w.frame }

func (w *World) Result() Result {
	r := w.result
	r.Frames = w.frame
	return r
}

// Bodies returns every body in spawn order.
func (w *World) Bodies() []*Body {
	return append([]*Body(nil), w.bodies...)
}

func (w *World) Body(id string) (*Body, bool) {
	b, ok := w.byID[id]
	return b, ok
}

// Balls returns the balls in flight.
func (w *World) Balls() []capability.Ball {
	out := make([]capability.Ball, len(w.flights))
	for i, f := range w.flights {
		out[i] = f.ball
	}
	return out
}

func (w *World) PowerUps() []capability.PowerUp {
	return append([]capability.PowerUp(nil), w.powerUps...)
}

// Base returns the flag zone of team.
func (w *World) Base(team Team) physics.Vec2 {
	if team == Blue {
		return physics.V(2, w.settings.Height/2)
	}
	return physics.V(w.settings.Width-2, w.settings.Height/2)
}

// Announce publishes Respawned to every live body. Hosts call it once after
// the agents are wired so that the engines leave their initial state.
func (w *World) Announce() {
	for _, b := range w.bodies {
		if b.alive {
			w.publish(b, capability.Event{Kind: capability.Respawned})
		}
	}
}

// Step advances the world one frame: due respawns, movement, flag captures,
// ball flight and hits, threat warnings and vision changes, in that order.
func (w *World) Step() {
	w.frame++
	w.respawnDue()
	for _, b := range w.bodies {
		w.move(b)
	}
	w.captureFlags()
	w.flyBalls()
	w.detectThreats()
	w.updateVision()
}

func (w *World) spawnPoint(b *Body) physics.Vec2 {
	spread := float64(b.index) - float64(w.settings.TeamSize-1)/2
	jitter := physics.V(b.rng.Float64()-0.5, b.rng.Float64()-0.5)
	offset := physics.V(0, spread*2).Add(jitter)
	return w.Base(b.team).Add(offset).Clamp(w.settings.Width, w.settings.Height)
}

func (w *World) placePowerUp() {
	w.powerSeq++
	s := w.settings
	p := physics.V(
		s.Width*0.25+w.rng.Float64()*s.Width*0.5,
		1+w.rng.Float64()*(s.Height-2),
	)
	w.powerUps = append(w.powerUps, capability.PowerUp{
		ID:       fmt.Sprintf("power-%d", w.powerSeq),
		Kind:     powerUpKind,
		Position: p,
	})
}

func (w *World) consumePowerUp(b *Body, id string) bool {
	for i, p := range w.powerUps {
		if p.ID != id {
			continue
		}
		if b.pos.Dist(p.Position) > PickupRadius {
			return false
		}
		w.powerUps = append(w.powerUps[:i], w.powerUps[i+1:]...)
		b.boostUntil = w.frame + BoostFrames
		w.placePowerUp()
		w.log.Debug("power-up consumed", log.String("agent", b.id), log.String("power_up", id))
		return true
	}
	return false
}

func (w *World) launch(b *Body, dir physics.Vec2) {
	w.ballSeq++
	f := &flight{
		ball: capability.Ball{
			ID:       fmt.Sprintf("ball-%d", w.ballSeq),
			Owner:    b.id,
			Position: b.pos,
			Velocity: dir.Scale(w.settings.BallSpeed),
		},
		team: b.team,
	}
	w.flights = append(w.flights, f)
	w.result.Teams[b.team].Throws++
}

func (w *World) move(b *Body) {
	if !b.alive {
		return
	}
	if w.frame <= b.dodgeUntil {
		b.pos = b.pos.Add(b.dodgeDir.Scale(w.settings.Speed * DodgeFactor)).Clamp(w.settings.Width, w.settings.Height)
		return
	}
	if !b.moving {
		return
	}
	b.pos = b.pos.StepToward(b.dest, b.speed())
	if b.pos.Equal(b.dest) {
		b.moving = false
		w.publish(b, capability.Event{Kind: capability.DestinationReached})
	}
}

func (w *World) captureFlags() {
	for _, b := range w.bodies {
		if !b.alive || b.pos.Dist(w.Base(b.team.Other())) > CaptureRadius {
			continue
		}
		w.result.Teams[b.team].Captures++
		b.pos = w.spawnPoint(b)
		b.moving = false
		w.log.Info("flag captured", log.String("agent", b.id), log.String("team", b.team.String()), log.Uint64("frame", w.frame))
	}
}

func (w *World) flyBalls() {
	kept := w.flights[:0]
	for _, f := range w.flights {
		prev := f.ball.Position
		next := prev.Add(f.ball.Velocity)
		f.ball.Position = next
		f.travelled += w.settings.BallSpeed

		var victim *Body
		for _, b := range w.bodies {
			if b.team == f.team || !b.alive || w.frame <= b.dodgeUntil {
				continue
			}
			if physics.ClosestApproach(prev, next, b.pos) <= HitRadius {
				victim = b
				break
			}
		}
		switch {
		case victim != nil:
			w.kill(victim, f.ball.Owner)
		case !w.inside(next) || f.travelled > 2*w.settings.ThrowRange:
		default:
			kept = append(kept, f)
			continue
		}
		for _, b := range w.bodies {
			delete(b.threats, f.ball.ID)
		}
	}
	for i := len(kept); i < len(w.flights); i++ {
		w.flights[i] = nil
	}
	w.flights = kept
}

func (w *World) inside(p physics.Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= w.settings.Width && p.Y <= w.settings.Height
}

func (w *World) kill(b *Body, by string) {
	b.alive = false
	b.moving = false
	b.target = ""
	b.deaths++
	clear(b.seen)
	clear(b.threats)
	w.result.Teams[b.team.Other()].Kills++
	due := w.frame + uint64(w.settings.RespawnFrames)
	w.respawns.Enqueue(b.id, -int(due))
	w.log.Debug("body hit", log.String("agent", b.id), log.String("by", by), log.Uint64("respawn_at", due))
	w.publish(b, capability.Event{Kind: capability.Died})
}

func (w *World) respawnDue() {
	for {
		id, prio, ok := w.respawns.Peek()
		if !ok || uint64(-prio) > w.frame {
			return
		}
		w.respawns.Dequeue()
		b := w.byID[id]
		b.alive = true
		b.pos = w.spawnPoint(b)
		b.dodgeUntil = 0
		b.boostUntil = 0
		w.publish(b, capability.Event{Kind: capability.Respawned})
	}
}

func (w *World) detectThreats() {
	for _, f := range w.flights {
		ahead := f.ball.Position.Add(f.ball.Velocity.Scale(threatLookahead))
		for _, b := range w.bodies {
			if b.team == f.team || !b.alive || b.threats[f.ball.ID] {
				continue
			}
			if f.ball.Position.Dist(b.pos) > w.settings.VisionRadius {
				continue
			}
			if physics.ClosestApproach(f.ball.Position, ahead, b.pos) > ThreatRadius {
				continue
			}
			b.threats[f.ball.ID] = true
			w.publish(b, capability.Event{Kind: capability.ThreatDetected, Ball: f.ball})
		}
	}
}

func (w *World) updateVision() {
	for _, b := range w.bodies {
		if !b.alive {
			continue
		}
		visible := b.VisibleEnemies()
		now := make(map[string]bool, len(visible))
		for _, e := range visible {
			now[e.ID] = true
			if !b.seen[e.ID] {
				w.publish(b, capability.Event{Kind: capability.EnemySpotted, Enemy: e})
			}
		}
		if len(b.seen) > 0 && len(visible) == 0 {
			w.publish(b, capability.Event{Kind: capability.NoMoreEnemies})
		}
		b.seen = now
	}
}

func (w *World) visible(b *Body, enemies bool) []capability.PerceivedAgent {
	var out []capability.PerceivedAgent
	for _, o := range w.bodies {
		if o == b || !o.alive || (o.team != b.team) != enemies {
			continue
		}
		if b.pos.Dist(o.pos) > w.settings.VisionRadius {
			continue
		}
		out = append(out, o.perceived())
	}
	return out
}

func (w *World) publish(b *Body, ev capability.Event) {
	ev.Agent = b.id
	ev.Frame = w.frame
	if w.bus == nil {
		return
	}
	if err := w.bus.PublishToTopic(b.id, ev); err != nil {
		w.log.Warn("event delivery failed", log.String("agent", b.id), log.String("event", ev.Kind.String()), log.Error(err))
	}
}
