package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/systems/physics"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.TeamSize = 1
	s.PowerUps = 0
	return s
}

func newTestWorld(t *testing.T, s Settings) *World {
	t.Helper()
	w, err := NewWorld(s, bus.New())
	require.NoError(t, err)
	return w
}

func listen(t *testing.T, w *World, b *Body) *capability.Inbox {
	t.Helper()
	in := capability.NewInbox()
	require.NoError(t, in.Attach(w.bus, b.ID()))
	return in
}

func kinds(evs []capability.Event) []capability.EventKind {
	out := make([]capability.EventKind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}

func steps(w *World, n int) {
	for i := 0; i < n; i++ {
		w.Step()
	}
}

func TestSpawnIDsFollowTheSeed(t *testing.T) {
	s := testSettings()
	a := newTestWorld(t, s).Spawn(Blue)
	b := newTestWorld(t, s).Spawn(Blue)
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, a.Position(), b.Position())
	assert.Equal(t, "blue-0", a.Name())

	s.Seed = 2
	c := newTestWorld(t, s).Spawn(Blue)
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
	for name, mutate := range map[string]func(*Settings){
		"width":      func(s *Settings) { s.Width = 0 },
		"team size":  func(s *Settings) { s.TeamSize = 0 },
		"frames":     func(s *Settings) { s.Frames = -1 },
		"vision":     func(s *Settings) { s.VisionRadius = 0 },
		"ball speed": func(s *Settings) { s.BallSpeed = 0 },
		"respawn":    func(s *Settings) { s.RespawnFrames = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			s := DefaultSettings()
			mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
			_, err := NewWorld(s, nil)
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}

func TestBallHitKillsAndRespawns(t *testing.T) {
	w := newTestWorld(t, testSettings())
	blue, red := w.Spawn(Blue), w.Spawn(Red)
	blue.pos, red.pos = physics.V(10, 12), physics.V(14, 12)
	blueIn, redIn := listen(t, w, blue), listen(t, w, red)

	require.True(t, blue.Throw(red.Position()))
	assert.False(t, blue.Throw(red.Position()), "cooldown")
	steps(w, 5)

	assert.False(t, red.IsAlive())
	assert.Equal(t, 1, red.Deaths())
	assert.Empty(t, w.Balls())
	assert.Equal(t, []capability.EventKind{
		capability.ThreatDetected, capability.EnemySpotted, capability.Died,
	}, kinds(redIn.Drain()))
	assert.Equal(t, []capability.EventKind{
		capability.EnemySpotted, capability.NoMoreEnemies,
	}, kinds(blueIn.Drain()))

	r := w.Result()
	assert.Equal(t, 1, r.Teams[Blue].Kills)
	assert.Equal(t, 1, r.Teams[Blue].Throws)
	winner, ok := r.Winner()
	require.True(t, ok)
	assert.Equal(t, Blue, winner)

	steps(w, w.settings.RespawnFrames-1)
	assert.False(t, red.IsAlive())
	w.Step()
	assert.True(t, red.IsAlive())
	assert.Equal(t, uint64(5+w.settings.RespawnFrames), w.Frame())
	evs := redIn.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, capability.Respawned, evs[0].Kind)
	assert.True(t, red.Position().Near(w.Base(Red), 1))
}

func TestDodgingBodyIsImmune(t *testing.T) {
	w := newTestWorld(t, testSettings())
	blue, red := w.Spawn(Blue), w.Spawn(Red)
	blue.pos, red.pos = physics.V(10, 12), physics.V(14, 12)

	require.True(t, blue.Throw(red.Position()))
	red.StartDodge(physics.V(0, 1))
	assert.True(t, red.Dodging())
	assert.False(t, red.IsEnabled())
	assert.False(t, red.Throw(blue.Position()), "no throwing mid roll")

	steps(w, w.settings.DodgeFrames)
	assert.True(t, red.IsAlive())
	assert.True(t, red.IsEnabled())
	assert.Greater(t, red.Position().Y, 12.0)

	steps(w, 20)
	assert.Empty(t, w.Balls(), "ball expires after twice the throw range")
	assert.True(t, red.IsAlive())
}

func TestThrowNeedsRange(t *testing.T) {
	w := newTestWorld(t, testSettings())
	blue := w.Spawn(Blue)
	blue.pos = physics.V(10, 12)
	assert.False(t, blue.Throw(physics.V(30, 12)))
	assert.False(t, blue.Throw(blue.Position()))
	require.True(t, blue.Throw(physics.V(12, 12)))
	steps(w, ThrowCooldown)
	assert.True(t, blue.Throw(physics.V(12, 12)))
}

func TestVisionEvents(t *testing.T) {
	w := newTestWorld(t, testSettings())
	blue, red := w.Spawn(Blue), w.Spawn(Red)
	blue.pos, red.pos = physics.V(10, 12), physics.V(25, 12)
	in := listen(t, w, blue)

	w.Step()
	assert.Empty(t, in.Drain())

	red.pos = physics.V(18, 12)
	w.Step()
	w.Step()
	evs := in.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, capability.EnemySpotted, evs[0].Kind)
	assert.Equal(t, red.ID(), evs[0].Enemy.ID)
	assert.Equal(t, uint64(2), evs[0].Enemy.SeenAt)

	red.pos = physics.V(30, 12)
	w.Step()
	assert.Equal(t, []capability.EventKind{capability.NoMoreEnemies}, kinds(in.Drain()))
}

func TestMoveToReportsArrival(t *testing.T) {
	w := newTestWorld(t, testSettings())
	blue := w.Spawn(Blue)
	blue.pos = physics.V(10, 12)
	in := listen(t, w, blue)

	blue.MoveTo(physics.V(11, 12))
	dest, moving := blue.Destination()
	require.True(t, moving)
	assert.Equal(t, physics.V(11, 12), dest)

	steps(w, 3)
	assert.Empty(t, in.Drain())
	w.Step()
	assert.Equal(t, []capability.EventKind{capability.DestinationReached}, kinds(in.Drain()))
	assert.Equal(t, physics.V(11, 12), blue.Position())
	_, moving = blue.Destination()
	assert.False(t, moving)

	blue.StrafeTo(physics.V(-5, 12))
	assert.True(t, blue.Strafing())
	dest, _ = blue.Destination()
	assert.Equal(t, physics.V(0, 12), dest, "destinations are clamped to the arena")
}

func TestPowerUpBoostsAndRespawns(t *testing.T) {
	s := testSettings()
	s.PowerUps = 1
	w := newTestWorld(t, s)
	blue := w.Spawn(Blue)
	p := w.PowerUps()[0]

	assert.False(t, blue.ConsumePowerUp(p.ID), "out of reach")
	blue.pos = p.Position
	assert.Contains(t, blue.VisiblePowerUps(), p)
	require.True(t, blue.ConsumePowerUp(p.ID))
	assert.False(t, blue.ConsumePowerUp(p.ID))
	assert.True(t, blue.Boosted())
	require.Len(t, w.PowerUps(), 1)
	assert.NotEqual(t, p.ID, w.PowerUps()[0].ID)

	start := blue.Position()
	blue.MoveTo(start.Add(physics.V(0, -5)))
	w.Step()
	assert.InDelta(t, s.Speed*BoostFactor, start.Dist(blue.Position()), 1e-9)
}

func TestCaptureScoresAndSendsHome(t *testing.T) {
	w := newTestWorld(t, testSettings())
	blue := w.Spawn(Blue)
	blue.pos = w.Base(Red).Sub(physics.V(0.5, 0))
	w.Step()
	assert.Equal(t, 1, w.Result().Teams[Blue].Captures)
	assert.Equal(t, 3, w.Result().Teams[Blue].Points())
	assert.True(t, blue.Position().Near(w.Base(Blue), 1))
}

func TestTargetFollowsVision(t *testing.T) {
	w := newTestWorld(t, testSettings())
	blue, red := w.Spawn(Blue), w.Spawn(Red)
	blue.pos, red.pos = physics.V(10, 12), physics.V(15, 12)

	got, ok := blue.RefreshTarget()
	require.True(t, ok)
	assert.Equal(t, red.ID(), got.ID)
	assert.Equal(t, int(Red), got.Team)

	red.pos = physics.V(35, 12)
	_, ok = blue.Target()
	assert.False(t, ok)
	_, ok = blue.RefreshTarget()
	assert.False(t, ok)

	red.pos = physics.V(15, 12)
	blue.RefreshTarget()
	blue.RemoveTarget()
	_, ok = blue.Target()
	assert.False(t, ok)
}
