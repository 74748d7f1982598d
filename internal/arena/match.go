package arena

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/npc"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// Match is one simulated game: a World, the bus it publishes on and one
// controller per body.
type Match struct {
	world   *World
	bus     bus.EventBus
	manager *npc.Manager
	log     log.Log
}

// NewMatch spawns TeamSize bodies per team, blue first, builds each body's
// engine with the policy of its team and attaches its inbox to the bus
// topic named after the body ID.
func NewMatch(s Settings, policies [2]Policy, opts ...Option) (*Match, error) {
	o := newOptions(opts)
	if o.defs == nil {
		defs, err := DefaultDefinitions()
		if err != nil {
			return nil, err
		}
		o.defs = defs
	}
	eb := bus.New()
	w, err := NewWorld(s, eb, opts...)
	if err != nil {
		return nil, err
	}
	m := &Match{
		world:   w,
		bus:     eb,
		manager: npc.NewManager(),
		log:     o.log.Named("match"),
	}
	agentOpts := append(append([]Option(nil), opts...), WithDefinitions(o.defs), WithClock(w.Frame))
	for _, team := range [...]Team{Blue, Red} {
		for i := 0; i < s.TeamSize; i++ {
			body := w.Spawn(team)
			if err := m.add(body, policies[team], agentOpts); err != nil {
				return nil, errors.CombineErrors(errors.Wrapf(err, "agent %s", body.Name()), m.Close())
			}
		}
	}
	w.Announce()
	m.log.Info("match ready",
		log.String("blue", string(policies[Blue])),
		log.String("red", string(policies[Red])),
		log.Int("team_size", s.TeamSize),
		log.Uint64("seed", s.Seed),
	)
	return m, nil
}

func (m *Match) add(body *Body, p Policy, opts []Option) error {
	c, err := Build(p, body, RoleFor(body.Index()), opts...)
	if err != nil {
		return err
	}
	if err := c.Inbox().Attach(m.bus, body.ID()); err != nil {
		return err
	}
	if err := m.manager.Add(c); err != nil {
		return errors.CombineErrors(err, c.Close())
	}
	return nil
}

func (m *Match) World() *World         { return m.world }
func (m *Match) Manager() *npc.Manager { return m.manager }
func (m *Match) Bus() bus.EventBus     { return m.bus }

// Step advances the world one frame and then updates every agent.
func (m *Match) Step() {
	m.world.Step()
	m.manager.UpdateAll()
}

// Run plays the configured number of frames. It stops early with the
// context error when ctx is done.
func (m *Match) Run(ctx context.Context) (Result, error) {
	for m.world.Frame() < uint64(m.world.settings.Frames) {
		if err := ctx.Err(); err != nil {
			return m.world.Result(), errors.Wrapf(err, "match stopped at frame %d", m.world.Frame())
		}
		m.Step()
	}
	r := m.world.Result()
	m.log.Info("match finished",
		log.Uint64("frames", r.Frames),
		log.Int("blue_points", r.Teams[Blue].Points()),
		log.Int("red_points", r.Teams[Red].Points()),
	)
	return r, nil
}

// Close detaches every agent from the bus.
func (m *Match) Close() error {
	return m.manager.Close()
}
