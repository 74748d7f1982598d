// Package npc runs the decision engines of every agent in a match.
//
// A Controller owns one agent's inbox and top-level driver. Each Update
// drains the inbox, hands every event to the translator (which turns it into
// condition latches or blackboard writes) and then updates the driver once.
package npc

import (
	"github.com/zeusync/arena/internal/core/ai/capability"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// Driver is any top-level engine: an fsm.Machine, a bt.Executor or a
// utility.Arbiter.
type Driver interface {
	Update()
}

// Translator turns one host event into engine input.
type Translator func(ev capability.Event)

type Option func(*Controller)

// WithInbox uses in instead of a fresh inbox.
func WithInbox(in *capability.Inbox) Option {
	return func(c *Controller) { c.inbox = in }
}

func WithTranslator(t Translator) Option {
	return func(c *Controller) { c.translate = t }
}

func WithLogger(l log.Log) Option {
	return func(c *Controller) { c.log = l }
}

type Controller struct {
	agent     capability.Agent
	driver    Driver
	inbox     *capability.Inbox
	translate Translator
	updates   uint64
	log       log.Log
}

func NewController(agent capability.Agent, driver Driver, opts ...Option) *Controller {
	c := &Controller{
		agent:  agent,
		driver: driver,
		log:    log.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.inbox == nil {
		c.inbox = capability.NewInbox()
	}
	return c
}

func (c *Controller) ID() string               { return c.agent.ID() }
func (c *Controller) Agent() capability.Agent  { return c.agent }
func (c *Controller) Inbox() *capability.Inbox { return c.inbox }
func (c *Controller) Driver() Driver           { return c.driver }
func (c *Controller) Updates() uint64          { return c.updates }

// Update delivers queued events and runs the driver once.
func (c *Controller) Update() {
	for _, ev := range c.inbox.Drain() {
		if c.translate == nil {
			continue
		}
		c.log.Debug("npc: event",
			log.String("agent", c.agent.ID()),
			log.String("kind", ev.Kind.String()),
			log.Uint64("frame", ev.Frame),
		)
		c.translate(ev)
	}
	c.updates++
	if c.driver != nil {
		c.driver.Update()
	}
}

// Close detaches the inbox from its bus.
func (c *Controller) Close() error {
	return c.inbox.Detach()
}
