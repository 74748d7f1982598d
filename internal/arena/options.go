package arena

import (
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/observability/metrics"
)

// Option configures a World or a Match.
type Option func(*options)

type options struct {
	log     log.Log
	metrics metrics.Recorder
	defs    *Definitions
	clock   func() uint64
}

func WithLogger(l log.Log) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

// WithDefinitions replaces the embedded tree and machine definitions.
func WithDefinitions(d *Definitions) Option {
	return func(o *options) { o.defs = d }
}

// WithClock sets the frame source of the engines built for an agent.
func WithClock(clock func() uint64) Option {
	return func(o *options) { o.clock = clock }
}

func newOptions(opts []Option) options {
	o := options{log: log.NewNop(), metrics: metrics.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
