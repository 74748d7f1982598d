// Package injector assembles the process-wide runtime of the arena runner.
package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/observability/metrics"
)

// Runtime is what every match shares: the logger and the metrics.
type Runtime struct {
	Log      log.Log
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
}

func ProvideLogger(level log.Level) log.Log {
	return log.New(level)
}

func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func ProvideCollector(reg *prometheus.Registry) (*metrics.Collector, error) {
	return metrics.NewCollector(reg)
}

func NewRuntime(l log.Log, reg *prometheus.Registry, c *metrics.Collector) *Runtime {
	return &Runtime{Log: l, Registry: reg, Metrics: c}
}

var ProviderSet = wire.NewSet(ProvideLogger, ProvideRegistry, ProvideCollector, NewRuntime)
