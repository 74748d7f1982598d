//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/arena/internal/core/observability/log"
)

func InitializeRuntime(level log.Level) (*Runtime, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
