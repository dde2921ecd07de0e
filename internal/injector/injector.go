//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/trackrun/internal/server"
)

func InitializeServer(opts Options) (*server.Server, error) {
	wire.Build(ServerSet)
	return nil, nil
}
