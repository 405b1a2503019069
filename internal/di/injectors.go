//go:build wireinject
// +build wireinject

package di

import (
	"counterd/internal"
	"counterd/internal/controllers"
	"counterd/internal/persistence"
	"counterd/internal/providers"
	"counterd/internal/services"
	"counterd/internal/structures"
	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		persistence.NewCompressor,
		persistence.NewFileManager,
		wire.Bind(new(services.SnapshotPersister), new(*persistence.FileManager)),
		services.NewCounterService,
		controllers.NewCommandController,
		controllers.NewDashboardController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
