package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/workforce_radar/app/display/internal/data"
	"github.com/iWorld-y/workforce_radar/app/display/internal/service"
	"github.com/iWorld-y/workforce_radar/app/display/internal/usecase"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/engine"
)

// ProviderSet 是展示服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Radar providers
	NewRadarConfig,
	NewCatalog,
	NewCalculator,
	NewRadarEngine,
	wire.Bind(new(usecase.BatchRunner), new(*engine.Engine)),

	// Data providers
	data.NewData,
	data.NewRunRepo,

	// UseCase providers
	usecase.NewReportUseCase,
	usecase.NewAnalyticsUseCase,

	// Service providers
	service.NewDisplayService,
)
