//go:build wireinject
// +build wireinject

package di

import (
	"PriceCast/pkg/config"
	"PriceCast/pkg/server"

	"github.com/google/wire"
)

var forecastSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,

	// Model artifacts
	ProvideScaler,
	ProvideWindowBuilder,
	ProvideModel,

	// Market data
	ProvideCache,
	ProvidePriceProvider,

	// Recorders
	ProvideClickHouseClient,
	ProvideRecorder,

	ProvidePipeline,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		forecastSet,

		// Sinks
		ProvideKafkaProducer,
		ProvideHub,
		ProvidePublishers,
		ProvideSinkPipeline,

		// Use cases
		ProvideForecastService,
		ProvideScheduler,

		// HTTP
		ProvideRateLimiter,
		ProvideHandlers,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeLambda wires the serverless entrypoint.
func InitializeLambda(cfg *config.Config) (*Lambda, error) {
	wire.Build(forecastSet, ProvideLambda)
	return &Lambda{}, nil
}
