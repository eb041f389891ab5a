//go:build wireinject
// +build wireinject

package di

import (
	"StockHark/pkg/config"
	"StockHark/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics + logging
		ProvideMetrics,
		ProvideLogger,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideObservationStore,
		ProvideObservationPublisher,

		// Domain services
		ProvideSymbolValidator,
		ProvideScorer,
		ProvideAggregator,
		ProvidePostSources,
		ProvideSnapshotCache,
		ProvideDedupeCache,
		ProvideReplayQueue,

		// Use cases
		ProvideObservationProcessor,
		ProvidePostCollector,
		ProvideKafkaObservationsHandler,
		ProvideSentimentQuery,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
