package repository

import (
	"context"
	"time"

	"StockHark/internal/domain/models"
)

// PostSource fetches raw posts from a social platform.
type PostSource interface {
	Fetch(ctx context.Context, limit int) ([]models.Post, error)
	Name() string
	Close() error
}

// Publisher sends observations to the message backend.
type Publisher interface {
	Publish(ctx context.Context, o *models.Observation) error
	PublishBatch(ctx context.Context, obs []*models.Observation) error
	Close() error
}

// ObservationStore persists and queries sentiment observations.
type ObservationStore interface {
	Store(ctx context.Context, o *models.Observation) error
	StoreBatch(ctx context.Context, obs []*models.Observation) error
	QuerySymbol(ctx context.Context, symbol string, since time.Time) ([]models.Observation, error)
	QuerySince(ctx context.Context, since time.Time) ([]models.Observation, error)
	MentionCounts(ctx context.Context, since time.Time) (map[string]int, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordObservation(backend, symbol string)
	RecordPostsFetched(source string, n int)
	RecordAggregation(symbol string, sentiment float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
