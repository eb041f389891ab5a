package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"StockHark/internal/domain/models"
	domrepo "StockHark/internal/domain/repository"
	"StockHark/internal/service/cache"
	"StockHark/internal/services/sentiment"
	"StockHark/pkg/util"
)

// SentimentQuery answers aggregated-sentiment questions over the
// observation store: one symbol's current estimate, or a ranked list of
// the most discussed symbols. Snapshots are cached briefly so repeated
// dashboard polls do not re-read the store.
type SentimentQuery struct {
	store    domrepo.ObservationStore
	agg      *sentiment.Aggregator
	cache    cache.BytesCache
	metrics  domrepo.Metrics
	cacheTTL time.Duration
	timeout  time.Duration
	// symbols with fewer mentions than this are dropped from rankings
	minMentions int
}

func NewSentimentQuery(
	store domrepo.ObservationStore,
	agg *sentiment.Aggregator,
	bc cache.BytesCache,
	metrics domrepo.Metrics,
) *SentimentQuery {
	return &SentimentQuery{
		store:       store,
		agg:         agg,
		cache:       bc,
		metrics:     metrics,
		cacheTTL:    60 * time.Second,
		timeout:     10 * time.Second,
		minMentions: 2,
	}
}

// SymbolSentiment aggregates one symbol's observations over the trailing
// window ending at the reference time (zero means now). Diagnostics are
// included when detailed is set; detailed and as-of results bypass the
// cache.
func (q *SentimentQuery) SymbolSentiment(ctx context.Context, symbol string, hours int, detailed bool, at time.Time) (models.AggregationResult, error) {
	if symbol == "" {
		return models.AggregationResult{}, fmt.Errorf("symbol required")
	}
	if hours <= 0 {
		hours = 24
	}
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	asOf := !at.IsZero()
	key := fmt.Sprintf("sentiment:%s:%dh", symbol, hours)
	if !detailed && !asOf && q.cache != nil {
		if b, ok, err := q.cache.GetBytes(key); err == nil && ok {
			var res models.AggregationResult
			if json.Unmarshal(b, &res) == nil {
				return res, nil
			}
		}
	}

	now := time.Now().UTC()
	if asOf {
		now = at.UTC()
	}
	since := util.Window(now, hours)
	obs, err := q.store.QuerySymbol(ctx, symbol, since)
	if err != nil {
		q.metrics.RecordError("query_symbol")
		return models.AggregationResult{}, fmt.Errorf("query %s: %w", symbol, err)
	}

	var res models.AggregationResult
	if detailed {
		res = q.agg.AggregateDetailed(now, symbol, obs)
	} else {
		res = q.agg.AggregateAt(now, symbol, obs)
	}
	q.metrics.RecordAggregation(symbol, res.FinalSentiment)

	if !detailed && !asOf && q.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			_ = q.cache.SetBytes(key, b, q.cacheTTL)
		}
	}
	return res, nil
}

// TopStocks returns the aggregated sentiment of the most mentioned
// symbols in the trailing window, ranked by mention count. Symbols below
// the minimum mention threshold are excluded.
func (q *SentimentQuery) TopStocks(ctx context.Context, limit, hours int) ([]models.AggregationResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if hours <= 0 {
		hours = 24
	}
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	key := fmt.Sprintf("top:%d:%dh", limit, hours)
	if q.cache != nil {
		if b, ok, err := q.cache.GetBytes(key); err == nil && ok {
			var out []models.AggregationResult
			if json.Unmarshal(b, &out) == nil {
				return out, nil
			}
		}
	}

	now := time.Now().UTC()
	since := util.Window(now, hours)
	obs, err := q.store.QuerySince(ctx, since)
	if err != nil {
		q.metrics.RecordError("query_window")
		return nil, fmt.Errorf("query window: %w", err)
	}

	results := q.agg.AggregateAllAt(now, obs)

	out := make([]models.AggregationResult, 0, len(results))
	for _, res := range results {
		if res.TotalObservations < q.minMentions {
			continue
		}
		q.metrics.RecordAggregation(res.Symbol, res.FinalSentiment)
		out = append(out, res)
	}
	// rank by mention count, then symbol for a stable order
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalObservations != out[j].TotalObservations {
			return out[i].TotalObservations > out[j].TotalObservations
		}
		return out[i].Symbol < out[j].Symbol
	})
	if len(out) > limit {
		out = out[:limit]
	}

	if q.cache != nil {
		if b, err := json.Marshal(out); err == nil {
			_ = q.cache.SetBytes(key, b, q.cacheTTL)
		}
	}
	return out, nil
}

// MentionCounts returns per-symbol mention counts over the trailing window.
func (q *SentimentQuery) MentionCounts(ctx context.Context, hours int) (map[string]int, error) {
	if hours <= 0 {
		hours = 24
	}
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	return q.store.MentionCounts(ctx, util.Window(time.Now().UTC(), hours))
}

// StorageHealth reports whether the observation store is reachable.
func (q *SentimentQuery) StorageHealth(ctx context.Context) error {
	return q.store.Health(ctx)
}
