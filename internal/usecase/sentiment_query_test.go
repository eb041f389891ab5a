package usecase

import (
	"context"
	"testing"
	"time"

	"StockHark/internal/domain/models"
	"StockHark/internal/service/cache"
	"StockHark/internal/services/sentiment"
)

func seedStore(t *testing.T, store *stubStore, symbol string, score float64, age time.Duration, postID string) {
	t.Helper()
	o := models.NewObservation(symbol, score, time.Now().UTC().Add(-age), "reddit/r/stocks", "seed", postID)
	if err := store.Store(context.Background(), &o); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func newTestQuery(store *stubStore) *SentimentQuery {
	agg := sentiment.New(sentiment.DefaultConfig())
	return NewSentimentQuery(store, agg, cache.NewTTLCache(), newStubMetrics())
}

func TestSymbolSentimentRequiresSymbol(t *testing.T) {
	q := newTestQuery(newStubStore())
	if _, err := q.SymbolSentiment(context.Background(), "", 24, false, time.Time{}); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
}

func TestSymbolSentimentBasic(t *testing.T) {
	store := newStubStore()
	seedStore(t, store, "AAPL", 0.6, time.Hour, "p1")
	seedStore(t, store, "AAPL", 0.4, 2*time.Hour, "p2")
	q := newTestQuery(store)

	res, err := q.SymbolSentiment(context.Background(), "AAPL", 24, false, time.Time{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Symbol != "AAPL" {
		t.Fatalf("symbol = %q", res.Symbol)
	}
	if res.TotalObservations != 2 {
		t.Fatalf("observations = %d, want 2", res.TotalObservations)
	}
	if res.FinalSentiment <= 0 {
		t.Fatalf("two bullish observations should aggregate positive, got %v", res.FinalSentiment)
	}
	if res.Label != models.LabelStrongBullish && res.Label != models.LabelWeakBullish {
		t.Fatalf("unexpected label %q", res.Label)
	}
	if res.Diagnostics != nil {
		t.Fatalf("plain query should not include diagnostics")
	}
}

func TestSymbolSentimentCaches(t *testing.T) {
	store := newStubStore()
	seedStore(t, store, "AAPL", 0.6, time.Hour, "p1")
	q := newTestQuery(store)

	ctx := context.Background()
	if _, err := q.SymbolSentiment(ctx, "AAPL", 24, false, time.Time{}); err != nil {
		t.Fatalf("first query: %v", err)
	}
	if _, err := q.SymbolSentiment(ctx, "AAPL", 24, false, time.Time{}); err != nil {
		t.Fatalf("second query: %v", err)
	}
	if store.queries != 1 {
		t.Fatalf("store queries = %d, want 1 (second served from cache)", store.queries)
	}
}

func TestSymbolSentimentDetailedBypassesCache(t *testing.T) {
	store := newStubStore()
	seedStore(t, store, "AAPL", 0.6, time.Hour, "p1")
	q := newTestQuery(store)

	ctx := context.Background()
	if _, err := q.SymbolSentiment(ctx, "AAPL", 24, false, time.Time{}); err != nil {
		t.Fatalf("warm query: %v", err)
	}
	res, err := q.SymbolSentiment(ctx, "AAPL", 24, true, time.Time{})
	if err != nil {
		t.Fatalf("detailed query: %v", err)
	}
	if res.Diagnostics == nil {
		t.Fatalf("detailed query should include diagnostics")
	}
	if len(res.Diagnostics.Observations) != 1 {
		t.Fatalf("diagnostics observations = %d, want 1", len(res.Diagnostics.Observations))
	}
	if store.queries != 2 {
		t.Fatalf("store queries = %d, want 2 (detailed bypasses cache)", store.queries)
	}
}

func TestSymbolSentimentAsOfBypassesCache(t *testing.T) {
	store := newStubStore()
	seedStore(t, store, "AAPL", 0.6, time.Hour, "p1")
	q := newTestQuery(store)

	ctx := context.Background()
	if _, err := q.SymbolSentiment(ctx, "AAPL", 24, false, time.Time{}); err != nil {
		t.Fatalf("warm query: %v", err)
	}
	at := time.Now().UTC().Add(-30 * time.Minute)
	if _, err := q.SymbolSentiment(ctx, "AAPL", 24, false, at); err != nil {
		t.Fatalf("as-of query: %v", err)
	}
	if store.queries != 2 {
		t.Fatalf("store queries = %d, want 2 (as-of bypasses cache)", store.queries)
	}
}

func TestSymbolSentimentNoData(t *testing.T) {
	q := newTestQuery(newStubStore())
	res, err := q.SymbolSentiment(context.Background(), "AAPL", 24, false, time.Time{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.TotalObservations != 0 || res.FinalSentiment != 0 {
		t.Fatalf("no data should aggregate to zero: %+v", res)
	}
	if res.Label != models.LabelNeutral {
		t.Fatalf("label = %q, want %q", res.Label, models.LabelNeutral)
	}
}

func TestTopStocksRankingAndThreshold(t *testing.T) {
	store := newStubStore()
	// TSLA mentioned 3x, AAPL 2x, GME only once (below threshold)
	seedStore(t, store, "TSLA", 0.5, time.Hour, "p1")
	seedStore(t, store, "TSLA", 0.3, 2*time.Hour, "p2")
	seedStore(t, store, "TSLA", -0.2, 3*time.Hour, "p3")
	seedStore(t, store, "AAPL", 0.6, time.Hour, "p4")
	seedStore(t, store, "AAPL", 0.4, 2*time.Hour, "p5")
	seedStore(t, store, "GME", 0.9, time.Hour, "p6")
	q := newTestQuery(store)

	out, err := q.TopStocks(context.Background(), 10, 24)
	if err != nil {
		t.Fatalf("top stocks: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("results = %d, want 2 (GME below mention threshold)", len(out))
	}
	if out[0].Symbol != "TSLA" || out[1].Symbol != "AAPL" {
		t.Fatalf("ranking = [%s %s], want [TSLA AAPL]", out[0].Symbol, out[1].Symbol)
	}
}

func TestTopStocksLimit(t *testing.T) {
	store := newStubStore()
	seedStore(t, store, "TSLA", 0.5, time.Hour, "p1")
	seedStore(t, store, "TSLA", 0.3, 2*time.Hour, "p2")
	seedStore(t, store, "AAPL", 0.6, time.Hour, "p3")
	seedStore(t, store, "AAPL", 0.4, 2*time.Hour, "p4")
	q := newTestQuery(store)

	out, err := q.TopStocks(context.Background(), 1, 24)
	if err != nil {
		t.Fatalf("top stocks: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("results = %d, want 1", len(out))
	}
}

func TestStorageHealth(t *testing.T) {
	store := newStubStore()
	q := newTestQuery(store)
	if err := q.StorageHealth(context.Background()); err != nil {
		t.Fatalf("healthy store: %v", err)
	}
	store.failAll = true
	if err := q.StorageHealth(context.Background()); err == nil {
		t.Fatalf("expected error from failing store")
	}
}
