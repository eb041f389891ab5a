package sentiment

import (
	"math"
	"testing"
	"time"

	"StockHark/internal/domain/models"
)

var testRef = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func obsAt(symbol string, sentiment float64, age time.Duration, source, postID string) models.Observation {
	return models.Observation{
		Symbol:       symbol,
		RawSentiment: sentiment,
		Timestamp:    testRef.Add(-age),
		Source:       source,
		PostID:       postID,
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	a := New(DefaultConfig())
	res := a.AggregateAt(testRef, "AAPL", nil)
	if res.Symbol != "AAPL" {
		t.Fatalf("symbol = %q, want AAPL", res.Symbol)
	}
	if res.FinalSentiment != 0.0 || res.Confidence != 0.0 || res.TotalObservations != 0 {
		t.Fatalf("empty input should yield zero result, got %+v", res)
	}
	if res.Label != models.LabelNeutral {
		t.Fatalf("empty input label = %q, want %q", res.Label, models.LabelNeutral)
	}
}

func TestAggregateSingleObservationIdentity(t *testing.T) {
	a := New(DefaultConfig())
	res := a.AggregateAt(testRef, "AAPL", []models.Observation{
		obsAt("AAPL", 0.5, 0, "reddit/r/stocks", "p1"),
	})
	// one fresh observation from a full-weight source: final equals raw
	if math.Abs(res.FinalSentiment-0.5) > 1e-12 {
		t.Fatalf("final = %v, want 0.5", res.FinalSentiment)
	}
	if res.Label != models.LabelStrongBullish {
		t.Fatalf("label = %q, want %q", res.Label, models.LabelStrongBullish)
	}
	if res.TotalObservations != 1 {
		t.Fatalf("total observations = %d, want 1", res.TotalObservations)
	}
}

func TestAggregateBounds(t *testing.T) {
	a := New(DefaultConfig())
	obs := []models.Observation{
		obsAt("TSLA", 1.0, 0, "reddit/r/stocks", "p1"),
		obsAt("TSLA", 1.0, time.Hour, "reddit/r/investing", "p2"),
		obsAt("TSLA", -1.0, 72*time.Hour, "reddit/r/pennystocks", "p3"),
	}
	res := a.AggregateAt(testRef, "TSLA", obs)
	if res.FinalSentiment < -1.0 || res.FinalSentiment > 1.0 {
		t.Fatalf("final sentiment out of bounds: %v", res.FinalSentiment)
	}
	if res.Confidence < 0.0 || res.Confidence > 1.0 {
		t.Fatalf("confidence out of bounds: %v", res.Confidence)
	}
}

func TestAggregateOrderIndependence(t *testing.T) {
	a := New(DefaultConfig())
	obs := []models.Observation{
		obsAt("MSFT", 0.4, 2*time.Hour, "reddit/r/stocks", "p1"),
		obsAt("MSFT", -0.6, 30*time.Hour, "reddit/r/wallstreetbets", "p2"),
		obsAt("MSFT", 0.1, 5*time.Hour, "reddit/r/investing", "p3"),
	}
	forward := a.AggregateAt(testRef, "MSFT", obs)

	reversed := []models.Observation{obs[2], obs[0], obs[1]}
	shuffled := a.AggregateAt(testRef, "MSFT", reversed)

	if math.Abs(forward.FinalSentiment-shuffled.FinalSentiment) > 1e-12 {
		t.Fatalf("order changed final sentiment: %v vs %v", forward.FinalSentiment, shuffled.FinalSentiment)
	}
	if math.Abs(forward.Confidence-shuffled.Confidence) > 1e-12 {
		t.Fatalf("order changed confidence: %v vs %v", forward.Confidence, shuffled.Confidence)
	}
}

func TestAggregateRecencyDominates(t *testing.T) {
	a := New(DefaultConfig())
	// same magnitudes, opposite signs, very different ages: the fresh
	// bullish observation should win
	res := a.AggregateAt(testRef, "NVDA", []models.Observation{
		obsAt("NVDA", 0.6, time.Hour, "reddit/r/stocks", "p1"),
		obsAt("NVDA", -0.6, 96*time.Hour, "reddit/r/stocks", "p2"),
	})
	if res.FinalSentiment <= 0 {
		t.Fatalf("fresh observation should dominate, got %v", res.FinalSentiment)
	}
}

func TestAggregateConcreteScenario(t *testing.T) {
	a := New(DefaultConfig())
	obs := []models.Observation{
		obsAt("AAPL", 0.5, 0, "reddit/r/stocks", "p1"),
		obsAt("AAPL", -0.2, 48*time.Hour, "reddit/r/wallstreetbets", "p2"),
	}
	res := a.AggregateAt(testRef, "AAPL", obs)

	if math.Abs(res.FinalSentiment-0.4954) > 1e-3 {
		t.Fatalf("final sentiment = %v, want ~0.495", res.FinalSentiment)
	}
	if res.Label != models.LabelStrongBullish {
		t.Fatalf("label = %q, want %q", res.Label, models.LabelStrongBullish)
	}
	if math.Abs(res.Confidence-0.65) > 1e-2 {
		t.Fatalf("confidence = %v, want ~0.65", res.Confidence)
	}
}

func TestAggregateDetailedDiagnostics(t *testing.T) {
	a := New(DefaultConfig())
	obs := []models.Observation{
		obsAt("AAPL", 0.5, 0, "reddit/r/stocks", "p1"),
		obsAt("AAPL", -0.2, 48*time.Hour, "reddit/r/wallstreetbets", "p2"),
	}
	res := a.AggregateDetailed(testRef, "AAPL", obs)
	if res.Diagnostics == nil {
		t.Fatalf("expected diagnostics to be populated")
	}
	d := res.Diagnostics
	if len(d.Observations) != 2 {
		t.Fatalf("breakdown length = %d, want 2", len(d.Observations))
	}
	if d.UniquePosts != 2 {
		t.Fatalf("unique posts = %d, want 2", d.UniquePosts)
	}
	if d.WeightTotal <= 0 {
		t.Fatalf("weight total = %v, want > 0", d.WeightTotal)
	}
	if math.Abs(d.AverageUnclamped-res.FinalSentiment) > 1e-12 {
		t.Fatalf("unclamped average %v should equal final %v here", d.AverageUnclamped, res.FinalSentiment)
	}
	first := d.Observations[0]
	if first.TimeWeight != 1.0 {
		t.Fatalf("fresh observation time weight = %v, want 1.0", first.TimeWeight)
	}
	if math.Abs(first.TotalWeight-first.TimeWeight*first.SourceWeight*first.SymbolWeight*first.PostWeight) > 1e-12 {
		t.Fatalf("total weight is not the product of its factors")
	}

	// non-detailed variant leaves diagnostics nil
	plain := a.AggregateAt(testRef, "AAPL", obs)
	if plain.Diagnostics != nil {
		t.Fatalf("plain aggregation should not carry diagnostics")
	}
}

func TestLabelBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.3, models.LabelStrongBullish},
		{0.2999, models.LabelWeakBullish},
		{0.1, models.LabelWeakBullish},
		{0.0999, models.LabelNeutral},
		{0.0, models.LabelNeutral},
		{-0.0999, models.LabelNeutral},
		{-0.1, models.LabelWeakBearish},
		{-0.2999, models.LabelWeakBearish},
		{-0.3, models.LabelStrongBearish},
		{-1.0, models.LabelStrongBearish},
		{1.0, models.LabelStrongBullish},
	}
	for _, c := range cases {
		if got := Label(c.score); got != c.want {
			t.Fatalf("Label(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestUniquePostCounting(t *testing.T) {
	obs := []models.Observation{
		obsAt("GME", 0.5, 0, "reddit/r/wallstreetbets", "p1"),
		obsAt("GME", 0.4, 0, "reddit/r/wallstreetbets", "p1"), // same post
		obsAt("GME", 0.3, 0, "reddit/r/wallstreetbets", "p2"),
		obsAt("GME", 0.2, 0, "reddit/r/wallstreetbets", ""), // anonymous
		obsAt("GME", 0.1, 0, "reddit/r/wallstreetbets", ""), // anonymous
	}
	if n := countUniquePosts(obs); n != 4 {
		t.Fatalf("unique posts = %d, want 4 (2 identified + 2 anonymous)", n)
	}
}

func TestAggregateAllMatchesPerSymbol(t *testing.T) {
	a := New(DefaultConfig())
	mixed := []models.Observation{
		obsAt("AAPL", 0.5, time.Hour, "reddit/r/stocks", "p1"),
		obsAt("TSLA", -0.4, 2*time.Hour, "reddit/r/wallstreetbets", "p2"),
		obsAt("AAPL", 0.2, 3*time.Hour, "reddit/r/investing", "p3"),
		obsAt("TSLA", -0.1, 20*time.Hour, "reddit/r/stocks", "p4"),
	}
	all := a.AggregateAllAt(testRef, mixed)
	if len(all) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(all))
	}

	aapl := a.AggregateAt(testRef, "AAPL", []models.Observation{mixed[0], mixed[2]})
	if math.Abs(all["AAPL"].FinalSentiment-aapl.FinalSentiment) > 1e-12 {
		t.Fatalf("batch AAPL %v != filtered %v", all["AAPL"].FinalSentiment, aapl.FinalSentiment)
	}
	tsla := a.AggregateAt(testRef, "TSLA", []models.Observation{mixed[1], mixed[3]})
	if math.Abs(all["TSLA"].FinalSentiment-tsla.FinalSentiment) > 1e-12 {
		t.Fatalf("batch TSLA %v != filtered %v", all["TSLA"].FinalSentiment, tsla.FinalSentiment)
	}
}

func TestConfidenceSingleObservation(t *testing.T) {
	a := New(DefaultConfig())
	res := a.AggregateAt(testRef, "AAPL", []models.Observation{
		obsAt("AAPL", 0.5, 0, "reddit/r/stocks", "p1"),
	})
	// weight 0.4*1.0 + consensus 0.4*0.8 + sample 0.2*0.2
	want := 0.4 + 0.32 + 0.04
	if math.Abs(res.Confidence-want) > 1e-12 {
		t.Fatalf("confidence = %v, want %v", res.Confidence, want)
	}
}

func TestConfidenceGrowsWithAgreement(t *testing.T) {
	a := New(DefaultConfig())
	agree := []models.Observation{
		obsAt("AMD", 0.5, 0, "reddit/r/stocks", "p1"),
		obsAt("AMD", 0.5, 0, "reddit/r/investing", "p2"),
		obsAt("AMD", 0.5, 0, "reddit/r/stocks", "p3"),
	}
	disagree := []models.Observation{
		obsAt("AMD", 0.9, 0, "reddit/r/stocks", "p1"),
		obsAt("AMD", -0.9, 0, "reddit/r/investing", "p2"),
		obsAt("AMD", 0.5, 0, "reddit/r/stocks", "p3"),
	}
	ca := a.AggregateAt(testRef, "AMD", agree).Confidence
	cd := a.AggregateAt(testRef, "AMD", disagree).Confidence
	if ca <= cd {
		t.Fatalf("agreement should raise confidence: agree=%v disagree=%v", ca, cd)
	}
}

func TestNewFallsBackOnInvalidConfig(t *testing.T) {
	bad := Config{DecayLambda: -1}
	a := New(bad)
	// falls back to defaults, so aggregation behaves normally
	res := a.AggregateAt(testRef, "AAPL", []models.Observation{
		obsAt("AAPL", 0.5, 0, "reddit/r/stocks", "p1"),
	})
	if math.Abs(res.FinalSentiment-0.5) > 1e-12 {
		t.Fatalf("fallback config aggregation = %v, want 0.5", res.FinalSentiment)
	}
}
