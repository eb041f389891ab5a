package sentiment

import (
	"math"
	"time"

	"StockHark/internal/domain/models"
)

// Aggregator combines weighted sentiment observations into one bounded
// per-symbol estimate. It is stateless after construction; every call
// works only on its own input and local accumulators, so one instance
// may be shared across goroutines.
type Aggregator struct {
	cfg Config
}

// New creates an Aggregator with the given configuration. An invalid
// configuration falls back to DefaultConfig so the aggregator stays total.
func New(cfg Config) *Aggregator {
	if err := cfg.Validate(); err != nil {
		cfg = DefaultConfig()
	}
	return &Aggregator{cfg: cfg}
}

// Aggregate combines the observations for symbol using the current time
// as the decay reference.
func (a *Aggregator) Aggregate(symbol string, obs []models.Observation) models.AggregationResult {
	return a.aggregate(time.Now().UTC(), symbol, obs, false)
}

// AggregateAt is the deterministic variant with an explicit reference time.
func (a *Aggregator) AggregateAt(ref time.Time, symbol string, obs []models.Observation) models.AggregationResult {
	return a.aggregate(ref, symbol, obs, false)
}

// AggregateDetailed also fills the per-observation diagnostics breakdown.
func (a *Aggregator) AggregateDetailed(ref time.Time, symbol string, obs []models.Observation) models.AggregationResult {
	return a.aggregate(ref, symbol, obs, true)
}

// AggregateAll groups mixed-symbol observations and aggregates each group.
// Only symbols present in the input appear in the output.
func (a *Aggregator) AggregateAll(obs []models.Observation) map[string]models.AggregationResult {
	return a.AggregateAllAt(time.Now().UTC(), obs)
}

// AggregateAllAt is the deterministic batch variant.
func (a *Aggregator) AggregateAllAt(ref time.Time, obs []models.Observation) map[string]models.AggregationResult {
	groups := make(map[string][]models.Observation)
	for _, o := range obs {
		groups[o.Symbol] = append(groups[o.Symbol], o)
	}
	out := make(map[string]models.AggregationResult, len(groups))
	for symbol, group := range groups {
		out[symbol] = a.aggregate(ref, symbol, group, false)
	}
	return out
}

func (a *Aggregator) aggregate(ref time.Time, symbol string, obs []models.Observation, detailed bool) models.AggregationResult {
	if len(obs) == 0 {
		return models.AggregationResult{
			Symbol:         symbol,
			FinalSentiment: 0.0,
			Label:          models.LabelNeutral,
			Confidence:     0.0,
		}
	}

	uniquePosts := countUniquePosts(obs)
	postWeight := a.PostCountWeight(uniquePosts)
	symbolWeight := a.SymbolWeight(symbol)

	var (
		weightedSum float64
		weightTotal float64
		breakdown   []models.ObservationDiagnostics
	)
	if detailed {
		breakdown = make([]models.ObservationDiagnostics, 0, len(obs))
	}

	for _, o := range obs {
		timeWeight := a.TimeWeight(o.Timestamp, ref)
		sourceWeight := a.SourceWeight(o.Source)
		total := timeWeight * sourceWeight * symbolWeight * postWeight
		contribution := o.RawSentiment * total

		weightedSum += contribution
		weightTotal += total

		if detailed {
			breakdown = append(breakdown, models.ObservationDiagnostics{
				Text:         truncate(o.Text, 100),
				RawSentiment: o.RawSentiment,
				HoursElapsed: math.Max(0, ref.UTC().Sub(o.Timestamp.UTC()).Hours()),
				TimeWeight:   timeWeight,
				Source:       o.Source,
				SourceWeight: sourceWeight,
				SymbolWeight: symbolWeight,
				PostWeight:   postWeight,
				TotalWeight:  total,
				Contribution: contribution,
			})
		}
	}

	// All weights are non-negative by construction; weightTotal can only be
	// zero when every weight underflowed, which yields neutral sentiment
	// rather than a fault.
	avg := 0.0
	if weightTotal > 0 {
		avg = weightedSum / weightTotal
	}
	final := clamp(avg, -1.0, 1.0)

	res := models.AggregationResult{
		Symbol:            symbol,
		FinalSentiment:    final,
		Label:             Label(final),
		Confidence:        a.confidence(obs, weightTotal),
		TotalObservations: len(obs),
	}
	if detailed {
		res.Diagnostics = &models.AggregationDiagnostics{
			Observations:     breakdown,
			UniquePosts:      uniquePosts,
			WeightedSum:      weightedSum,
			WeightTotal:      weightTotal,
			AverageUnclamped: avg,
			DecayLambda:      a.cfg.DecayLambda,
		}
	}
	return res
}

// Label maps a final sentiment value onto the five-step scale.
// Boundaries are inclusive: 0.3 is Strong Bullish, -0.1 is Weak Bearish.
func Label(score float64) string {
	switch {
	case score >= 0.3:
		return models.LabelStrongBullish
	case score >= 0.1:
		return models.LabelWeakBullish
	case score <= -0.3:
		return models.LabelStrongBearish
	case score <= -0.1:
		return models.LabelWeakBearish
	default:
		return models.LabelNeutral
	}
}

// confidence blends three sub-scores: collective weight strength,
// consensus among raw sentiments, and sample size (saturating at 5).
func (a *Aggregator) confidence(obs []models.Observation, weightTotal float64) float64 {
	n := len(obs)
	if n == 0 {
		return 0.0
	}

	weightConf := math.Min(1.0, weightTotal/float64(n))

	var consensusConf float64
	if n == 1 {
		// a single observation cannot demonstrate agreement, but is not
		// penalized to zero either
		consensusConf = 0.8
	} else {
		sd := stdev(obs)
		consensusConf = math.Max(0.0, 1.0-sd/2.0)
	}

	sampleConf := math.Min(1.0, float64(n)/5.0)

	return clamp(0.4*weightConf+0.4*consensusConf+0.2*sampleConf, 0.0, 1.0)
}

// countUniquePosts counts distinct post identifiers; observations without
// an identifier each count as their own post.
func countUniquePosts(obs []models.Observation) int {
	seen := make(map[string]struct{}, len(obs))
	anonymous := 0
	for _, o := range obs {
		if o.PostID == "" {
			anonymous++
			continue
		}
		seen[o.PostID] = struct{}{}
	}
	return len(seen) + anonymous
}

// stdev computes the population standard deviation of raw sentiments.
func stdev(obs []models.Observation) float64 {
	n := float64(len(obs))
	mean := 0.0
	for _, o := range obs {
		mean += o.RawSentiment
	}
	mean /= n

	variance := 0.0
	for _, o := range obs {
		d := o.RawSentiment - mean
		variance += d * d
	}
	variance /= n
	return math.Sqrt(variance)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
