package models

import "time"

// Observation is one pre-scored sentiment data point for a single symbol.
// Timestamps are normalized to UTC at construction so elapsed-time math is
// well defined regardless of the zone the collector saw.
type Observation struct {
	Symbol       string
	RawSentiment float64 // in [-1, 1], trusted upstream
	Timestamp    time.Time
	Source       string // e.g. "reddit/r/stocks"
	Text         string // kept for diagnostics only
	PostID       string // optional; used to count unique originating posts
}

// NewObservation builds an Observation with the timestamp normalized to UTC.
func NewObservation(symbol string, raw float64, ts time.Time, source, text, postID string) Observation {
	return Observation{
		Symbol:       symbol,
		RawSentiment: raw,
		Timestamp:    ts.UTC(),
		Source:       source,
		Text:         text,
		PostID:       postID,
	}
}

// Sentiment label scale.
const (
	LabelStrongBullish = "Strong Bullish"
	LabelWeakBullish   = "Weak Bullish"
	LabelNeutral       = "Neutral"
	LabelWeakBearish   = "Weak Bearish"
	LabelStrongBearish = "Strong Bearish"
)

// ObservationDiagnostics records the weight breakdown for one observation.
type ObservationDiagnostics struct {
	Text         string  `json:"text"`
	RawSentiment float64 `json:"raw_sentiment"`
	HoursElapsed float64 `json:"hours_elapsed"`
	TimeWeight   float64 `json:"time_weight"`
	Source       string  `json:"source"`
	SourceWeight float64 `json:"source_weight"`
	SymbolWeight float64 `json:"symbol_weight"`
	PostWeight   float64 `json:"post_count_weight"`
	TotalWeight  float64 `json:"total_weight"`
	Contribution float64 `json:"weighted_contribution"`
}

// AggregationDiagnostics is the optional breakdown attached to a result.
type AggregationDiagnostics struct {
	Observations     []ObservationDiagnostics `json:"observations"`
	UniquePosts      int                      `json:"unique_posts"`
	WeightedSum      float64                  `json:"weighted_sum"`
	WeightTotal      float64                  `json:"weight_total"`
	AverageUnclamped float64                  `json:"weighted_avg_before_clamp"`
	DecayLambda      float64                  `json:"decay_lambda"`
}

// AggregationResult is the aggregated sentiment for one symbol.
// FinalSentiment is always in [-1, 1] and Confidence in [0, 1].
type AggregationResult struct {
	Symbol            string                  `json:"symbol"`
	FinalSentiment    float64                 `json:"final_sentiment"`
	Label             string                  `json:"sentiment_label"`
	Confidence        float64                 `json:"confidence"`
	TotalObservations int                     `json:"total_observations"`
	Diagnostics       *AggregationDiagnostics `json:"diagnostics,omitempty"`
}
