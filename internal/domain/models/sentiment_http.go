package models

// Requests for sentiment HTTP endpoints. Defined in domain for consistency and reuse.

type TopStocksRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=100"`
	Hours int `query:"hours" json:"hours" default:"24" validate:"gte=1,lte=8760"`
}

type StockSentimentRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,min=1,max=5"`
	Hours  int    `query:"hours" json:"hours" default:"24" validate:"gte=1,lte=8760"`
	Debug  bool   `query:"debug" json:"debug"`
	// At recomputes sentiment as of a past reference time (RFC3339 or unix
	// seconds). Empty means now.
	At string `query:"at" json:"at" validate:"omitempty,max=64"`
}

// StockSentimentResponse is the API projection of an AggregationResult,
// rounded to 3 decimal places for display.
type StockSentimentResponse struct {
	Symbol            string                  `json:"symbol"`
	FinalSentiment    float64                 `json:"final_sentiment"`
	Label             string                  `json:"sentiment_label"`
	Confidence        float64                 `json:"confidence"`
	TotalObservations int                     `json:"total_observations"`
	Diagnostics       *AggregationDiagnostics `json:"diagnostics,omitempty"`
}

// CollectorStatus reports the background collector state for /api/status.
type CollectorStatus struct {
	Running           bool   `json:"running"`
	LastCollection    string `json:"last_collection,omitempty"`
	TotalCollections  int64  `json:"total_collections"`
	TotalObservations int64  `json:"total_observations"`
	IntervalMinutes   int    `json:"collection_interval_minutes"`
}
