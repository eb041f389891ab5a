package sentiment

import "fmt"

// DefaultWeightKey is the fallback entry every weight table must contain.
const DefaultWeightKey = "default"

// Config holds all aggregation parameters. It is set once at construction
// and never mutated, so a single Aggregator is safe for concurrent use.
type Config struct {
	// DecayLambda is the exponential time-decay rate per hour.
	DecayLambda float64
	// SourceWeights maps source identifiers to reliability multipliers.
	// Must contain a "default" entry.
	SourceWeights map[string]float64
	// SymbolWeights maps ticker symbols that collide with common words to
	// penalty multipliers in [0, 1]. Must contain a "default" entry.
	SymbolWeights map[string]float64
	// PostCountMultiplier scales the logarithmic post-diversity boost.
	PostCountMultiplier float64
	// MaxPostCountWeight caps the post-diversity boost.
	MaxPostCountWeight float64
}

// DefaultConfig returns the standard aggregation parameters.
func DefaultConfig() Config {
	return Config{
		DecayLambda: 0.1,
		SourceWeights: map[string]float64{
			"reddit":                    1.0,
			"reddit/r/investing":        1.0,
			"reddit/r/stocks":           1.0,
			"reddit/r/SecurityAnalysis": 1.0,
			"reddit/r/ValueInvesting":   1.0,
			"reddit/r/wallstreetbets":   0.8,
			"reddit/r/pennystocks":      0.7,
			DefaultWeightKey:            1.0,
		},
		SymbolWeights: map[string]float64{
			"A":              0.3,
			"ALL":            0.3,
			"ARE":            0.3,
			"BE":             0.3,
			"CAN":            0.4,
			"DD":             0.4,
			"FOR":            0.3,
			"GO":             0.4,
			"IT":             0.4,
			"ON":             0.3,
			"NOW":            0.4,
			"OPEN":           0.5,
			"REAL":           0.5,
			"RUN":            0.5,
			"SO":             0.3,
			DefaultWeightKey: 1.0,
		},
		PostCountMultiplier: 0.3,
		MaxPostCountWeight:  2.0,
	}
}

// Validate checks required table entries and parameter ranges.
func (c Config) Validate() error {
	if c.DecayLambda < 0 {
		return fmt.Errorf("decay lambda must be non-negative, got %v", c.DecayLambda)
	}
	if _, ok := c.SourceWeights[DefaultWeightKey]; !ok {
		return fmt.Errorf("source weights missing %q entry", DefaultWeightKey)
	}
	if _, ok := c.SymbolWeights[DefaultWeightKey]; !ok {
		return fmt.Errorf("symbol weights missing %q entry", DefaultWeightKey)
	}
	for sym, w := range c.SymbolWeights {
		if w < 0 || w > 1 {
			return fmt.Errorf("symbol weight for %q out of [0,1]: %v", sym, w)
		}
	}
	if c.PostCountMultiplier < 0 {
		return fmt.Errorf("post count multiplier must be non-negative, got %v", c.PostCountMultiplier)
	}
	if c.MaxPostCountWeight < 1 {
		return fmt.Errorf("max post count weight must be >= 1, got %v", c.MaxPostCountWeight)
	}
	return nil
}
