package sentiment

import (
	"math"
	"strings"
	"time"
)

// TimeWeight computes the exponential decay weight e^(-lambda * hours)
// for an observation at ts relative to ref. Negative elapsed time (an
// observation from the future) is treated as zero hours, so the output
// is always in (0, 1].
func (a *Aggregator) TimeWeight(ts, ref time.Time) float64 {
	hours := ref.UTC().Sub(ts.UTC()).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Exp(-a.cfg.DecayLambda * hours)
}

// SourceWeight returns the reliability multiplier for a source identifier.
// Lookup order: exact table match, subreddit-pattern match, generic
// platform weight, then the default. Unknown sources never fail.
func (a *Aggregator) SourceWeight(source string) float64 {
	if w, ok := a.cfg.SourceWeights[source]; ok {
		return w
	}
	if strings.HasPrefix(source, "reddit/r/") {
		sub := strings.ToLower(source[strings.LastIndex(source, "/")+1:])
		for pattern, w := range a.cfg.SourceWeights {
			if strings.HasSuffix(strings.ToLower(pattern), "/r/"+sub) {
				return w
			}
		}
	}
	if strings.HasPrefix(source, "reddit") {
		if w, ok := a.cfg.SourceWeights["reddit"]; ok {
			return w
		}
	}
	return a.cfg.SourceWeights[DefaultWeightKey]
}

// SymbolWeight returns the ambiguity penalty for a symbol. Symbols that
// double as common English words get a reduced multiplier; everything
// else gets the default (1.0).
func (a *Aggregator) SymbolWeight(symbol string) float64 {
	if w, ok := a.cfg.SymbolWeights[strings.ToUpper(symbol)]; ok {
		return w
	}
	return a.cfg.SymbolWeights[DefaultWeightKey]
}

// PostCountWeight boosts symbols discussed across many distinct posts.
// Logarithmic scaling keeps one very active symbol from running away:
// min(cap, 1 + ln(uniquePosts) * multiplier), 1.0 for a single post.
func (a *Aggregator) PostCountWeight(uniquePosts int) float64 {
	if uniquePosts <= 1 {
		return 1.0
	}
	w := 1.0 + math.Log(float64(uniquePosts))*a.cfg.PostCountMultiplier
	return math.Min(w, a.cfg.MaxPostCountWeight)
}
