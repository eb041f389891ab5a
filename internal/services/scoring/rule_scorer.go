package scoring

import (
	"strings"
	"unicode"
)

// RuleScorer assigns a sentiment score to raw post text by matching a
// financial keyword lexicon. Single-word terms match whole tokens,
// multi-word phrases match as substrings and count double. Intensifier
// words boost both directions. The scorer is stateless and safe for
// concurrent use.
type RuleScorer struct {
	bullishWords   map[string]struct{}
	bearishWords   map[string]struct{}
	bullishPhrases []string
	bearishPhrases []string
	intensifiers   map[string]struct{}
}

const (
	phraseWeight       = 2.0
	intensifierStep    = 0.2
	maxIntensifierGain = 2.0
)

func NewRuleScorer() *RuleScorer {
	s := &RuleScorer{
		bullishWords: make(map[string]struct{}),
		bearishWords: make(map[string]struct{}),
		intensifiers: make(map[string]struct{}, len(intensifierTerms)),
	}
	for _, term := range bullishTerms {
		if strings.Contains(term, " ") {
			s.bullishPhrases = append(s.bullishPhrases, term)
		} else {
			s.bullishWords[term] = struct{}{}
		}
	}
	for _, term := range bearishTerms {
		if strings.Contains(term, " ") {
			s.bearishPhrases = append(s.bearishPhrases, term)
		} else {
			s.bearishWords[term] = struct{}{}
		}
	}
	for _, term := range intensifierTerms {
		s.intensifiers[term] = struct{}{}
	}
	return s
}

// Score returns a sentiment value in [-1, 1]: +1 purely bullish,
// -1 purely bearish, 0 when no lexicon term matches.
func (s *RuleScorer) Score(text string) float64 {
	lower := strings.ToLower(text)
	tokens := tokenize(lower)

	boost := s.intensifierBoost(tokens)

	var bullish, bearish float64
	for token := range tokens {
		if _, ok := s.bullishWords[token]; ok {
			bullish += 1.0 * boost
		}
		if _, ok := s.bearishWords[token]; ok {
			bearish += 1.0 * boost
		}
	}
	for _, phrase := range s.bullishPhrases {
		if strings.Contains(lower, phrase) {
			bullish += phraseWeight * boost
		}
	}
	for _, phrase := range s.bearishPhrases {
		if strings.Contains(lower, phrase) {
			bearish += phraseWeight * boost
		}
	}

	total := bullish + bearish
	if total == 0 {
		return 0.0
	}
	score := (bullish - bearish) / total
	if score > 1.0 {
		return 1.0
	}
	if score < -1.0 {
		return -1.0
	}
	return score
}

func (s *RuleScorer) intensifierBoost(tokens map[string]struct{}) float64 {
	count := 0
	for token := range tokens {
		if _, ok := s.intensifiers[token]; ok {
			count++
		}
	}
	boost := 1.0 + float64(count)*intensifierStep
	if boost > maxIntensifierGain {
		return maxIntensifierGain
	}
	return boost
}

// tokenize splits lowercased text on non-letter runes into a token set.
func tokenize(lower string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		tokens[field] = struct{}{}
	}
	return tokens
}
