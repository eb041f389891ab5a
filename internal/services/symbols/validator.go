package symbols

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Validator extracts confirmed ticker symbols from free text.
type Validator interface {
	Extract(text string) []string
}

// DefaultMaxSymbols bounds how many symbols Extract returns per text.
const DefaultMaxSymbols = 10

var (
	candidatePattern = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
	cashtagPattern   = regexp.MustCompile(`\$([A-Za-z]{1,5})\b`)
)

// SetValidator validates candidates against a loaded ticker universe with
// O(1) set lookups and a false-positive filter for common words. It is
// immutable after construction and safe for concurrent use.
type SetValidator struct {
	byExchange map[string]map[string]struct{}
	all        map[string]struct{}
	filter     map[string]struct{}
	maxSymbols int
}

// NewSetValidator builds a validator from per-exchange symbol lists.
// Symbols are upper-cased; the false-positive filter is built in.
func NewSetValidator(exchanges map[string][]string) *SetValidator {
	v := &SetValidator{
		byExchange: make(map[string]map[string]struct{}, len(exchanges)),
		all:        make(map[string]struct{}),
		filter:     falsePositiveFilter(),
		maxSymbols: DefaultMaxSymbols,
	}
	for exchange, list := range exchanges {
		set := make(map[string]struct{}, len(list))
		for _, s := range list {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			set[s] = struct{}{}
			v.all[s] = struct{}{}
		}
		v.byExchange[exchange] = set
	}
	return v
}

// LoadExchangeFile reads a JSON array of ticker symbols, the layout used by
// the exchange dump files (one file per exchange).
func LoadExchangeFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ticker file %s: %w", path, err)
	}
	var symbols []string
	if err := json.Unmarshal(raw, &symbols); err != nil {
		return nil, fmt.Errorf("parse ticker file %s: %w", path, err)
	}
	return symbols, nil
}

// IsValid reports whether symbol is in the loaded universe.
func (v *SetValidator) IsValid(symbol string) bool {
	_, ok := v.all[strings.ToUpper(symbol)]
	return ok
}

// Exchange returns the exchange a symbol is listed on. Lookup order is
// deterministic (sorted exchange names) when a symbol is dual-listed.
func (v *SetValidator) Exchange(symbol string) (string, bool) {
	upper := strings.ToUpper(symbol)
	names := make([]string, 0, len(v.byExchange))
	for name := range v.byExchange {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := v.byExchange[name][upper]; ok {
			return name, true
		}
	}
	return "", false
}

// Extract finds candidate tickers in text, filters common-word false
// positives, and keeps only symbols present in the universe. Cashtags
// ($AAPL) are recognized regardless of case; bare candidates must already
// be upper case. Order of first appearance is preserved.
func (v *SetValidator) Extract(text string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(candidate string) bool {
		candidate = strings.ToUpper(candidate)
		if _, dup := seen[candidate]; dup {
			return false
		}
		seen[candidate] = struct{}{}
		if len(candidate) < 1 || len(candidate) > 5 {
			return false
		}
		if _, bad := v.filter[candidate]; bad {
			return false
		}
		if !isAlpha(candidate) {
			return false
		}
		if _, ok := v.all[candidate]; !ok {
			return false
		}
		out = append(out, candidate)
		return len(out) >= v.maxSymbols
	}

	for _, m := range cashtagPattern.FindAllStringSubmatch(text, -1) {
		if add(m[1]) {
			return out
		}
	}
	for _, candidate := range candidatePattern.FindAllString(strings.ToUpper(text), -1) {
		if add(candidate) {
			return out
		}
	}
	return out
}

// Stats reports universe and filter sizes.
func (v *SetValidator) Stats() map[string]int {
	stats := map[string]int{
		"total_symbols": len(v.all),
		"filter_words":  len(v.filter),
	}
	for name, set := range v.byExchange {
		stats[strings.ToLower(name)+"_symbols"] = len(set)
	}
	return stats
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return s != ""
}

// falsePositiveFilter covers all-caps English words, social-media slang,
// financial jargon, and calendar abbreviations that collide with tickers.
func falsePositiveFilter() map[string]struct{} {
	words := []string{
		// common English words
		"THE", "AND", "FOR", "ARE", "BUT", "NOT", "YOU", "ALL", "CAN", "HER",
		"WAS", "ONE", "OUR", "OUT", "DAY", "GET", "HAS", "HIM", "HIS", "HOW",
		"ITS", "MAY", "NEW", "NOW", "OLD", "SEE", "TWO", "WHO", "BOY", "DID",
		"ILL", "LET", "MAN", "PUT", "SAY", "SHE", "TOO", "USE", "WAY", "WIN",
		"YES", "YET", "BAD", "BIG", "BOX", "CUP", "END", "FAN", "FUN", "GOT",
		"HAD", "HIT", "HOT", "LOT", "MOM", "POP", "RUN", "SIT", "TOP", "TRY",
		"ZIP", "WILL", "WITH", "HAVE", "FROM", "BEEN", "MORE", "VERY", "WELL",

		// social media abbreviations
		"LOL", "OMG", "WTF", "TBH", "IMO", "YOLO", "WSB", "TLDR", "ELI",
		"AMA", "TIL", "DAE", "PSA", "LPT", "TIFU", "HODL",

		// financial jargon that is not a ticker
		"BUY", "SELL", "HOLD", "LONG", "SHORT", "CALL", "PUT", "MOON",
		"BEAR", "BULL", "FOMO", "ATH", "ATL", "RSI", "MACD",

		// days and months
		"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN",
		"JAN", "FEB", "MAR", "APR", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
	}
	filter := make(map[string]struct{}, len(words))
	for _, w := range words {
		filter[w] = struct{}{}
	}
	return filter
}
