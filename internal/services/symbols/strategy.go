package symbols

import "sort"

// CombineMode selects how results from two validators are merged.
type CombineMode int

const (
	// Union keeps every symbol either validator found.
	Union CombineMode = iota
	// Intersection keeps only symbols both validators found.
	Intersection
	// PriorityOverride keeps the override validator's symbols plus the
	// primary's when the override found anything, and falls back to the
	// primary's alone when it found nothing.
	PriorityOverride
)

func (m CombineMode) String() string {
	switch m {
	case Union:
		return "union"
	case Intersection:
		return "intersection"
	case PriorityOverride:
		return "priority_override"
	default:
		return "unknown"
	}
}

// ParseCombineMode maps a config string to a CombineMode. Unknown values
// fall back to Union.
func ParseCombineMode(s string) CombineMode {
	switch s {
	case "intersection":
		return Intersection
	case "priority_override":
		return PriorityOverride
	default:
		return Union
	}
}

// Combine merges two symbol sets per the mode. Pure function: inputs are
// not mutated, the result is a fresh set.
func Combine(mode CombineMode, primary, override map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	switch mode {
	case Intersection:
		for s := range primary {
			if _, ok := override[s]; ok {
				out[s] = struct{}{}
			}
		}
	case PriorityOverride:
		if len(override) == 0 {
			for s := range primary {
				out[s] = struct{}{}
			}
			break
		}
		fallthrough
	default: // Union
		for s := range primary {
			out[s] = struct{}{}
		}
		for s := range override {
			out[s] = struct{}{}
		}
	}
	return out
}

// CombinedValidator runs a primary and an override validator over the same
// text and merges the results per the configured mode. Output is sorted so
// downstream processing is deterministic.
type CombinedValidator struct {
	primary  Validator
	override Validator
	mode     CombineMode
}

func NewCombinedValidator(primary, override Validator, mode CombineMode) *CombinedValidator {
	return &CombinedValidator{primary: primary, override: override, mode: mode}
}

func (c *CombinedValidator) Extract(text string) []string {
	primary := toSet(c.primary.Extract(text))
	override := toSet(c.override.Extract(text))

	merged := Combine(c.mode, primary, override)
	out := make([]string, 0, len(merged))
	for s := range merged {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func toSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set
}
