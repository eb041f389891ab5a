package symbols

import (
	"reflect"
	"testing"
)

type staticValidator struct {
	symbols []string
}

func (s staticValidator) Extract(string) []string { return s.symbols }

func TestCombineUnion(t *testing.T) {
	got := Combine(Union, toSet([]string{"AAPL", "TSLA"}), toSet([]string{"TSLA", "MSFT"}))
	want := toSet([]string{"AAPL", "TSLA", "MSFT"})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("union = %v, want %v", got, want)
	}
}

func TestCombineIntersection(t *testing.T) {
	got := Combine(Intersection, toSet([]string{"AAPL", "TSLA"}), toSet([]string{"TSLA", "MSFT"}))
	want := toSet([]string{"TSLA"})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("intersection = %v, want %v", got, want)
	}
}

func TestCombinePriorityOverride(t *testing.T) {
	// override found something: keep both sides
	got := Combine(PriorityOverride, toSet([]string{"AAPL"}), toSet([]string{"MSFT"}))
	want := toSet([]string{"AAPL", "MSFT"})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("priority override = %v, want %v", got, want)
	}

	// override found nothing: fall back to primary
	got = Combine(PriorityOverride, toSet([]string{"AAPL"}), nil)
	want = toSet([]string{"AAPL"})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("priority override fallback = %v, want %v", got, want)
	}
}

func TestCombineDoesNotMutateInputs(t *testing.T) {
	primary := toSet([]string{"AAPL"})
	override := toSet([]string{"MSFT"})
	Combine(Union, primary, override)
	if len(primary) != 1 || len(override) != 1 {
		t.Fatalf("inputs mutated: primary=%v override=%v", primary, override)
	}
}

func TestCombinedValidatorSortedOutput(t *testing.T) {
	c := NewCombinedValidator(
		staticValidator{symbols: []string{"TSLA", "AAPL"}},
		staticValidator{symbols: []string{"MSFT"}},
		Union,
	)
	got := c.Extract("ignored")
	want := []string{"AAPL", "MSFT", "TSLA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestParseCombineMode(t *testing.T) {
	cases := map[string]CombineMode{
		"union":             Union,
		"intersection":      Intersection,
		"priority_override": PriorityOverride,
		"bogus":             Union,
		"":                  Union,
	}
	for in, want := range cases {
		if got := ParseCombineMode(in); got != want {
			t.Fatalf("ParseCombineMode(%q) = %v, want %v", in, got, want)
		}
	}
	if Union.String() != "union" || Intersection.String() != "intersection" || PriorityOverride.String() != "priority_override" {
		t.Fatalf("String() roundtrip broken")
	}
}
