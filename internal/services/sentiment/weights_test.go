package sentiment

import (
	"math"
	"testing"
	"time"
)

func TestTimeWeightFreshObservation(t *testing.T) {
	a := New(DefaultConfig())
	ref := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if w := a.TimeWeight(ref, ref); w != 1.0 {
		t.Fatalf("expected weight 1.0 at zero age, got %v", w)
	}
}

func TestTimeWeightDecay(t *testing.T) {
	a := New(DefaultConfig())
	ref := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	w24 := a.TimeWeight(ref.Add(-24*time.Hour), ref)
	want := math.Exp(-0.1 * 24)
	if math.Abs(w24-want) > 1e-12 {
		t.Fatalf("24h weight = %v, want %v", w24, want)
	}

	w48 := a.TimeWeight(ref.Add(-48*time.Hour), ref)
	if w48 >= w24 {
		t.Fatalf("expected monotonic decay, got w48=%v >= w24=%v", w48, w24)
	}
	if w48 <= 0 || w48 > 1 {
		t.Fatalf("weight out of (0,1]: %v", w48)
	}
}

func TestTimeWeightFutureTimestamp(t *testing.T) {
	a := New(DefaultConfig())
	ref := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if w := a.TimeWeight(ref.Add(3*time.Hour), ref); w != 1.0 {
		t.Fatalf("future timestamp should clamp to zero age, got weight %v", w)
	}
}

func TestTimeWeightZoneNormalization(t *testing.T) {
	a := New(DefaultConfig())
	ref := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// same instant expressed in a non-UTC zone
	est := time.FixedZone("EST", -5*3600)
	same := time.Date(2026, 8, 1, 7, 0, 0, 0, est)
	if w := a.TimeWeight(same, ref); w != 1.0 {
		t.Fatalf("zone-shifted same instant should weigh 1.0, got %v", w)
	}
}

func TestSourceWeightLookupOrder(t *testing.T) {
	a := New(DefaultConfig())

	cases := []struct {
		source string
		want   float64
	}{
		{"reddit/r/wallstreetbets", 0.8}, // exact
		{"reddit/r/Wallstreetbets", 0.8}, // subreddit pattern, case-insensitive
		{"reddit/r/brandnewsub", 1.0},    // generic reddit
		{"reddit", 1.0},
		{"twitter/finance", 1.0}, // default
		{"", 1.0},
	}
	for _, c := range cases {
		if got := a.SourceWeight(c.source); got != c.want {
			t.Fatalf("SourceWeight(%q) = %v, want %v", c.source, got, c.want)
		}
	}
}

func TestSymbolWeightPenalty(t *testing.T) {
	a := New(DefaultConfig())
	if w := a.SymbolWeight("A"); w != 0.3 {
		t.Fatalf("common-word symbol weight = %v, want 0.3", w)
	}
	if w := a.SymbolWeight("all"); w != 0.3 {
		t.Fatalf("lookup should be case-insensitive, got %v", w)
	}
	if w := a.SymbolWeight("AAPL"); w != 1.0 {
		t.Fatalf("unmatched symbol weight = %v, want 1.0", w)
	}
}

func TestPostCountWeight(t *testing.T) {
	a := New(DefaultConfig())

	if w := a.PostCountWeight(0); w != 1.0 {
		t.Fatalf("zero posts weight = %v, want 1.0", w)
	}
	if w := a.PostCountWeight(1); w != 1.0 {
		t.Fatalf("single post weight = %v, want 1.0", w)
	}

	w2 := a.PostCountWeight(2)
	want := 1.0 + math.Log(2)*0.3
	if math.Abs(w2-want) > 1e-12 {
		t.Fatalf("two posts weight = %v, want %v", w2, want)
	}

	// large counts saturate at the cap
	if w := a.PostCountWeight(1_000_000); w != 2.0 {
		t.Fatalf("weight should cap at 2.0, got %v", w)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg := DefaultConfig()
	delete(cfg.SourceWeights, DefaultWeightKey)
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing default source weight")
	}

	cfg = DefaultConfig()
	cfg.SymbolWeights["BAD"] = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for symbol weight above 1")
	}
}
