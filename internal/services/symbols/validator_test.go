package symbols

import (
	"reflect"
	"testing"
)

func testValidator() *SetValidator {
	return NewSetValidator(map[string][]string{
		"NASDAQ": {"AAPL", "TSLA", "MSFT", "AMD", "NOW", "A"},
		"AMEX":   {"GME", "BB"},
	})
}

func TestExtractBasic(t *testing.T) {
	v := testValidator()
	got := v.Extract("I am buying AAPL and TSLA before earnings")
	want := []string{"AAPL", "TSLA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractCashtags(t *testing.T) {
	v := testValidator()
	got := v.Extract("loading up on $gme and $Bb today")
	want := []string{"GME", "BB"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractFalsePositiveFilter(t *testing.T) {
	v := testValidator()
	// NOW is in the universe but also in the false-positive filter
	got := v.Extract("BUY NOW ALL THE MSFT YOU CAN")
	want := []string{"MSFT"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractUnknownSymbolsDropped(t *testing.T) {
	v := testValidator()
	if got := v.Extract("ZZZZZ QQQQ are not real"); len(got) != 0 {
		t.Fatalf("expected no symbols, got %v", got)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	v := testValidator()
	got := v.Extract("AAPL AAPL $AAPL AAPL")
	if !reflect.DeepEqual(got, []string{"AAPL"}) {
		t.Fatalf("Extract = %v, want [AAPL]", got)
	}
}

func TestExtractLowercaseBareWordsIgnoredAsRaw(t *testing.T) {
	v := testValidator()
	// bare lowercase mentions still match after the upper-case candidate
	// scan; only cashtags carry case information
	got := v.Extract("thinking about aapl")
	if !reflect.DeepEqual(got, []string{"AAPL"}) {
		t.Fatalf("Extract = %v, want [AAPL]", got)
	}
}

func TestIsValidAndExchange(t *testing.T) {
	v := testValidator()
	if !v.IsValid("aapl") {
		t.Fatalf("IsValid should be case-insensitive")
	}
	if v.IsValid("ZZZZZ") {
		t.Fatalf("unknown symbol reported valid")
	}
	ex, ok := v.Exchange("GME")
	if !ok || ex != "AMEX" {
		t.Fatalf("Exchange(GME) = %q,%v, want AMEX,true", ex, ok)
	}
	if _, ok := v.Exchange("ZZZZZ"); ok {
		t.Fatalf("unknown symbol should have no exchange")
	}
}

func TestExtractRespectsMaxSymbols(t *testing.T) {
	universe := []string{"AA", "AB", "AC", "AD", "AE", "AF", "AG", "AH", "AI", "AJ", "AK", "AL"}
	v := NewSetValidator(map[string][]string{"NASDAQ": universe})
	text := "AA AB AC AD AE AF AG AH AI AJ AK AL"
	if got := v.Extract(text); len(got) != DefaultMaxSymbols {
		t.Fatalf("extracted %d symbols, want %d", len(got), DefaultMaxSymbols)
	}
}

func TestStats(t *testing.T) {
	v := testValidator()
	stats := v.Stats()
	if stats["total_symbols"] != 8 {
		t.Fatalf("total_symbols = %d, want 8", stats["total_symbols"])
	}
	if stats["nasdaq_symbols"] != 6 || stats["amex_symbols"] != 2 {
		t.Fatalf("per-exchange counts wrong: %v", stats)
	}
	if stats["filter_words"] == 0 {
		t.Fatalf("filter should not be empty")
	}
}
