package util

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	if _, ok := ParseTime(""); ok {
		t.Fatalf("empty string should not parse")
	}
	if _, ok := ParseTime("not-a-time"); ok {
		t.Fatalf("garbage should not parse")
	}

	got, ok := ParseTime("2026-08-01T12:00:00Z")
	if !ok {
		t.Fatalf("RFC3339 should parse")
	}
	want := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, ok = ParseTime("1754049600")
	if !ok {
		t.Fatalf("unix seconds should parse")
	}
	if got.Unix() != 1754049600 {
		t.Fatalf("got unix %d, want 1754049600", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseTimeDefault("", def); !got.Equal(def) {
		t.Fatalf("empty should fall back to default")
	}
	if got := ParseTimeDefault("2026-08-01T12:00:00Z", def); got.Equal(def) {
		t.Fatalf("valid input should not fall back")
	}
}

func TestWindow(t *testing.T) {
	ref := time.Date(2026, 8, 1, 12, 30, 45, 0, time.UTC)

	got := Window(ref, 24)
	want := time.Date(2026, 7, 31, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// non-positive hours default to 24
	if got := Window(ref, 0); !got.Equal(want) {
		t.Fatalf("zero hours: got %v, want %v", got, want)
	}
}
