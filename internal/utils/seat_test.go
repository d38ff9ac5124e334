package utils

import (
	"strconv"
	"testing"
)

func TestNormalizeSeatForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"38", "38"},
		{"038", "38"},
		{" 5 ", "5"},
		{"L38", "38"},
		{"l7", "7"},
		{"D8", "38"},
		{"d8", "38"},
		{"A1", "1"},
		{"A10", "10"},
		{"B1", "11"},
		{"E10", "50"},
	}
	for _, tc := range cases {
		got, err := NormalizeSeat(tc.in, 50)
		if err != nil {
			t.Fatalf("NormalizeSeat(%q): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeSeat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSeatInvalid(t *testing.T) {
	for _, in := range []string{"", "0", "51", "A11", "A0", "XY", "1A", "-3", "L", "L0"} {
		if got, err := NormalizeSeat(in, 50); err == nil {
			t.Fatalf("NormalizeSeat(%q) = %q, want error", in, got)
		}
	}
}

func TestNormalizeSeatCapacityBound(t *testing.T) {
	if _, err := NormalizeSeat("13", 12); err == nil {
		t.Fatalf("seat 13 should be out of range for capacity 12")
	}
	if got, err := NormalizeSeat("12", 12); err != nil || got != "12" {
		t.Fatalf("seat 12 should be valid for capacity 12, got %q err %v", got, err)
	}
	// Unknown capacity falls back to the default of 50.
	if got, err := NormalizeSeat("50", 0); err != nil || got != "50" {
		t.Fatalf("seat 50 should be valid with default capacity, got %q err %v", got, err)
	}
}

func TestNormalizeSeatIdempotent(t *testing.T) {
	for _, in := range []string{"38", "L38", "D8", "5"} {
		once, err := NormalizeSeat(in, 50)
		if err != nil {
			t.Fatalf("first pass %q: %v", in, err)
		}
		twice, err := NormalizeSeat(once, 50)
		if err != nil {
			t.Fatalf("second pass %q: %v", once, err)
		}
		if once != twice {
			t.Fatalf("normalization not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestSeatLegacyRoundTrip(t *testing.T) {
	for n := 1; n <= 50; n++ {
		canonical := strconv.Itoa(n)
		legacy := SeatToLegacy(canonical)
		if legacy == "" {
			t.Fatalf("no legacy form for seat %d", n)
		}
		back, err := NormalizeSeat(legacy, 50)
		if err != nil {
			t.Fatalf("NormalizeSeat(%q): %v", legacy, err)
		}
		if back != canonical {
			t.Fatalf("round trip failed: %d -> %s -> %s", n, legacy, back)
		}
	}
}
